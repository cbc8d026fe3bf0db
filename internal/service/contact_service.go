package service

import (
	"context"

	"userlens-be/internal/dto"
	"userlens-be/internal/pkg/logger"
	"userlens-be/internal/pkg/mailer"
	"userlens-be/internal/pkg/serverutils"
)

type IContactService interface {
	Submit(ctx context.Context, req *dto.ContactFormRequest) error
}

type contactService struct {
	emailService mailer.IEmailService
	adminEmail   string
	log          logger.ILogger
}

func NewContactService(emailService mailer.IEmailService, adminEmail string, log logger.ILogger) IContactService {
	return &contactService{
		emailService: emailService,
		adminEmail:   adminEmail,
		log:          log,
	}
}

func (s *contactService) Submit(ctx context.Context, req *dto.ContactFormRequest) error {
	if s.adminEmail == "" {
		s.log.Error("contact", "contact form received but no admin email configured", map[string]interface{}{
			"from": req.Email,
		})
		return serverutils.NewApiError(503, "contact form is not available")
	}

	if err := s.emailService.SendContactForm(s.adminEmail, req.Name, req.Company, req.Email, req.Message); err != nil {
		s.log.Error("contact", "failed to relay contact form", map[string]interface{}{
			"from":  req.Email,
			"error": err.Error(),
		})
		return err
	}

	s.log.Info("contact", "contact form relayed", map[string]interface{}{
		"from": req.Email,
	})
	return nil
}
