package controller

import (
	"userlens-be/internal/dto"
	"userlens-be/internal/pkg/serverutils"
	"userlens-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IContactController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
}

type contactController struct {
	contactService service.IContactService
}

func NewContactController(contactService service.IContactService) IContactController {
	return &contactController{contactService: contactService}
}

func (c *contactController) RegisterRoutes(r fiber.Router) {
	r.Post("/contact", c.Submit)
}

func (c *contactController) Submit(ctx *fiber.Ctx) error {
	var req dto.ContactFormRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.contactService.Submit(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Message received", nil))
}
