// FILE: internal/service/bot_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"userlens-be/internal/dto"
	"userlens-be/internal/entity"
	"userlens-be/internal/pkg/logger"
	"userlens-be/internal/pkg/serverutils"
	"userlens-be/internal/poller"
	"userlens-be/internal/repository/specification"
	"userlens-be/internal/repository/unitofwork"
	"userlens-be/pkg/events"
	"userlens-be/pkg/meetingbot"
	pktNats "userlens-be/pkg/nats"

	"github.com/google/uuid"
)

const (
	webhookEventStatusChange = "bot.status_change"
	webhookEventComplete     = "complete"
	webhookEventFailed       = "failed"
	webhookEventPending      = "pending"
)

type IBotService interface {
	Invite(ctx context.Context, userId uuid.UUID, req *dto.InviteBotRequest) (*dto.InviteBotResponse, error)
	HandleWebhook(ctx context.Context, webhookId string, req *dto.BotWebhookRequest) (*dto.BotWebhookResponse, error)
	GetStatus(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.BotStatusResponse, error)
	ResumePolling(ctx context.Context) error
}

type botService struct {
	uowFactory       unitofwork.RepositoryFactory
	botClient        *meetingbot.Client
	poller           *poller.Poller
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
	baseURL          string
}

func NewBotService(
	uowFactory unitofwork.RepositoryFactory,
	botClient *meetingbot.Client,
	p *poller.Poller,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	baseURL string,
) IBotService {
	return &botService{
		uowFactory:       uowFactory,
		botClient:        botClient,
		poller:           p,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
		baseURL:          baseURL,
	}
}

// generateWebhookId returns a 14-hex-char random id used as the final path
// segment of the session's webhook URL.
func generateWebhookId() (string, error) {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *botService) Invite(ctx context.Context, userId uuid.UUID, req *dto.InviteBotRequest) (*dto.InviteBotResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: req.ProjectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, serverutils.NotFoundError("project not found")
	}

	webhookId, err := generateWebhookId()
	if err != nil {
		return nil, err
	}
	webhookURL := fmt.Sprintf("%s/api/bot/webhook/%s", s.baseURL, webhookId)

	now := time.Now()
	session := &entity.BotSession{
		Id:          uuid.New(),
		MeetingURL:  req.MeetingURL,
		MeetingName: req.MeetingName,
		WebhookURL:  webhookURL,
		StatusCode:  entity.BotStatusJoiningCall,
		IsPolling:   true,
		EventLogs: []entity.EventLogEntry{{
			Type:      entity.EventLogStatusChange,
			Status:    &entity.StatusSnapshot{Code: string(entity.BotStatusJoiningCall), CreatedAt: &now},
			Message:   "bot session created",
			Timestamp: now,
		}},
		CreatedAt: now,
	}

	if err := uow.BotSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	bot, err := s.botClient.CreateBot(ctx, req.MeetingURL, req.MeetingName, webhookURL)
	if err != nil {
		// The session row stays for the audit trail but never polls.
		if stopErr := uow.BotSessionRepository().StopWithError(ctx, session.Id, "bot creation failed: "+err.Error()); stopErr != nil {
			s.log.Error("bot", "failed to mark session after bot creation failure", map[string]interface{}{
				"session_id": session.Id.String(),
				"error":      stopErr.Error(),
			})
		}
		return nil, fmt.Errorf("failed to create meeting bot: %w", err)
	}

	if err := uow.BotSessionRepository().SetBotId(ctx, session.Id, bot.BotId); err != nil {
		return nil, err
	}

	transcript := &entity.Transcript{
		Id:             uuid.New(),
		ProjectId:      project.Id,
		TranscriptName: req.MeetingName,
		TranscriptDate: now,
		Origin:         entity.OriginMeetingRecording,
		UploadStatus:   entity.UploadStatusScheduledToJoin,
		BotSessionId:   &session.Id,
		CreatedAt:      now,
	}
	if err := uow.TranscriptRepository().Create(ctx, transcript); err != nil {
		return nil, err
	}

	if err := s.poller.StartPolling(poller.Session{Id: session.Id, WebhookURL: webhookURL}); err != nil {
		s.log.Warn("bot", "could not start polling", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}

	s.publishEvent(ctx, events.TypeBotSessionCreated, map[string]interface{}{
		"session_id": session.Id,
		"bot_id":     bot.BotId,
		"project_id": project.Id,
	})

	return &dto.InviteBotResponse{
		SessionId:    session.Id,
		TranscriptId: transcript.Id,
		BotId:        bot.BotId,
		WebhookURL:   webhookURL,
	}, nil
}

// HandleWebhook serves two callers on the same URL: the vendor pushing
// lifecycle events, and the poller POSTing an empty body to read the
// session's current event.
func (s *botService) HandleWebhook(ctx context.Context, webhookId string, req *dto.BotWebhookRequest) (*dto.BotWebhookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.BotSessionRepository().FindOne(ctx, specification.ByWebhookIDFragment{WebhookID: webhookId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFoundError("unknown webhook")
	}

	switch req.Event {
	case webhookEventStatusChange:
		return s.handleStatusChange(ctx, uow, session, req)
	case webhookEventComplete:
		return s.handleComplete(ctx, uow, session, req)
	case webhookEventFailed:
		return s.handleFailed(ctx, uow, session, req)
	default:
		// Poller read: report the session's terminal state, if any.
		return &dto.BotWebhookResponse{Event: s.currentEvent(session)}, nil
	}
}

func (s *botService) currentEvent(session *entity.BotSession) string {
	switch {
	case session.RecordingURL != nil || session.StatusCode == entity.BotStatusCallEnded:
		return webhookEventComplete
	case session.StatusCode == entity.BotStatusError:
		return webhookEventFailed
	default:
		return webhookEventPending
	}
}

func (s *botService) handleStatusChange(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.BotSession, req *dto.BotWebhookRequest) (*dto.BotWebhookResponse, error) {
	if req.Data == nil || req.Data.Status == nil {
		return nil, serverutils.BadRequestError("status_change event without status")
	}

	code := entity.BotStatusCode(req.Data.Status.Code)
	at := time.Now()
	if req.Data.Status.CreatedAt != nil {
		at = *req.Data.Status.CreatedAt
	}

	if err := uow.BotSessionRepository().SetStatus(ctx, session.Id, code, at); err != nil {
		return nil, err
	}
	if err := uow.BotSessionRepository().AppendEventLog(ctx, session.Id, entity.EventLogEntry{
		Type:      entity.EventLogStatusChange,
		Status:    &entity.StatusSnapshot{Code: string(code), CreatedAt: &at},
		Timestamp: time.Now(),
	}); err != nil {
		return nil, err
	}

	if status, ok := transcriptStatusFor(code); ok {
		if err := s.setSessionTranscriptStatus(ctx, uow, session.Id, status); err != nil {
			return nil, err
		}
	}

	return &dto.BotWebhookResponse{Event: webhookEventStatusChange}, nil
}

// transcriptStatusFor maps bot lifecycle codes to the placeholder
// transcript's upload status.
func transcriptStatusFor(code entity.BotStatusCode) (entity.UploadStatus, bool) {
	switch code {
	case entity.BotStatusJoiningCall, entity.BotStatusInWaitingRoom:
		return entity.UploadStatusScheduledToJoin, true
	case entity.BotStatusInCallNotRecording, entity.BotStatusInCallRecording:
		return entity.UploadStatusMeetingStarted, true
	case entity.BotStatusCallEnded:
		return entity.UploadStatusMeetingCompleted, true
	default:
		return "", false
	}
}

func (s *botService) handleComplete(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.BotSession, req *dto.BotWebhookRequest) (*dto.BotWebhookResponse, error) {
	now := time.Now()

	recordingURL := ""
	if req.Data != nil {
		recordingURL = req.Data.MP4URL
	}
	if recordingURL != "" {
		if err := uow.BotSessionRepository().SetRecordingURL(ctx, session.Id, recordingURL); err != nil {
			return nil, err
		}
	}

	if err := uow.BotSessionRepository().SetStatus(ctx, session.Id, entity.BotStatusCallEnded, now); err != nil {
		return nil, err
	}
	if err := uow.BotSessionRepository().AppendEventLog(ctx, session.Id, entity.EventLogEntry{
		Type:      entity.EventLogStatusChange,
		Status:    &entity.StatusSnapshot{Code: string(entity.BotStatusCallEnded), CreatedAt: &now},
		Message:   "meeting completed",
		Timestamp: now,
	}); err != nil {
		return nil, err
	}
	if err := uow.BotSessionRepository().SetPolling(ctx, session.Id, false); err != nil {
		return nil, err
	}
	s.poller.StopPolling(session.Id)

	transcript, err := uow.TranscriptRepository().FindOne(ctx, specification.ByBotSessionID{BotSessionID: session.Id})
	if err != nil {
		return nil, err
	}
	if transcript != nil {
		if err := uow.TranscriptRepository().SetUploadStatus(ctx, transcript.Id, entity.UploadStatusMeetingCompleted); err != nil {
			return nil, err
		}

		payload, err := json.Marshal(dto.ProcessRecordingMessage{
			SessionId:    session.Id,
			TranscriptId: transcript.Id,
		})
		if err != nil {
			return nil, err
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			s.log.Error("bot", "failed to enqueue recording job", map[string]interface{}{
				"session_id": session.Id.String(),
				"error":      err.Error(),
			})
		}
	}

	s.publishEvent(ctx, events.TypeBotSessionCompleted, map[string]interface{}{
		"session_id": session.Id,
	})

	return &dto.BotWebhookResponse{Event: webhookEventComplete}, nil
}

func (s *botService) handleFailed(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.BotSession, req *dto.BotWebhookRequest) (*dto.BotWebhookResponse, error) {
	if err := uow.BotSessionRepository().StopWithError(ctx, session.Id, "bot reported failure"); err != nil {
		return nil, err
	}
	s.poller.StopPolling(session.Id)

	if err := s.setSessionTranscriptStatus(ctx, uow, session.Id, entity.UploadStatusBotFailed); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeBotSessionFailed, map[string]interface{}{
		"session_id": session.Id,
	})

	return &dto.BotWebhookResponse{Event: webhookEventFailed}, nil
}

func (s *botService) setSessionTranscriptStatus(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, status entity.UploadStatus) error {
	transcript, err := uow.TranscriptRepository().FindOne(ctx, specification.ByBotSessionID{BotSessionID: sessionId})
	if err != nil {
		return err
	}
	if transcript == nil {
		return nil
	}
	return uow.TranscriptRepository().SetUploadStatus(ctx, transcript.Id, status)
}

func (s *botService) GetStatus(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.BotStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.BotSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFoundError("bot session not found")
	}

	// Ownership runs through the placeholder transcript's project.
	transcript, err := uow.TranscriptRepository().FindOne(ctx, specification.ByBotSessionID{BotSessionID: session.Id})
	if err != nil {
		return nil, err
	}
	if transcript != nil {
		project, err := uow.ProjectRepository().FindOne(ctx,
			specification.ByID{ID: transcript.ProjectId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, serverutils.NotFoundError("bot session not found")
		}
	}

	res := &dto.BotStatusResponse{
		SessionId:       session.Id,
		BotId:           session.BotId,
		StatusCode:      string(session.StatusCode),
		StatusCreatedAt: session.StatusCreatedAt,
		IsPolling:       session.IsPolling,
		ErrorCount:      session.ErrorCount,
		LastPollTime:    session.LastPollTime,
		RecordingURL:    session.RecordingURL,
		EventLogs:       make([]dto.EventLogResponse, 0, len(session.EventLogs)),
	}
	for _, e := range session.EventLogs {
		item := dto.EventLogResponse{
			Type:      e.Type,
			Message:   e.Message,
			Timestamp: e.Timestamp,
		}
		if e.Status != nil {
			item.Code = e.Status.Code
			item.StatusAt = e.Status.CreatedAt
		}
		res.EventLogs = append(res.EventLogs, item)
	}
	return res, nil
}

// ResumePolling restarts loops for sessions whose is_polling flag survived
// a process restart.
func (s *botService) ResumePolling(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.BotSessionRepository().FindAll(ctx, specification.CurrentlyPolling{})
	if err != nil {
		return err
	}

	for _, session := range sessions {
		if err := s.poller.StartPolling(poller.Session{Id: session.Id, WebhookURL: session.WebhookURL}); err != nil {
			s.log.Warn("bot", "could not resume polling", map[string]interface{}{
				"session_id": session.Id.String(),
				"error":      err.Error(),
			})
			continue
		}
		s.log.Info("bot", "resumed polling", map[string]interface{}{
			"session_id": session.Id.String(),
		})
	}
	return nil
}

func (s *botService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	event := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}
