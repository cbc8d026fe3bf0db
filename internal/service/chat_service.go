package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"userlens-be/internal/dto"
	"userlens-be/internal/entity"
	"userlens-be/internal/pkg/serverutils"
	"userlens-be/internal/repository/memory"
	"userlens-be/internal/repository/specification"
	"userlens-be/internal/repository/unitofwork"
	"userlens-be/pkg/store"
	"userlens-be/pkg/transcription"

	"github.com/google/uuid"
)

type IChatService interface {
	GetChatData(ctx context.Context, userId uuid.UUID) (*dto.ChatDataResponse, error)
	StartChat(ctx context.Context, userId uuid.UUID, req *dto.StartChatRequest) (*dto.StartChatResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
}

type chatService struct {
	uowFactory    unitofwork.RepositoryFactory
	processing    *transcription.Client
	conversations *memory.ConversationRepository
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	processing *transcription.Client,
	conversations *memory.ConversationRepository,
) IChatService {
	return &chatService{
		uowFactory:    uowFactory,
		processing:    processing,
		conversations: conversations,
	}
}

// GetChatData returns the user's projects with their usable transcripts,
// powering the chat target picker.
func (s *chatService) GetChatData(ctx context.Context, userId uuid.UUID) (*dto.ChatDataResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	projects, err := uow.ProjectRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.ChatDataResponse{Projects: make([]dto.ChatDataProject, 0, len(projects))}
	for _, p := range projects {
		transcripts, err := uow.TranscriptRepository().FindAll(ctx,
			specification.ByProjectID{ProjectID: p.Id},
			specification.ByUploadStatus{Status: string(entity.UploadStatusReadyToUse)},
			specification.OrderBy{Field: "transcript_date", Desc: true},
		)
		if err != nil {
			return nil, err
		}

		item := dto.ChatDataProject{
			Id:          p.Id,
			ProjectName: p.ProjectName,
			Transcripts: make([]dto.TranscriptSummary, 0, len(transcripts)),
		}
		for _, t := range transcripts {
			item.Transcripts = append(item.Transcripts, dto.TranscriptSummary{
				Id:             t.Id,
				TranscriptName: t.TranscriptName,
				TranscriptDate: t.TranscriptDate,
				Origin:         string(t.Origin),
				UploadStatus:   string(t.UploadStatus),
			})
		}
		res.Projects = append(res.Projects, item)
	}
	return res, nil
}

func (s *chatService) StartChat(ctx context.Context, userId uuid.UUID, req *dto.StartChatRequest) (*dto.StartChatResponse, error) {
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

	chatName := project.ProjectName
	chatType := entity.ChatType(req.ChatType)

	if chatType == entity.ChatTypeTranscript {
		if req.TranscriptId == nil {
			return nil, serverutils.BadRequestError("transcript_id is required for transcript chats")
		}
		transcript, err := uow.TranscriptRepository().FindOne(ctx,
			specification.ByID{ID: *req.TranscriptId},
			specification.ByProjectID{ProjectID: project.Id},
		)
		if err != nil {
			return nil, err
		}
		if transcript == nil {
			return nil, serverutils.NotFoundError("transcript not found")
		}
		chatName = transcript.TranscriptName
	}

	session := &entity.ChatSession{
		Id:           uuid.New(),
		UserId:       userId,
		ChatName:     fmt.Sprintf("%s - %s", chatName, time.Now().Format("Jan 2 15:04")),
		ProjectId:    project.Id,
		TranscriptId: req.TranscriptId,
		ChatType:     chatType,
		CreatedAt:    time.Now(),
	}

	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	s.conversations.Save(&store.Conversation{
		SessionId: session.Id.String(),
		UserId:    userId.String(),
		ChatType:  string(chatType),
	})

	return &dto.StartChatResponse{
		SessionId: session.Id,
		ChatName:  session.ChatName,
	}, nil
}

func (s *chatService) ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, cs := range sessions {
		res = append(res, &dto.ChatSessionResponse{
			Id:              cs.Id,
			ChatName:        cs.ChatName,
			ChatType:        string(cs.ChatType),
			ProjectId:       cs.ProjectId,
			TranscriptId:    cs.TranscriptId,
			NumInteractions: cs.NumInteractions,
			CreatedAt:       cs.CreatedAt,
		})
	}
	return res, nil
}

func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: req.SessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFoundError("chat session not found")
	}

	chatContext, err := s.buildContext(ctx, uow, session)
	if err != nil {
		return nil, err
	}

	reply, err := s.processing.Chat(ctx, transcription.ChatRequest{
		SessionId: session.Id.String(),
		Context:   chatContext,
		Message:   req.Message,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.Conversation = append(session.Conversation,
		entity.ChatTurn{Role: store.RoleUser, Content: req.Message, Timestamp: now},
		entity.ChatTurn{Role: store.RoleAssistant, Content: reply.Answer, Timestamp: now},
	)
	session.NumInteractions++
	session.UpdatedAt = &now

	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	// Refresh the in-process cache so repeated messages skip the DB read of
	// the conversation body.
	turns := make([]store.Turn, len(session.Conversation))
	for i, t := range session.Conversation {
		turns[i] = store.Turn{Role: t.Role, Content: t.Content, Timestamp: t.Timestamp}
	}
	s.conversations.Save(&store.Conversation{
		SessionId: session.Id.String(),
		UserId:    userId.String(),
		ChatType:  string(session.ChatType),
		Turns:     turns,
		LastQuery: req.Message,
	})

	res := &dto.SendMessageResponse{
		SessionId: session.Id,
		Answer:    reply.Answer,
		Turns:     make([]dto.ChatTurnResponse, len(session.Conversation)),
	}
	for i, t := range session.Conversation {
		res.Turns[i] = dto.ChatTurnResponse{Role: t.Role, Content: t.Content, Timestamp: t.Timestamp}
	}
	return res, nil
}

// buildContext assembles the grounding text: one transcript for transcript
// chats, all usable transcripts for project chats.
func (s *chatService) buildContext(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession) (string, error) {
	if session.ChatType == entity.ChatTypeTranscript && session.TranscriptId != nil {
		text, err := s.transcriptText(ctx, uow, *session.TranscriptId)
		if err != nil {
			return "", err
		}
		return text, nil
	}

	transcripts, err := uow.TranscriptRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: session.ProjectId},
		specification.ByUploadStatus{Status: string(entity.UploadStatusReadyToUse)},
	)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, t := range transcripts {
		text, err := s.transcriptText(ctx, uow, t.Id)
		if err != nil {
			return "", err
		}
		if text == "" {
			continue
		}
		fmt.Fprintf(&sb, "## %s (%s)\n\n%s\n\n", t.TranscriptName, t.TranscriptDate.Format("2006-01-02"), text)
	}
	return sb.String(), nil
}

func (s *chatService) transcriptText(ctx context.Context, uow unitofwork.UnitOfWork, transcriptId uuid.UUID) (string, error) {
	transcript, err := uow.TranscriptRepository().FindOne(ctx, specification.ByID{ID: transcriptId})
	if err != nil {
		return "", err
	}
	if transcript == nil || transcript.TextId == nil {
		return "", nil
	}
	text, err := uow.TranscriptTextRepository().FindOne(ctx, specification.ByID{ID: *transcript.TextId})
	if err != nil {
		return "", err
	}
	if text == nil {
		return "", nil
	}
	return text.Text, nil
}
