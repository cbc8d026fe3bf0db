package service

import (
	"context"
	"encoding/json"
	"time"

	"userlens-be/internal/dto"
	"userlens-be/internal/entity"
	"userlens-be/internal/pkg/logger"
	"userlens-be/internal/repository/specification"
	"userlens-be/internal/repository/unitofwork"
	"userlens-be/pkg/events"
	pktNats "userlens-be/pkg/nats"
	"userlens-be/pkg/storage"
	"userlens-be/pkg/transcription"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	uowFactory       unitofwork.RepositoryFactory
	objects          storage.ObjectStorage
	processing       *transcription.Client
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
	transcribeMethod string
	transcribeLang   string
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	objects storage.ObjectStorage,
	processing *transcription.Client,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	transcribeMethod string,
	transcribeLang string,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		uowFactory:       uowFactory,
		objects:          objects,
		processing:       processing,
		eventPublisher:   eventPublisher,
		log:              log,
		transcribeMethod: transcribeMethod,
		transcribeLang:   transcribeLang,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ProcessRecordingMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal recording job", map[string]interface{}{
			"error": err.Error(),
		})
		// Invalid payloads are acked so they do not loop forever.
		msg.Ack()
		return
	}

	if err := cs.processRecording(ctx, payload); err != nil {
		cs.log.Error("consumer", "recording job failed", map[string]interface{}{
			"session_id":    payload.SessionId.String(),
			"transcript_id": payload.TranscriptId.String(),
			"error":         err.Error(),
		})
	}
	// Failures are recorded on the transcript status; redelivery would not
	// help once the status is terminal.
	msg.Ack()
}

func (cs *consumerService) processRecording(ctx context.Context, payload dto.ProcessRecordingMessage) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.BotSessionRepository().FindOne(ctx, specification.ByID{ID: payload.SessionId})
	if err != nil {
		return err
	}
	transcript, err := uow.TranscriptRepository().FindOne(ctx, specification.ByID{ID: payload.TranscriptId})
	if err != nil {
		return err
	}
	if session == nil || transcript == nil {
		cs.log.Warn("consumer", "recording job references missing rows", map[string]interface{}{
			"session_id":    payload.SessionId.String(),
			"transcript_id": payload.TranscriptId.String(),
		})
		return nil
	}
	if session.RecordingURL == nil || *session.RecordingURL == "" {
		return uow.TranscriptRepository().SetUploadStatus(ctx, transcript.Id, entity.UploadStatusUploadFailed)
	}

	project, err := uow.ProjectRepository().FindOne(ctx, specification.ByID{ID: transcript.ProjectId})
	if err != nil {
		return err
	}
	if project == nil {
		return nil
	}

	// 1. Mirror the vendor's short-lived recording URL into our bucket.
	key := storage.GenerateKey(project.UserId.String(), project.Id.String(), session.MeetingName+".mp4")
	url, err := cs.objects.PutRemote(ctx, *session.RecordingURL, key)
	if err != nil {
		cs.publishEvent(ctx, events.TypeTranscriptUploadFail, map[string]interface{}{
			"transcript_id": transcript.Id,
			"error":         err.Error(),
		})
		return uow.TranscriptRepository().SetUploadStatus(ctx, transcript.Id, entity.UploadStatusUploadFailed)
	}

	transcript.S3Key = key
	transcript.S3Url = url
	transcript.UploadStatus = entity.UploadStatusUploadCompleted
	if err := uow.TranscriptRepository().Update(ctx, transcript); err != nil {
		return err
	}

	// 2. Transcribe.
	if err := uow.TranscriptRepository().SetUploadStatus(ctx, transcript.Id, entity.UploadStatusProcessing); err != nil {
		return err
	}

	result, err := cs.processing.ProcessBotFile(ctx, transcription.ProcessBotFileRequest{
		BotURL:                  *session.RecordingURL,
		S3FilePath:              key,
		TranscribeMethod:        cs.transcribeMethod,
		TranscribeLang:          cs.transcribeLang,
		TranscribeSpeakerNumber: 2,
	})
	if err != nil {
		cs.log.Error("consumer", "bot recording transcription failed", map[string]interface{}{
			"transcript_id": transcript.Id.String(),
			"error":         err.Error(),
		})
		return uow.TranscriptRepository().SetUploadStatus(ctx, transcript.Id, entity.UploadStatusProcessingFailed)
	}

	text := &entity.TranscriptText{
		Id:        uuid.New(),
		Text:      result.Transcript,
		CreatedAt: time.Now(),
	}
	if err := uow.TranscriptTextRepository().Create(ctx, text); err != nil {
		return err
	}
	if err := uow.BotSessionRepository().SetTranscriptTextId(ctx, session.Id, text.Id); err != nil {
		return err
	}

	now := time.Now()
	transcript.TextId = &text.Id
	transcript.UploadStatus = entity.UploadStatusProcessed
	transcript.LastProcessingDate = &now
	transcript.UpdatedAt = &now
	if err := uow.TranscriptRepository().Update(ctx, transcript); err != nil {
		return err
	}

	// 3. Seed project questions from the recording when none exist yet.
	questions := result.Questions
	if len(questions) == 0 {
		questions, err = cs.processing.GenerateQuestions(ctx, result.Transcript)
		if err != nil {
			cs.log.Warn("consumer", "question generation failed", map[string]interface{}{
				"transcript_id": transcript.Id.String(),
				"error":         err.Error(),
			})
			questions = nil
		}
	}
	if len(questions) > 0 {
		if err := cs.seedProjectQuestions(ctx, uow, project.Id, questions); err != nil {
			cs.log.Warn("consumer", "failed to seed project questions", map[string]interface{}{
				"project_id": project.Id.String(),
				"error":      err.Error(),
			})
		}
	}

	if err := uow.TranscriptRepository().SetUploadStatus(ctx, transcript.Id, entity.UploadStatusReadyToUse); err != nil {
		return err
	}

	cs.publishEvent(ctx, events.TypeTranscriptProcessed, map[string]interface{}{
		"transcript_id": transcript.Id,
		"session_id":    session.Id,
	})

	cs.log.Info("consumer", "recording processed", map[string]interface{}{
		"transcript_id": transcript.Id.String(),
		"session_id":    session.Id.String(),
	})
	return nil
}

// seedProjectQuestions fills empty question slots with generated questions.
// Projects that already have questions are left alone.
func (cs *consumerService) seedProjectQuestions(ctx context.Context, uow unitofwork.UnitOfWork, projectId uuid.UUID, questions []string) error {
	slots, err := uow.QuestionRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "position", Desc: false},
	)
	if err != nil {
		return err
	}

	for _, q := range slots {
		if q.Question != "" {
			return nil
		}
	}

	now := time.Now()
	for i, text := range questions {
		if i < len(slots) {
			slots[i].Question = text
			slots[i].UpdatedAt = &now
			if err := uow.QuestionRepository().Update(ctx, slots[i]); err != nil {
				return err
			}
			continue
		}
		slot := &entity.Question{
			Id:        uuid.New(),
			ProjectId: projectId,
			Question:  text,
			Position:  i,
			CreatedAt: now,
		}
		if err := uow.QuestionRepository().Create(ctx, slot); err != nil {
			return err
		}
	}

	transcriptCount, err := uow.TranscriptRepository().Count(ctx, specification.ByProjectID{ProjectID: projectId})
	if err != nil {
		return err
	}
	return uow.ProjectRepository().RecordQuestionGeneration(ctx, projectId, now, int(transcriptCount), nil)
}

func (cs *consumerService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if cs.eventPublisher == nil {
		return
	}
	event := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		cs.log.Warn("consumer", "failed to publish event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
