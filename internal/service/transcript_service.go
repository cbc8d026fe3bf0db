package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"userlens-be/internal/dto"
	"userlens-be/internal/entity"
	"userlens-be/internal/pkg/logger"
	"userlens-be/internal/pkg/serverutils"
	"userlens-be/internal/repository/specification"
	"userlens-be/internal/repository/unitofwork"
	"userlens-be/pkg/events"
	pktNats "userlens-be/pkg/nats"
	"userlens-be/pkg/storage"
	"userlens-be/pkg/transcription"

	"github.com/google/uuid"
)

type ITranscriptService interface {
	Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadTranscriptRequest, fileName, contentType string, file io.Reader) (*dto.UploadTranscriptResponse, error)
	ListByProject(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.TranscriptSummary, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowTranscriptResponse, error)
	Rename(ctx context.Context, userId uuid.UUID, req *dto.RenameTranscriptRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	MarkProcessed(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.MarkProcessedResponse, error)
	DownloadURL(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DownloadURLResponse, error)
}

type transcriptService struct {
	uowFactory       unitofwork.RepositoryFactory
	objects          storage.ObjectStorage
	processing       *transcription.Client
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
	transcribeMethod string
	transcribeLang   string
}

func NewTranscriptService(
	uowFactory unitofwork.RepositoryFactory,
	objects storage.ObjectStorage,
	processing *transcription.Client,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	transcribeMethod string,
	transcribeLang string,
) ITranscriptService {
	return &transcriptService{
		uowFactory:       uowFactory,
		objects:          objects,
		processing:       processing,
		eventPublisher:   eventPublisher,
		log:              log,
		transcribeMethod: transcribeMethod,
		transcribeLang:   transcribeLang,
	}
}

// Upload validates, stores the file, creates the transcript row, and runs
// text extraction. Validation failures happen before anything is written;
// a storage failure aborts before a transcript row exists; an extraction
// failure leaves the row in PROCESSING_FAILED with no rollback.
func (s *transcriptService) Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadTranscriptRequest, fileName, contentType string, file io.Reader) (*dto.UploadTranscriptResponse, error) {
	if file == nil || fileName == "" {
		return nil, serverutils.BadRequestError("no file provided")
	}

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

	key := storage.GenerateKey(userId.String(), project.Id.String(), fileName)
	url, err := s.objects.Put(ctx, key, file, contentType)
	if err != nil {
		s.publishEvent(ctx, events.TypeTranscriptUploadFail, map[string]interface{}{
			"project_id": project.Id,
			"file_name":  fileName,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	transcriptDate := req.TranscriptDate
	if transcriptDate.IsZero() {
		transcriptDate = time.Now()
	}

	transcript := &entity.Transcript{
		Id:             uuid.New(),
		ProjectId:      project.Id,
		TranscriptName: req.TranscriptName,
		TranscriptDate: transcriptDate,
		Origin:         entity.OriginFileUpload,
		UploadStatus:   entity.UploadStatusProcessing,
		FileType:       contentType,
		S3Key:          key,
		S3Url:          url,
		CreatedAt:      time.Now(),
	}

	if err := uow.TranscriptRepository().Create(ctx, transcript); err != nil {
		return nil, err
	}

	signedURL, err := s.objects.SignedDownloadURL(ctx, key)
	if err != nil {
		signedURL = url
	}

	extracted, err := s.processing.ProcessFile(ctx, transcription.ProcessFileRequest{
		URL:              signedURL,
		TranscribeMethod: s.transcribeMethod,
		TranscribeLang:   s.transcribeLang,
	})
	if err != nil {
		s.log.Error("transcript", "text extraction failed", map[string]interface{}{
			"transcript_id": transcript.Id.String(),
			"error":         err.Error(),
		})
		if setErr := uow.TranscriptRepository().SetUploadStatus(ctx, transcript.Id, entity.UploadStatusProcessingFailed); setErr != nil {
			return nil, setErr
		}
		return &dto.UploadTranscriptResponse{
			Id:           transcript.Id,
			UploadStatus: string(entity.UploadStatusProcessingFailed),
		}, nil
	}

	text := &entity.TranscriptText{
		Id:        uuid.New(),
		Text:      extracted.Transcript,
		CreatedAt: time.Now(),
	}
	if err := uow.TranscriptTextRepository().Create(ctx, text); err != nil {
		return nil, err
	}

	transcript.TextId = &text.Id
	transcript.UploadStatus = entity.UploadStatusReadyToUse
	if err := uow.TranscriptRepository().Update(ctx, transcript); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeTranscriptProcessed, map[string]interface{}{
		"transcript_id": transcript.Id,
		"project_id":    project.Id,
	})

	return &dto.UploadTranscriptResponse{
		Id:           transcript.Id,
		UploadStatus: string(transcript.UploadStatus),
	}, nil
}

func (s *transcriptService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
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

// findOwned resolves a transcript and verifies the project belongs to the
// caller.
func (s *transcriptService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Transcript, error) {
	transcript, err := uow.TranscriptRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if transcript == nil {
		return nil, serverutils.NotFoundError("transcript not found")
	}

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: transcript.ProjectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, serverutils.NotFoundError("transcript not found")
	}
	return transcript, nil
}

func (s *transcriptService) ListByProject(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.TranscriptSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: projectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, serverutils.NotFoundError("project not found")
	}

	transcripts, err := uow.TranscriptRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "transcript_date", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.TranscriptSummary, 0, len(transcripts))
	for _, t := range transcripts {
		res = append(res, &dto.TranscriptSummary{
			Id:             t.Id,
			TranscriptName: t.TranscriptName,
			TranscriptDate: t.TranscriptDate,
			Origin:         string(t.Origin),
			UploadStatus:   string(t.UploadStatus),
		})
	}
	return res, nil
}

func (s *transcriptService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowTranscriptResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	transcript, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	res := &dto.ShowTranscriptResponse{
		Id:                 transcript.Id,
		ProjectId:          transcript.ProjectId,
		TranscriptName:     transcript.TranscriptName,
		TranscriptDate:     transcript.TranscriptDate,
		Origin:             string(transcript.Origin),
		UploadStatus:       string(transcript.UploadStatus),
		FileType:           transcript.FileType,
		LastProcessingDate: transcript.LastProcessingDate,
		ActiveAnswers:      transcript.ActiveAnswers,
		CreatedAt:          transcript.CreatedAt,
	}

	if transcript.TextId != nil {
		text, err := uow.TranscriptTextRepository().FindOne(ctx, specification.ByID{ID: *transcript.TextId})
		if err != nil {
			return nil, err
		}
		if text != nil {
			res.Text = text.Text
		}
	}

	return res, nil
}

func (s *transcriptService) Rename(ctx context.Context, userId uuid.UUID, req *dto.RenameTranscriptRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	transcript, err := s.findOwned(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}

	transcript.TranscriptName = req.TranscriptName
	now := time.Now()
	transcript.UpdatedAt = &now
	return uow.TranscriptRepository().Update(ctx, transcript)
}

func (s *transcriptService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	transcript, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if transcript.S3Key != "" {
		if err := s.objects.Delete(ctx, transcript.S3Key); err != nil {
			s.log.Warn("transcript", "failed to delete stored object", map[string]interface{}{
				"transcript_id": transcript.Id.String(),
				"s3_key":        transcript.S3Key,
				"error":         err.Error(),
			})
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ResponseRepository().DeleteAllByTranscriptId(ctx, transcript.Id); err != nil {
		return err
	}
	if err := uow.TranscriptRepository().Delete(ctx, transcript.Id); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *transcriptService) MarkProcessed(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.MarkProcessedResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	transcript, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	transcript.LastProcessingDate = &now
	transcript.UpdatedAt = &now
	if err := uow.TranscriptRepository().Update(ctx, transcript); err != nil {
		return nil, err
	}

	return &dto.MarkProcessedResponse{
		Id:                 transcript.Id,
		LastProcessingDate: transcript.LastProcessingDate,
	}, nil
}

func (s *transcriptService) DownloadURL(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DownloadURLResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	transcript, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	if transcript.S3Key == "" {
		return nil, serverutils.NotFoundError("transcript has no stored file")
	}

	url, err := s.objects.SignedDownloadURL(ctx, transcript.S3Key)
	if err != nil {
		return nil, err
	}
	return &dto.DownloadURLResponse{URL: url}, nil
}
