// FILE: internal/repository/implementation/bot_session_repository_impl.go
package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"userlens-be/internal/entity"
	"userlens-be/internal/mapper"
	"userlens-be/internal/model"
	"userlens-be/internal/poller"
	"userlens-be/internal/repository/contract"
	"userlens-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BotSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BotSessionMapper
}

func NewBotSessionRepository(db *gorm.DB) contract.BotSessionRepository {
	return &BotSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewBotSessionMapper(),
	}
}

func (r *BotSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// pollingLogPayload marshals one entry as a single-element jsonb array so
// `polling_logs || ?::jsonb` appends it.
func pollingLogPayload(logType, message string, at time.Time) ([]byte, error) {
	return json.Marshal([]entity.PollingLogEntry{{
		Type:      logType,
		Message:   message,
		Timestamp: at,
	}})
}

func eventLogPayload(entry entity.EventLogEntry) ([]byte, error) {
	return json.Marshal([]entity.EventLogEntry{entry})
}

func (r *BotSessionRepositoryImpl) Create(ctx context.Context, session *entity.BotSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *BotSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BotSession, error) {
	var m model.BotSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BotSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BotSession, error) {
	var models []*model.BotSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *BotSessionRepositoryImpl) SetBotId(ctx context.Context, id uuid.UUID, botId string) error {
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Update("bot_id", botId).Error
}

func (r *BotSessionRepositoryImpl) SetStatus(ctx context.Context, id uuid.UUID, code entity.BotStatusCode, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status_code":       string(code),
			"status_created_at": at,
		}).Error
}

func (r *BotSessionRepositoryImpl) AppendEventLog(ctx context.Context, id uuid.UUID, entry entity.EventLogEntry) error {
	payload, err := eventLogPayload(entry)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Update("event_logs", gorm.Expr("event_logs || ?::jsonb", string(payload))).Error
}

func (r *BotSessionRepositoryImpl) SetRecordingURL(ctx context.Context, id uuid.UUID, url string) error {
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Update("recording_url", url).Error
}

func (r *BotSessionRepositoryImpl) SetTranscriptTextId(ctx context.Context, id uuid.UUID, textId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Update("transcript_text_id", textId).Error
}

func (r *BotSessionRepositoryImpl) SetPolling(ctx context.Context, id uuid.UUID, polling bool) error {
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Update("is_polling", polling).Error
}

// poller.SessionStore

func (r *BotSessionRepositoryImpl) State(ctx context.Context, id uuid.UUID) (*poller.SessionState, error) {
	var m model.BotSession
	err := r.db.WithContext(ctx).
		Select("is_polling", "error_count", "created_at").
		First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &poller.SessionState{
		IsPolling:  m.IsPolling,
		ErrorCount: m.ErrorCount,
		StartedAt:  m.CreatedAt,
	}, nil
}

func (r *BotSessionRepositoryImpl) MarkPollAttempt(ctx context.Context, id uuid.UUID, at time.Time) error {
	payload, err := pollingLogPayload(entity.PollLogAttempt, "polling attempt", at)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_poll_time": at,
			"polling_logs":   gorm.Expr("polling_logs || ?::jsonb", string(payload)),
		}).Error
}

func (r *BotSessionRepositoryImpl) AppendPollingLog(ctx context.Context, id uuid.UUID, logType, message string) error {
	payload, err := pollingLogPayload(logType, message, time.Now())
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Update("polling_logs", gorm.Expr("polling_logs || ?::jsonb", string(payload))).Error
}

// IncrementErrorCount bumps the counter and appends the failure log in one
// statement, returning the post-increment value the caller compares against
// the threshold.
func (r *BotSessionRepositoryImpl) IncrementErrorCount(ctx context.Context, id uuid.UUID, message string) (int, error) {
	payload, err := pollingLogPayload(entity.PollLogError, message, time.Now())
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.WithContext(ctx).Raw(
		`UPDATE bot_sessions
		 SET error_count = error_count + 1,
		     polling_logs = polling_logs || ?::jsonb,
		     updated_at = now()
		 WHERE id = ?
		 RETURNING error_count`,
		string(payload), id,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BotSessionRepositoryImpl) ResetErrorCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Update("error_count", 0).Error
}

func (r *BotSessionRepositoryImpl) StopWithLog(ctx context.Context, id uuid.UUID, logType, message string) error {
	payload, err := pollingLogPayload(logType, message, time.Now())
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_polling":   false,
			"polling_logs": gorm.Expr("polling_logs || ?::jsonb", string(payload)),
		}).Error
}

func (r *BotSessionRepositoryImpl) StopWithError(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now()
	payload, err := eventLogPayload(entity.EventLogEntry{
		Type:      entity.EventLogError,
		Message:   message,
		Timestamp: now,
	})
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.BotSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_polling":        false,
			"status_code":       string(entity.BotStatusError),
			"status_created_at": now,
			"event_logs":        gorm.Expr("event_logs || ?::jsonb", string(payload)),
		}).Error
}
