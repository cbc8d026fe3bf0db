package contract

import (
	"context"
	"time"

	"userlens-be/internal/entity"
	"userlens-be/internal/poller"
	"userlens-be/internal/repository/specification"

	"github.com/google/uuid"
)

// BotSessionRepository persists meeting-bot sessions. The embedded
// poller.SessionStore methods are the atomic single-row updates the polling
// loop issues; the rest serve the bot lifecycle endpoints.
type BotSessionRepository interface {
	poller.SessionStore

	Create(ctx context.Context, session *entity.BotSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BotSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BotSession, error)

	SetBotId(ctx context.Context, id uuid.UUID, botId string) error
	SetStatus(ctx context.Context, id uuid.UUID, code entity.BotStatusCode, at time.Time) error
	AppendEventLog(ctx context.Context, id uuid.UUID, entry entity.EventLogEntry) error
	SetRecordingURL(ctx context.Context, id uuid.UUID, url string) error
	SetTranscriptTextId(ctx context.Context, id uuid.UUID, textId uuid.UUID) error
	SetPolling(ctx context.Context, id uuid.UUID, polling bool) error
}
