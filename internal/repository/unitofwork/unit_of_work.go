package unitofwork

import (
	"context"

	"userlens-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ProjectRepository() contract.ProjectRepository
	TranscriptRepository() contract.TranscriptRepository
	TranscriptTextRepository() contract.TranscriptTextRepository
	QuestionRepository() contract.QuestionRepository
	ResponseRepository() contract.ResponseRepository
	ChatSessionRepository() contract.ChatSessionRepository
	BotSessionRepository() contract.BotSessionRepository
}
