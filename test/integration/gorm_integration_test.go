package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"userlens-be/internal/entity"
	"userlens-be/internal/repository/specification"
	"userlens-be/internal/repository/unitofwork"
	"userlens-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.BotSessionRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Transcript Repository", func(t *testing.T) {
		count, err := uow.TranscriptRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Transcript count: %d", count)
	})

	t.Run("Check Transactional Project Create", func(t *testing.T) {
		ctx := context.Background()

		userId := uuid.New()
		user := &entity.User{
			Id:        userId,
			Email:     "test-integration-" + uuid.New().String() + "@example.com",
			FirstName: "Integration",
			LastName:  "User",
			Role:      entity.UserRoleUser,
			Status:    entity.UserStatusActive,
			CreatedAt: time.Now(),
		}
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)

		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		projectId := uuid.New()
		project := &entity.Project{
			Id:          projectId,
			UserId:      userId,
			ProjectName: "Integration Project",
			CreatedAt:   time.Now(),
		}
		err = uow.ProjectRepository().Create(ctx, project)
		assert.NoError(t, err)

		transcript := &entity.Transcript{
			Id:             uuid.New(),
			ProjectId:      projectId,
			TranscriptName: "Integration Transcript",
			TranscriptDate: time.Now(),
			Origin:         entity.OriginFileUpload,
			UploadStatus:   entity.UploadStatusUploaded,
			CreatedAt:      time.Now(),
		}
		err = uow.TranscriptRepository().Create(ctx, transcript)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		t.Log("Successfully created Project with Transcript in Transaction")
	})

	t.Run("Check BotSession Atomic Updates", func(t *testing.T) {
		ctx := context.Background()

		session := &entity.BotSession{
			Id:          uuid.New(),
			MeetingURL:  "https://meet.example.com/integration",
			MeetingName: "Integration Meeting",
			WebhookURL:  "https://app.test/api/bot/webhook/deadbeef000000",
			StatusCode:  entity.BotStatusJoiningCall,
			IsPolling:   true,
			CreatedAt:   time.Now(),
		}
		err := uow.BotSessionRepository().Create(ctx, session)
		require.NoError(t, err)

		// jsonb append path
		count, err := uow.BotSessionRepository().IncrementErrorCount(ctx, session.Id, "connection refused")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		state, err := uow.BotSessionRepository().State(ctx, session.Id)
		require.NoError(t, err)
		assert.True(t, state.IsPolling)
		assert.Equal(t, 1, state.ErrorCount)

		found, err := uow.BotSessionRepository().FindOne(ctx,
			specification.ByWebhookIDFragment{WebhookID: "deadbeef000000"},
		)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, session.Id, found.Id)
	})
}
