package bootstrap

import (
	"context"
	"log"
	"time"

	"userlens-be/internal/config"
	"userlens-be/internal/controller"
	"userlens-be/internal/pkg/logger"
	"userlens-be/internal/pkg/mailer"
	"userlens-be/internal/poller"
	"userlens-be/internal/repository/implementation"
	"userlens-be/internal/repository/memory"
	"userlens-be/internal/repository/unitofwork"
	"userlens-be/internal/service"
	"userlens-be/pkg/meetingbot"
	pktNats "userlens-be/pkg/nats"
	"userlens-be/pkg/storage"
	"userlens-be/pkg/transcription"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// processRecordingTopic is the in-process bus topic that carries completed
// meeting recordings from the webhook handler to the consumer.
const processRecordingTopic = "process-recording"

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	UserController       controller.IUserController
	ProjectController    controller.IProjectController
	TranscriptController controller.ITranscriptController
	QuestionController   controller.IQuestionController
	ChatController       controller.IChatController
	BotController        controller.IBotController
	ContactController    controller.IContactController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	BotService      service.IBotService
	Poller          *poller.Poller
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	objects, err := storage.NewS3Storage(
		context.Background(),
		cfg.Storage.Bucket,
		cfg.Storage.Region,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize S3 storage: %v", err)
	}

	processingClient := transcription.NewClient(cfg.Services.ProcessingBaseURL)
	botClient := meetingbot.NewClient(cfg.Services.MeetingBotBaseURL, cfg.Services.MeetingBotAPIKey)

	// 3. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisherService := service.NewPublisherService(processRecordingTopic, pubSub)

	// 4. Poller
	// The poller writes through its own repository handle so its ticks never
	// share a transaction with request handlers.
	botSessionRepo := implementation.NewBotSessionRepository(db)
	pollerLogger := logger.NewIsolatedLogger("logs/poller.log")
	sessionPoller := poller.NewPoller(
		poller.Policy{
			Interval:      cfg.Poller.Interval,
			MaxPollTime:   cfg.Poller.MaxPollTime,
			MaxErrorCount: cfg.Poller.MaxErrorCount,
		},
		botSessionRepo,
		poller.NewHTTPWebhookCaller(30*time.Second),
		pollerLogger,
	)

	// 5. Services
	conversations := memory.NewConversationRepository()

	authService := service.NewAuthService(uowFactory, emailService, natsPub)
	userService := service.NewUserService(uowFactory)
	projectService := service.NewProjectService(uowFactory, objects, sysLogger)
	transcriptService := service.NewTranscriptService(
		uowFactory,
		objects,
		processingClient,
		natsPub,
		sysLogger,
		cfg.Services.TranscribeMethod,
		cfg.Services.TranscribeLang,
	)
	questionService := service.NewQuestionService(uowFactory, processingClient)
	chatService := service.NewChatService(uowFactory, processingClient, conversations)
	contactService := service.NewContactService(emailService, cfg.App.AdminEmail, sysLogger)

	botService := service.NewBotService(
		uowFactory,
		botClient,
		sessionPoller,
		publisherService,
		natsPub,
		sysLogger,
		cfg.App.BaseURL,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		processRecordingTopic,
		uowFactory,
		objects,
		processingClient,
		natsPub,
		sysLogger,
		cfg.Services.TranscribeMethod,
		cfg.Services.TranscribeLang,
	)

	// 6. Controllers
	return &Container{
		AuthController:       controller.NewAuthController(authService),
		UserController:       controller.NewUserController(userService),
		ProjectController:    controller.NewProjectController(projectService),
		TranscriptController: controller.NewTranscriptController(transcriptService),
		QuestionController:   controller.NewQuestionController(questionService),
		ChatController:       controller.NewChatController(chatService),
		BotController:        controller.NewBotController(botService),
		ContactController:    controller.NewContactController(contactService),

		ConsumerService: consumerService,
		BotService:      botService,
		Poller:          sessionPoller,
	}
}
