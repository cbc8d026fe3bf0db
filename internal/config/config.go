package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Storage  StorageConfig
	Services ExternalServices
	Poller   PollerConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	AdminEmail         string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type StorageConfig struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

type ExternalServices struct {
	ProcessingBaseURL string // transcription / question-generation service
	MeetingBotBaseURL string
	MeetingBotAPIKey  string
	TranscribeMethod  string
	TranscribeLang    string
}

type PollerConfig struct {
	Interval      time.Duration
	MaxPollTime   time.Duration
	MaxErrorCount int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "UserLens"),
		},
		Storage: StorageConfig{
			Bucket:    getEnv("AWS_BUCKET_NAME", ""),
			Region:    getEnv("AWS_REGION", "us-east-1"),
			AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Services: ExternalServices{
			ProcessingBaseURL: getEnv("PROCESSING_API_URL", "http://localhost:8000"),
			MeetingBotBaseURL: getEnv("MEETING_BOT_API_URL", "https://api.meetingbaas.com"),
			MeetingBotAPIKey:  getEnv("MEETING_BOT_API_KEY", ""),
			TranscribeMethod:  getEnv("TRANSCRIBE_METHOD", "aws"),
			TranscribeLang:    getEnv("TRANSCRIBE_LANG", "en-US"),
		},
		Poller: PollerConfig{
			Interval:      getEnvAsDuration("POLL_INTERVAL", 30*time.Second),
			MaxPollTime:   getEnvAsDuration("MAX_POLL_TIME", 24*time.Hour),
			MaxErrorCount: getEnvAsInt("MAX_POLL_ERROR_COUNT", 50),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
