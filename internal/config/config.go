package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"companion-counselling-be/internal/pkg/apperror"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Auth         AuthConfig
	Video        VideoConfig
	Notification NotificationConfig
	SMTP         SMTPConfig
	Recommender  RecommenderConfig
	Tracing      TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RealtimeLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JWTSecret string
}

type VideoConfig struct {
	AppID     string
	AppSecret string
	TokenTTL  time.Duration
	// ReaperInterval of zero keeps expiry strictly client-triggered.
	ReaperInterval time.Duration
	SessionMaxAge  time.Duration
}

type NotificationConfig struct {
	EventTopic string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type RecommenderConfig struct {
	Command string
	Script  string
	Timeout time.Duration
	// CacheTTL bounds how long a user's scores are reused.
	CacheTTL time.Duration
}

// TracingConfig is off unless OTEL_ENABLED=true.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RealtimeLogPath:    getEnv("REALTIME_LOG_FILE_PATH", "logs/notification.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Video: VideoConfig{
			AppID:          getEnv("VIDEO_APP_ID", ""),
			AppSecret:      getEnv("VIDEO_APP_SECRET", ""),
			TokenTTL:       getEnvAsDuration("VIDEO_TOKEN_TTL", time.Hour),
			ReaperInterval: getEnvAsDuration("SESSION_REAPER_INTERVAL", 0),
			SessionMaxAge:  getEnvAsDuration("SESSION_MAX_AGE", 2*time.Hour),
		},
		Notification: NotificationConfig{
			EventTopic: getEnv("SESSION_EVENT_TOPIC", "session.events"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Companion"),
		},
		Recommender: RecommenderConfig{
			Command:  getEnv("RECOMMENDER_COMMAND", "python3"),
			Script:   getEnv("RECOMMENDER_SCRIPT", ""),
			Timeout:  getEnvAsDuration("RECOMMENDER_TIMEOUT", 10*time.Second),
			CacheTTL: getEnvAsDuration("RECOMMENDER_CACHE_TTL", 10*time.Minute),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "companion-counselling-backend"),
		},
	}
}

// Validate reports deployment mistakes that must stop the process at startup.
func (c *Config) Validate() error {
	missing := map[string]string{}
	if c.Video.AppID == "" {
		missing["VIDEO_APP_ID"] = "required"
	}
	if c.Video.AppSecret == "" {
		missing["VIDEO_APP_SECRET"] = "required"
	}
	if c.Auth.JWTSecret == "" {
		missing["JWT_SECRET"] = "required"
	}
	if len(missing) > 0 {
		err := apperror.Configuration("missing required configuration")
		err.Fields = missing
		return err
	}
	return nil
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
