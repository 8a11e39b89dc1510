package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	IMAP     IMAPConfig
	Storage  StorageConfig
	Ingest   IngestConfig
	Notify   NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters for agent logins.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// IMAPConfig holds support-mailbox credentials.
type IMAPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Folder   string
	TLS      bool
}

// StorageConfig selects and configures the attachment object store.
type StorageConfig struct {
	Driver         string // "fs" or "s3"
	Root           string // fs root directory
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

// IngestConfig tunes the mailbox-poll pipeline.
type IngestConfig struct {
	BatchLimit      int
	LookbackMinutes int
	DedupTTLHours   int
}

// NotificationConfig configures outbound notification stubs.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		IMAP: IMAPConfig{
			Host:     getEnv("IMAP_HOST", "localhost"),
			Port:     getEnv("IMAP_PORT", "993"),
			Username: os.Getenv("IMAP_USERNAME"),
			Password: os.Getenv("IMAP_PASSWORD"),
			Folder:   getEnv("IMAP_FOLDER", "INBOX"),
			TLS:      getEnvAsBool("IMAP_TLS", true),
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", "fs"),
			Root:           getEnv("STORAGE_ROOT", "storage/attachments"),
			S3Bucket:       os.Getenv("STORAGE_S3_BUCKET"),
			S3Region:       getEnv("STORAGE_S3_REGION", "us-east-1"),
			S3Endpoint:     os.Getenv("STORAGE_S3_ENDPOINT"),
			S3AccessKey:    os.Getenv("STORAGE_S3_ACCESS_KEY"),
			S3SecretKey:    os.Getenv("STORAGE_S3_SECRET_KEY"),
			S3UsePathStyle: getEnvAsBool("STORAGE_S3_PATH_STYLE", true),
		},
		Ingest: IngestConfig{
			BatchLimit:      getEnvAsInt("INGEST_BATCH_LIMIT", 50),
			LookbackMinutes: getEnvAsInt("INGEST_LOOKBACK_MINUTES", 60),
			DedupTTLHours:   getEnvAsInt("INGEST_DEDUP_TTL_HOURS", 24),
		},
		Notify: NotificationConfig{
			EmailFrom:  os.Getenv("NOTIFY_EMAIL_FROM"),
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Validate ensures mailbox credentials are present before a poll run.
func (i IMAPConfig) Validate() error {
	if i.Username == "" || i.Password == "" {
		return errors.New("IMAP_USERNAME and IMAP_PASSWORD must be set")
	}
	return nil
}

// Addr returns the IMAP server address.
func (i IMAPConfig) Addr() string {
	return fmt.Sprintf("%s:%s", i.Host, i.Port)
}

// Lookback returns the fetch window for unseen messages.
func (i IngestConfig) Lookback() time.Duration {
	if i.LookbackMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(i.LookbackMinutes) * time.Minute
}

// DedupTTL returns how long processed message-ids are remembered in Redis.
func (i IngestConfig) DedupTTL() time.Duration {
	if i.DedupTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(i.DedupTTLHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
