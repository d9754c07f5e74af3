package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Storage  StorageConfig
	Mail     MailConfig
	Auth     AuthConfig
	GenAI    GenAIConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port         int
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level    string
	Encoding string
}

// StorageConfig points at an S3-compatible bucket. PublicURL is the prefix of
// every retrieval URL handed out; URLs not under it are treated as external.
type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Secret   string
}

type AuthConfig struct {
	JWTSecret string
}

type GenAIConfig struct {
	APIKey string
	Model  string
}

type JobsConfig struct {
	QueueSchedule   string
	CleanupSchedule string
	QueueBatchSize  int
}

// Load reads configuration from the environment, overlaid on an optional
// YAML file named by CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_WRITE_TIMEOUT", "60s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "labelflow")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "labelflow")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")
	v.SetDefault("S3_ENDPOINT", "http://127.0.0.1:9000")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "labelflow")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("GENAI_MODEL", "gemini-2.0-flash")
	v.SetDefault("QUEUE_SCHEDULE", "*/10 * * * * *")
	v.SetDefault("CLEANUP_SCHEDULE", "0 */5 * * * *")
	v.SetDefault("QUEUE_BATCH_SIZE", 20)

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
	}

	writeTimeout, err := time.ParseDuration(v.GetString("SERVER_WRITE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SERVER_WRITE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("SERVER_PORT"),
			WriteTimeout: writeTimeout,
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Encoding: v.GetString("LOG_ENCODING"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			Region:    v.GetString("S3_REGION"),
			Bucket:    v.GetString("S3_BUCKET"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			PublicURL: v.GetString("S3_PUBLIC_URL"),
		},
		Mail: MailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
			Secret:   v.GetString("EMAIL_SECRET"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		GenAI: GenAIConfig{
			APIKey: v.GetString("GENAI_API_KEY"),
			Model:  v.GetString("GENAI_MODEL"),
		},
		Jobs: JobsConfig{
			QueueSchedule:   v.GetString("QUEUE_SCHEDULE"),
			CleanupSchedule: v.GetString("CLEANUP_SCHEDULE"),
			QueueBatchSize:  v.GetInt("QUEUE_BATCH_SIZE"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.Storage.PublicURL == "" {
		cfg.Storage.PublicURL = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Storage.Endpoint, "/"), cfg.Storage.Bucket)
	}

	return cfg, nil
}
