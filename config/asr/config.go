package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreFilesystem = "fs"
	StorePostgres   = "postgres"
	StoreSQLite     = "sqlite"
	StoreS3         = "s3"

	BackendWhisper = "whisper"
	BackendOpenAI  = "openai"
)

type Config struct {
	Port           int    `env:"PORT" env-default:"8020"`
	GRPCHealthPort int    `env:"GRPC_HEALTH_PORT" env-default:"0"`
	DataDir        string `env:"DATA_DIR" env-default:"."`
	FrontendDir    string `env:"FRONTEND_DIR" env-default:"frontend"`

	Log  LogConfig
	HTTP HTTPConfig

	ItemStore string `env:"ITEM_STORE" env-default:"fs"`
	TextStore string `env:"TEXT_STORE" env-default:"fs"`
	Database  DatabaseConfig
	S3        S3Config

	Transcribe TranscribeConfig
	Media      MediaConfig
}

type LogConfig struct {
	Level     string `env:"LOG_LEVEL" env-default:"info"`
	Format    string `env:"LOG_FORMAT" env-default:"text"`
	AddSource bool   `env:"LOG_ADD_SOURCE" env-default:"false"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10m"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30m"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DatabaseConfig struct {
	User       string `env:"DB_USER"`
	Password   string `env:"DB_PASSWORD"`
	Host       string `env:"DB_HOST" env-default:"localhost"`
	Name       string `env:"DB_NAME"`
	Port       int    `env:"DB_PORT" env-default:"5432"`
	SSLMode    string `env:"DB_SSLMODE" env-default:"disable"`
	SQLitePath string `env:"SQLITE_PATH" env-default:"history.db"`
}

type S3Config struct {
	Region    string `env:"S3_REGION" env-default:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	Bucket    string `env:"S3_BUCKET"`
	Prefix    string `env:"S3_PREFIX" env-default:"results/"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
}

type TranscribeConfig struct {
	Backend      string        `env:"TRANSCRIBE_BACKEND" env-default:"whisper"`
	Timeout      time.Duration `env:"TRANSCRIBE_TIMEOUT" env-default:"20m"`
	Language     string        `env:"WHISPER_LANGUAGE" env-default:"auto"`
	WhisperPath  string        `env:"WHISPER_PATH" env-default:"whisper-cli"`
	Model        string        `env:"WHISPER_MODEL" env-default:"tiny"`
	ModelDir     string        `env:"WHISPER_MODEL_DIR" env-default:"models"`
	AutoDownload bool          `env:"WHISPER_AUTO_DOWNLOAD" env-default:"true"`
	OpenAIURL    string        `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	OpenAIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIModel  string        `env:"OPENAI_MODEL" env-default:"whisper-1"`
}

type MediaConfig struct {
	FFmpegPath string        `env:"FFMPEG_PATH" env-default:"ffmpeg"`
	Timeout    time.Duration `env:"EXTRACT_TIMEOUT" env-default:"10m"`
}

func (c *Config) UploadDir() string  { return filepath.Join(c.DataDir, "uploads") }
func (c *Config) ResultDir() string  { return filepath.Join(c.DataDir, "results") }
func (c *Config) HistoryDir() string { return filepath.Join(c.DataDir, "history") }

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Name,
		c.Database.Password,
		c.Database.SSLMode,
	)
}

func (c *Config) Validate() error {
	switch c.ItemStore {
	case StoreFilesystem, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unknown ITEM_STORE %q", c.ItemStore)
	}

	switch c.TextStore {
	case StoreFilesystem:
	case StoreS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when TEXT_STORE=%s", StoreS3)
		}
	default:
		return fmt.Errorf("unknown TEXT_STORE %q", c.TextStore)
	}

	switch c.Transcribe.Backend {
	case BackendWhisper:
	case BackendOpenAI:
		if c.Transcribe.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TRANSCRIBE_BACKEND=%s", BackendOpenAI)
		}
	default:
		return fmt.Errorf("unknown TRANSCRIBE_BACKEND %q", c.Transcribe.Backend)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err.Error())
	}

	return cfg
}
