package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"voxboard"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"voxboard"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	VoiceAPIBaseURL string `envconfig:"VOICE_API_BASE_URL" default:"https://api.elevenlabs.io"`

	// Sync engine tuning. Page size bounds how many conversation summaries
	// are requested per agent; batch size is the only admission control on
	// in-flight detail fetches.
	SyncPageSize  int `envconfig:"SYNC_PAGE_SIZE" default:"100"`
	SyncBatchSize int `envconfig:"SYNC_BATCH_SIZE" default:"10"`

	ChunkTargetSize int `envconfig:"CHUNK_TARGET_SIZE" default:"1000"`
	ChunkOverlap    int `envconfig:"CHUNK_OVERLAP" default:"200"`

	// Server
	ServerPort      int    `envconfig:"SERVER_PORT" default:"8081"`
	MaxUploadSizeMB int64  `envconfig:"MAX_UPLOAD_SIZE_MB" default:"50"`
	MigrationPath   string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Best effort: env vars may be set in the shell instead.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChunkOverlap >= c.ChunkTargetSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be smaller than CHUNK_TARGET_SIZE", ErrMissingRequired)
	}
	if c.SyncBatchSize < 1 {
		return fmt.Errorf("%w: SYNC_BATCH_SIZE must be positive", ErrMissingRequired)
	}
	return nil
}
