package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 1000, cfg.ChunkTargetSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 10, cfg.SyncBatchSize)
	assert.Equal(t, 100, cfg.SyncPageSize)
	assert.Equal(t, "https://api.elevenlabs.io", cfg.VoiceAPIBaseURL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SYNC_BATCH_SIZE", "25")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.SyncBatchSize)
	assert.Equal(t, "db.internal", cfg.DBHost)
}

func TestValidate(t *testing.T) {
	t.Run("Missing DB Host", func(t *testing.T) {
		cfg := &Config{DBUser: "u", DBName: "n", ChunkTargetSize: 1000, ChunkOverlap: 200, SyncBatchSize: 10}
		assert.ErrorIs(t, cfg.Validate(), ErrMissingRequired)
	})

	t.Run("Overlap Too Large", func(t *testing.T) {
		cfg := &Config{DBHost: "h", DBUser: "u", DBName: "n", ChunkTargetSize: 100, ChunkOverlap: 100, SyncBatchSize: 10}
		assert.ErrorIs(t, cfg.Validate(), ErrMissingRequired)
	})

	t.Run("Zero Batch Size", func(t *testing.T) {
		cfg := &Config{DBHost: "h", DBUser: "u", DBName: "n", ChunkTargetSize: 1000, ChunkOverlap: 200}
		assert.ErrorIs(t, cfg.Validate(), ErrMissingRequired)
	})
}
