package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"turath/internal/config"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("DB_HOST", "test-host")
	defer os.Unsetenv("DB_HOST")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "test-host", cfg.DBHost)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, 400, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, 50, cfg.MinChunkWords)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 0.5, cfg.ItemSimilarityThreshold)
	assert.Equal(t, 0.45, cfg.AggregateSimilarityThreshold)
	assert.Equal(t, "en", cfg.WorkingLanguage)
	assert.Equal(t, 100, cfg.EmbedBatchSize)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	content := []byte("DB_HOST=loaded-from-file")
	err := os.WriteFile(".env", content, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(".env")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "loaded-from-file", cfg.DBHost)
}
