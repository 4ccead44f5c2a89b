package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Training.Epochs)
	assert.Equal(t, 32, cfg.Training.BatchSize)
	assert.InDelta(t, 0.001, cfg.Training.LearningRate, 1e-9)
	assert.Equal(t, 5, cfg.Training.ValidationCadence)
	assert.Equal(t, "./runs", cfg.Tracking.Dir)
	assert.Equal(t, "./models", cfg.Tracking.ModelsDir)
	assert.False(t, cfg.MinIO.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LUNA16_TRAINING_EPOCHS", "7")
	t.Setenv("LUNA16_TRACKING_DIR", "/tmp/luna16-runs")
	t.Setenv("LUNA16_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Training.Epochs)
	assert.Equal(t, "/tmp/luna16-runs", cfg.Tracking.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Run("zero batch size", func(t *testing.T) {
		t.Setenv("LUNA16_TRAINING_BATCH_SIZE", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("zero epochs", func(t *testing.T) {
		t.Setenv("LUNA16_TRAINING_EPOCHS", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("minio enabled without endpoint", func(t *testing.T) {
		t.Setenv("LUNA16_MINIO_ENABLED", "true")
		t.Setenv("LUNA16_MINIO_ENDPOINT", "")
		_, err := Load()
		assert.Error(t, err)
	})
}
