package tracking

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaml/luna16/internal/registry"
)

func testScope() registry.Scope {
	return registry.Scope{
		RunID:     "run-abc",
		RunName:   "classification",
		StartedAt: time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestOpenRun(t *testing.T) {
	t.Run("creates the run directory with metadata", func(t *testing.T) {
		dir := t.TempDir()

		run, err := OpenRun(dir, nil, testScope())
		require.NoError(t, err)
		defer run.Close()

		data, err := os.ReadFile(filepath.Join(run.Dir(), "meta.json"))
		require.NoError(t, err)

		var meta runMeta
		require.NoError(t, json.Unmarshal(data, &meta))
		assert.Equal(t, "run-abc", meta.ID)
		assert.Equal(t, "classification", meta.Name)
		assert.Nil(t, meta.EndedAt)
	})

	t.Run("rejects an incomplete scope", func(t *testing.T) {
		scope := testScope()
		scope.RunID = ""

		_, err := OpenRun(t.TempDir(), nil, scope)
		assert.Error(t, err)
	})
}

func TestRun_Close(t *testing.T) {
	t.Run("persists params, metrics, and the end time", func(t *testing.T) {
		run, err := OpenRun(t.TempDir(), nil, testScope())
		require.NoError(t, err)

		run.LogParam("learning_rate", "0.001")
		run.LogParam("epochs", "10")
		require.NoError(t, run.LogMetric("training/loss", 0.42, 100))

		require.NoError(t, run.Close())

		params, err := os.ReadFile(filepath.Join(run.Dir(), "params.json"))
		require.NoError(t, err)
		assert.Contains(t, string(params), "learning_rate")

		metrics, err := os.ReadFile(filepath.Join(run.Dir(), "metrics.jsonl"))
		require.NoError(t, err)
		assert.Contains(t, string(metrics), "training/loss")

		meta, err := os.ReadFile(filepath.Join(run.Dir(), "meta.json"))
		require.NoError(t, err)
		var parsed runMeta
		require.NoError(t, json.Unmarshal(meta, &parsed))
		assert.NotNil(t, parsed.EndedAt)
	})

	t.Run("is idempotent", func(t *testing.T) {
		run, err := OpenRun(t.TempDir(), nil, testScope())
		require.NoError(t, err)

		require.NoError(t, run.Close())
		require.NoError(t, run.Close())
	})
}

func TestRun_LogArtifact(t *testing.T) {
	run, err := OpenRun(t.TempDir(), nil, testScope())
	require.NoError(t, err)
	defer run.Close()

	require.NoError(t, run.LogArtifact(context.Background(), "summary.txt", []byte("model summary"), "text/plain"))

	data, err := os.ReadFile(filepath.Join(run.Dir(), "artifacts", "summary.txt"))
	require.NoError(t, err)
	assert.Equal(t, "model summary", string(data))
}
