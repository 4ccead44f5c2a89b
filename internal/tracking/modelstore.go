package tracking

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Checkpoint is a persisted model snapshot: named parameter tensors plus
// the input/output signature needed to rebuild the module around them.
type Checkpoint struct {
	Name    string
	Version string
	State   map[string][]float32
	Inputs  int
	Outputs int
	SavedAt time.Time
}

// ModelStore persists checkpoints to a local directory and mirrors them to
// the artifact store when one is configured.
type ModelStore struct {
	dir       string
	artifacts *ArtifactStore
}

// NewModelStore creates the checkpoint directory if needed
func NewModelStore(dir string, artifacts *ArtifactStore) (*ModelStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	return &ModelStore{dir: dir, artifacts: artifacts}, nil
}

// Save writes the checkpoint and returns its local path
func (s *ModelStore) Save(ctx context.Context, cp Checkpoint) (string, error) {
	if cp.Name == "" || cp.Version == "" {
		return "", fmt.Errorf("checkpoint requires a name and a version")
	}
	cp.SavedAt = time.Now().UTC()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cp); err != nil {
		return "", fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	path := filepath.Join(s.dir, s.fileName(cp.Name, cp.Version))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write checkpoint: %w", err)
	}

	if s.artifacts != nil {
		object := fmt.Sprintf("models/%s", s.fileName(cp.Name, cp.Version))
		if err := s.artifacts.UploadBytes(ctx, object, buf.Bytes(), "application/octet-stream"); err != nil {
			return "", err
		}
	}

	return path, nil
}

// Load reads a checkpoint back by name and version
func (s *ModelStore) Load(name, version string) (*Checkpoint, error) {
	path := filepath.Join(s.dir, s.fileName(name, version))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s %s: %w", name, version, err)
	}

	var cp Checkpoint
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&cp); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint %s %s: %w", name, version, err)
	}
	return &cp, nil
}

func (s *ModelStore) fileName(name, version string) string {
	return fmt.Sprintf("%s_%s.ckpt", name, version)
}
