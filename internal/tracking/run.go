package tracking

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lunaml/luna16/internal/pkg/logger"
	"github.com/lunaml/luna16/internal/registry"
)

// runMeta is persisted as meta.json in the run directory.
type runMeta struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Param is one logged hyperparameter, order-preserving.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// metricRow is one line of metrics.jsonl.
type metricRow struct {
	Key   string    `json:"key"`
	Value float64   `json:"value"`
	Step  int       `json:"step"`
	Wall  time.Time `json:"wall"`
}

// Run is one experiment-tracking run: a local run directory holding
// metadata, parameters, metrics and artifacts, optionally mirrored to an
// artifact store on close. It plays the role the remote tracking server
// run handle plays in the larger system.
type Run struct {
	ID        string
	Name      string
	StartedAt time.Time

	dir       string
	artifacts *ArtifactStore
	params    []Param
	metrics   *os.File
	metricBuf *bufio.Writer
	metricEnc *json.Encoder
	closed    bool
}

// OpenRun creates the run directory for scope and opens the metrics log.
// artifacts may be nil for local-only tracking.
func OpenRun(baseDir string, artifacts *ArtifactStore, scope registry.Scope) (*Run, error) {
	if err := scope.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run scope: %w", err)
	}

	dir := filepath.Join(baseDir, scope.RunID)
	if err := os.MkdirAll(filepath.Join(dir, "artifacts"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	meta := runMeta{ID: scope.RunID, Name: scope.RunName, StartedAt: scope.StartedAt}
	if err := writeJSON(filepath.Join(dir, "meta.json"), meta); err != nil {
		return nil, err
	}

	metrics, err := os.OpenFile(filepath.Join(dir, "metrics.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics log: %w", err)
	}

	buf := bufio.NewWriter(metrics)
	run := &Run{
		ID:        scope.RunID,
		Name:      scope.RunName,
		StartedAt: scope.StartedAt,
		dir:       dir,
		artifacts: artifacts,
		metrics:   metrics,
		metricBuf: buf,
		metricEnc: json.NewEncoder(buf),
	}

	logger.Info("opened tracking run",
		zap.String("run_id", run.ID),
		zap.String("run_name", run.Name),
		zap.String("dir", dir),
	)
	return run, nil
}

// Dir returns the local run directory.
func (r *Run) Dir() string { return r.dir }

// LogParam records one named hyperparameter
func (r *Run) LogParam(name, value string) {
	r.params = append(r.params, Param{Name: name, Value: value})
}

// LogMetric appends one metric observation at the given step
func (r *Run) LogMetric(key string, value float64, step int) error {
	return r.metricEnc.Encode(metricRow{
		Key:   key,
		Value: value,
		Step:  step,
		Wall:  time.Now().UTC(),
	})
}

// LogArtifact stores an artifact in the run directory and mirrors it to
// the artifact store when one is configured.
func (r *Run) LogArtifact(ctx context.Context, name string, data []byte, contentType string) error {
	path := filepath.Join(r.dir, "artifacts", name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	if r.artifacts != nil {
		object := fmt.Sprintf("runs/%s/artifacts/%s", r.ID, name)
		if err := r.artifacts.UploadBytes(ctx, object, data, contentType); err != nil {
			return err
		}
	}
	return nil
}

// Close finalizes the run: flushes metrics, writes parameters and end
// time, and mirrors the run files to the artifact store. Safe to call
// once per run; a second call is a no-op.
func (r *Run) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var errs error
	errs = multierr.Append(errs, writeJSON(filepath.Join(r.dir, "params.json"), r.params))

	now := time.Now().UTC()
	meta := runMeta{ID: r.ID, Name: r.Name, StartedAt: r.StartedAt, EndedAt: &now}
	errs = multierr.Append(errs, writeJSON(filepath.Join(r.dir, "meta.json"), meta))

	errs = multierr.Append(errs, r.metricBuf.Flush())
	errs = multierr.Append(errs, r.metrics.Close())

	if r.artifacts != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, name := range []string{"meta.json", "params.json", "metrics.jsonl"} {
			object := fmt.Sprintf("runs/%s/%s", r.ID, name)
			errs = multierr.Append(errs, r.artifacts.UploadFile(ctx, object, filepath.Join(r.dir, name)))
		}
	}

	if errs != nil {
		return fmt.Errorf("failed to finalize run %s: %w", r.ID, errs)
	}

	logger.Info("closed tracking run", zap.String("run_id", r.ID))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
