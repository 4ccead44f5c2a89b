package tracking

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
)

// scalarRecord is one line of a scalar log file.
type scalarRecord struct {
	Type  string    `json:"type"`
	Tag   string    `json:"tag"`
	Step  int       `json:"step"`
	Wall  time.Time `json:"wall"`
	Value float64   `json:"value,omitempty"`

	// histogram payload
	BinEdges []float64 `json:"bin_edges,omitempty"`
	Counts   []int     `json:"counts,omitempty"`

	// precision-recall payload
	Thresholds []float64 `json:"thresholds,omitempty"`
	Precision  []float64 `json:"precision,omitempty"`
	Recall     []float64 `json:"recall,omitempty"`
}

// ScalarWriter appends per-step scalar series for one training mode to a
// JSONL file under the run directory. It is the file-backed stand-in for a
// metrics dashboard writer; rows stay human-greppable and replayable.
type ScalarWriter struct {
	mode string
	path string
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewScalarWriter opens (or creates) the scalar log for mode inside dir
func NewScalarWriter(dir, mode string) (*ScalarWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scalar directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("scalars_%s.jsonl", mode))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open scalar log %s: %w", path, err)
	}

	buf := bufio.NewWriter(file)
	return &ScalarWriter{
		mode: mode,
		path: path,
		file: file,
		buf:  buf,
		enc:  json.NewEncoder(buf),
	}, nil
}

// Mode returns the training mode this writer records.
func (w *ScalarWriter) Mode() string { return w.mode }

// Path returns the location of the underlying log file.
func (w *ScalarWriter) Path() string { return w.path }

// WriteScalar appends one named value at the given step
func (w *ScalarWriter) WriteScalar(tag string, value float64, step int) error {
	return w.enc.Encode(scalarRecord{
		Type:  "scalar",
		Tag:   tag,
		Step:  step,
		Wall:  time.Now().UTC(),
		Value: value,
	})
}

// WriteHistogram appends a fixed-bin histogram of values over [0, 1]
func (w *ScalarWriter) WriteHistogram(tag string, values []float64, step int) error {
	const bins = 50

	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = float64(i) / bins
	}

	counts := make([]int, bins)
	for _, v := range values {
		idx := int(v * bins)
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	return w.enc.Encode(scalarRecord{
		Type:     "histogram",
		Tag:      tag,
		Step:     step,
		Wall:     time.Now().UTC(),
		BinEdges: edges,
		Counts:   counts,
	})
}

// WritePRCurve appends a precision-recall sweep over prediction thresholds.
// Labels are 0/1; predictions are probabilities in [0, 1].
func (w *ScalarWriter) WritePRCurve(tag string, labels, predictions []float64, step int) error {
	if len(labels) != len(predictions) {
		return fmt.Errorf("labels and predictions differ in length: %d vs %d", len(labels), len(predictions))
	}

	const steps = 51
	thresholds := make([]float64, steps)
	precision := make([]float64, steps)
	recall := make([]float64, steps)

	for i := 0; i < steps; i++ {
		threshold := float64(i) / (steps - 1)
		thresholds[i] = threshold

		var tp, fp, fn int
		for j, p := range predictions {
			predicted := p >= threshold
			actual := labels[j] >= 0.5
			switch {
			case predicted && actual:
				tp++
			case predicted && !actual:
				fp++
			case !predicted && actual:
				fn++
			}
		}

		if tp+fp > 0 {
			precision[i] = float64(tp) / float64(tp+fp)
		} else {
			precision[i] = 1
		}
		if tp+fn > 0 {
			recall[i] = float64(tp) / float64(tp+fn)
		}
	}

	return w.enc.Encode(scalarRecord{
		Type:       "pr_curve",
		Tag:        tag,
		Step:       step,
		Wall:       time.Now().UTC(),
		Thresholds: thresholds,
		Precision:  precision,
		Recall:     recall,
	})
}

// Flush forces buffered rows to disk
func (w *ScalarWriter) Flush() error {
	return w.buf.Flush()
}

// Close flushes and closes the underlying file
func (w *ScalarWriter) Close() error {
	return multierr.Append(w.buf.Flush(), w.file.Close())
}
