// Package messaging carries training-loop events from the driver to the
// consumers that react to them. Messages are immutable value objects; a
// static handler table fans each one out to console logging and the
// tracking backends resolved from the service registry.
package messaging

import (
	"fmt"
	"time"

	"github.com/lunaml/luna16/internal/validator"
)

// Mode tags which half of the loop a message belongs to.
type Mode string

// Training-loop modes
const (
	ModeTraining   Mode = "training"
	ModeValidation Mode = "validation"
)

// Kind is the variant tag of a message. The set is closed; the handler
// table must list every kind it wants dispatched, including kinds that
// intentionally dispatch to nothing.
type Kind string

// Message kinds
const (
	KindRunStarted     Kind = "run.started"
	KindEpochStarted   Kind = "epoch.started"
	KindBatchStarted   Kind = "batch.started"
	KindBatchCompleted Kind = "batch.completed"
	KindBatchProgress  Kind = "batch.progress"
	KindMetrics        Kind = "metrics.computed"
	KindResults        Kind = "results.computed"
	KindImages         Kind = "images.computed"
	KindModelTrained   Kind = "model.trained"
)

// Message is one training-loop event. Implementations are value types
// produced by the training driver; handlers never mutate them.
type Message interface {
	Kind() Kind
}

// RunStarted announces the beginning of a training run.
type RunStarted struct {
	Description string `validate:"required"`
}

// Kind implements Message
func (RunStarted) Kind() Kind { return KindRunStarted }

// NewRunStarted validates and returns the message
func NewRunStarted(m RunStarted) (RunStarted, error) {
	if err := validator.Validate(m); err != nil {
		return RunStarted{}, fmt.Errorf("invalid run-started message: %w", err)
	}
	return m, nil
}

// EpochStarted announces one epoch of the loop.
type EpochStarted struct {
	Epoch             int `validate:"gte=1"`
	Epochs            int `validate:"gte=1"`
	BatchSize         int `validate:"gte=1"`
	TrainingBatches   int `validate:"gte=0"`
	ValidationBatches int `validate:"gte=0"`
}

// Kind implements Message
func (EpochStarted) Kind() Kind { return KindEpochStarted }

// NewEpochStarted validates and returns the message
func NewEpochStarted(m EpochStarted) (EpochStarted, error) {
	if err := validator.Validate(m); err != nil {
		return EpochStarted{}, fmt.Errorf("invalid epoch-started message: %w", err)
	}
	return m, nil
}

// BatchStarted announces the start of one pass over the batches of a mode.
type BatchStarted struct {
	Epoch      int  `validate:"gte=1"`
	Mode       Mode `validate:"required,mode"`
	BatchCount int  `validate:"gte=1"`
}

// Kind implements Message
func (BatchStarted) Kind() Kind { return KindBatchStarted }

// NewBatchStarted validates and returns the message
func NewBatchStarted(m BatchStarted) (BatchStarted, error) {
	if err := validator.Validate(m); err != nil {
		return BatchStarted{}, fmt.Errorf("invalid batch-started message: %w", err)
	}
	return m, nil
}

// BatchCompleted announces the end of one pass over the batches of a mode.
type BatchCompleted struct {
	Epoch       int  `validate:"gte=1"`
	Mode        Mode `validate:"required,mode"`
	BatchCount  int  `validate:"gte=1"`
	CompletedAt time.Time
}

// Kind implements Message
func (BatchCompleted) Kind() Kind { return KindBatchCompleted }

// NewBatchCompleted validates and returns the message
func NewBatchCompleted(m BatchCompleted) (BatchCompleted, error) {
	if err := validator.Validate(m); err != nil {
		return BatchCompleted{}, fmt.Errorf("invalid batch-completed message: %w", err)
	}
	return m, nil
}

// BatchProgress reports per-batch progress. It is dispatched for every
// batch and its handler slice is intentionally empty in the default
// table; per-batch console output drowns everything else.
type BatchProgress struct {
	Epoch      int  `validate:"gte=1"`
	Mode       Mode `validate:"required,mode"`
	BatchIndex int  `validate:"gte=0"`
	BatchCount int  `validate:"gte=1"`
	StartedAt  time.Time
}

// Kind implements Message
func (BatchProgress) Kind() Kind { return KindBatchProgress }

// NewBatchProgress validates and returns the message
func NewBatchProgress(m BatchProgress) (BatchProgress, error) {
	if err := validator.Validate(m); err != nil {
		return BatchProgress{}, fmt.Errorf("invalid batch-progress message: %w", err)
	}
	return m, nil
}

// MetricValue is one named numeric value inside a metrics message.
type MetricValue struct {
	Name   string `validate:"required"`
	Value  float64
	Format string
}

// Formatted renders the value with its format, defaulting to four
// decimal places.
func (v MetricValue) Formatted() string {
	format := v.Format
	if format == "" {
		format = "%.4f"
	}
	return fmt.Sprintf(format, v.Value)
}

// Metrics carries the named values computed for one mode of one epoch.
// Values keep their insertion order all the way to the backends.
type Metrics struct {
	Epoch            int  `validate:"gte=1"`
	Mode             Mode `validate:"required,mode"`
	SamplesProcessed int  `validate:"gte=0"`
	Values           []MetricValue `validate:"min=1,dive"`
}

// Kind implements Message
func (Metrics) Kind() Kind { return KindMetrics }

// NewMetrics validates and returns the message
func NewMetrics(m Metrics) (Metrics, error) {
	if err := validator.Validate(m); err != nil {
		return Metrics{}, fmt.Errorf("invalid metrics message: %w", err)
	}
	return m, nil
}

// Results carries raw labels and predictions after a validation pass.
type Results struct {
	Epoch            int  `validate:"gte=1"`
	Mode             Mode `validate:"required,mode"`
	SamplesProcessed int  `validate:"gte=0"`
	Labels           []float64 `validate:"min=1"`
	Predictions      []float64 `validate:"min=1"`
}

// Kind implements Message
func (Results) Kind() Kind { return KindResults }

// NewResults validates and returns the message
func NewResults(m Results) (Results, error) {
	if err := validator.Validate(m); err != nil {
		return Results{}, fmt.Errorf("invalid results message: %w", err)
	}
	if len(m.Labels) != len(m.Predictions) {
		return Results{}, fmt.Errorf("invalid results message: %d labels vs %d predictions",
			len(m.Labels), len(m.Predictions))
	}
	return m, nil
}

// Image is one rendered image artifact.
type Image struct {
	Name string `validate:"required"`
	PNG  []byte `validate:"required"`
}

// Images carries rendered sample images for one epoch.
type Images struct {
	Epoch            int  `validate:"gte=1"`
	Mode             Mode `validate:"required,mode"`
	SamplesProcessed int  `validate:"gte=0"`
	Images           []Image `validate:"min=1,dive"`
}

// Kind implements Message
func (Images) Kind() Kind { return KindImages }

// NewImages validates and returns the message
func NewImages(m Images) (Images, error) {
	if err := validator.Validate(m); err != nil {
		return Images{}, fmt.Errorf("invalid images message: %w", err)
	}
	return m, nil
}

// ModelTrained carries the finished model's parameters and signature for
// persistence.
type ModelTrained struct {
	TrainingName string               `validate:"required"`
	Version      string               `validate:"required"`
	State        map[string][]float32 `validate:"required"`
	Inputs       int                  `validate:"gte=1"`
	Outputs      int                  `validate:"gte=1"`
	Summary      string
}

// Kind implements Message
func (ModelTrained) Kind() Kind { return KindModelTrained }

// NewModelTrained validates and returns the message
func NewModelTrained(m ModelTrained) (ModelTrained, error) {
	if err := validator.Validate(m); err != nil {
		return ModelTrained{}, fmt.Errorf("invalid model-trained message: %w", err)
	}
	return m, nil
}
