package messaging

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lunaml/luna16/internal/hyperparams"
	"github.com/lunaml/luna16/internal/pkg/logger"
	"github.com/lunaml/luna16/internal/registry"
	"github.com/lunaml/luna16/internal/tracking"
)

// scalarWriterFor resolves the per-mode scalar writer.
func scalarWriterFor(mode Mode, reg *registry.Registry) (*tracking.ScalarWriter, error) {
	key := tracking.KeyTrainingWriter
	if mode == ModeValidation {
		key = tracking.KeyValidationWriter
	}
	return registry.Resolve[*tracking.ScalarWriter](reg, key)
}

// logParamsToRun dumps the hyperparameter container into the run at start.
func logParamsToRun(msg Message, reg *registry.Registry) error {
	if _, ok := msg.(RunStarted); !ok {
		return typeMismatch(msg, RunStarted{})
	}

	params, err := registry.Resolve[*hyperparams.Container](reg, hyperparams.ServiceKey)
	if err != nil {
		return err
	}
	run, err := registry.Resolve[*tracking.Run](reg, tracking.KeyRun)
	if err != nil {
		return err
	}

	for _, p := range params.All() {
		run.LogParam(p.Name, p.Value)
	}
	return nil
}

func logMetricsToScalars(msg Message, reg *registry.Registry) error {
	m, ok := msg.(Metrics)
	if !ok {
		return typeMismatch(msg, m)
	}

	writer, err := scalarWriterFor(m.Mode, reg)
	if err != nil {
		return err
	}
	for _, v := range m.Values {
		if err := writer.WriteScalar(v.Name, v.Value, m.SamplesProcessed); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func logMetricsToRun(msg Message, reg *registry.Registry) error {
	m, ok := msg.(Metrics)
	if !ok {
		return typeMismatch(msg, m)
	}

	run, err := registry.Resolve[*tracking.Run](reg, tracking.KeyRun)
	if err != nil {
		return err
	}
	for _, v := range m.Values {
		key := fmt.Sprintf("%s/%s", m.Mode, v.Name)
		if err := run.LogMetric(key, v.Value, m.SamplesProcessed); err != nil {
			return err
		}
	}
	return nil
}

func observeMetrics(msg Message, reg *registry.Registry) error {
	m, ok := msg.(Metrics)
	if !ok {
		return typeMismatch(msg, m)
	}

	collectors, err := registry.Resolve[*tracking.Collectors](reg, tracking.KeyCollectors)
	if err != nil {
		return err
	}
	collectors.ObserveEpoch(m.Epoch)
	collectors.ObserveSamples(string(m.Mode), m.SamplesProcessed)
	for _, v := range m.Values {
		collectors.ObserveMetric(string(m.Mode), v.Name, v.Value)
	}
	return nil
}

func observeBatch(msg Message, reg *registry.Registry) error {
	m, ok := msg.(BatchCompleted)
	if !ok {
		return typeMismatch(msg, m)
	}

	collectors, err := registry.Resolve[*tracking.Collectors](reg, tracking.KeyCollectors)
	if err != nil {
		return err
	}
	collectors.ObserveBatch(string(m.Mode))
	return nil
}

// logResultsToScalars records the precision-recall sweep plus histograms
// of confidently-wrong predictions, mirroring what operators look at
// first when a run goes sideways.
func logResultsToScalars(msg Message, reg *registry.Registry) error {
	m, ok := msg.(Results)
	if !ok {
		return typeMismatch(msg, m)
	}

	writer, err := scalarWriterFor(m.Mode, reg)
	if err != nil {
		return err
	}

	if err := writer.WritePRCurve("pr", m.Labels, m.Predictions, m.SamplesProcessed); err != nil {
		return err
	}

	var negatives, positives []float64
	for i, label := range m.Labels {
		p := m.Predictions[i]
		if label < 0.5 && p > 0.01 {
			negatives = append(negatives, p)
		}
		if label >= 0.5 && p < 0.99 {
			positives = append(positives, p)
		}
	}
	if len(negatives) > 0 {
		if err := writer.WriteHistogram("is_neg", negatives, m.SamplesProcessed); err != nil {
			return err
		}
	}
	if len(positives) > 0 {
		if err := writer.WriteHistogram("is_pos", positives, m.SamplesProcessed); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func logImagesToRun(msg Message, reg *registry.Registry) error {
	m, ok := msg.(Images)
	if !ok {
		return typeMismatch(msg, m)
	}

	run, err := registry.Resolve[*tracking.Run](reg, tracking.KeyRun)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, img := range m.Images {
		name := fmt.Sprintf("%s_e%04d_%s.png", m.Mode, m.Epoch, img.Name)
		if err := run.LogArtifact(ctx, name, img.PNG, "image/png"); err != nil {
			return err
		}
	}
	return nil
}

func logModelToStore(msg Message, reg *registry.Registry) error {
	m, ok := msg.(ModelTrained)
	if !ok {
		return typeMismatch(msg, m)
	}

	store, err := registry.Resolve[*tracking.ModelStore](reg, tracking.KeyModelStore)
	if err != nil {
		return err
	}
	run, err := registry.Resolve[*tracking.Run](reg, tracking.KeyRun)
	if err != nil {
		return err
	}

	path, err := store.Save(context.Background(), tracking.Checkpoint{
		Name:    m.TrainingName,
		Version: m.Version,
		State:   m.State,
		Inputs:  m.Inputs,
		Outputs: m.Outputs,
	})
	if err != nil {
		return err
	}

	if m.Summary != "" {
		if err := run.LogArtifact(context.Background(), "model_summary.txt", []byte(m.Summary), "text/plain"); err != nil {
			return err
		}
	}

	logger.Info("saved model checkpoint",
		zap.String("name", m.TrainingName),
		zap.String("version", m.Version),
		zap.String("path", path),
	)
	return nil
}
