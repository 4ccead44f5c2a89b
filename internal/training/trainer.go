// Package training drives the sequential training loop and emits a
// message at every defined point: run start, epoch, batch start/end,
// metrics, validation results, and the finished model.
package training

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lunaml/luna16/internal/messaging"
	"github.com/lunaml/luna16/internal/pkg/logger"
	"github.com/lunaml/luna16/internal/registry"
)

// Scores holds the final metric values of a fit.
type Scores map[string]float64

// Trainer runs the fit loop for one named training. It owns no services;
// everything external is reached through the dispatcher's registry.
type Trainer struct {
	name              string
	version           string
	dispatcher        *messaging.Dispatcher
	validationCadence int

	trainingSamples   int
	validationSamples int
}

// New creates a trainer. validationCadence is the epoch interval between
// validation passes; the final epoch always validates.
func New(name, version string, dispatcher *messaging.Dispatcher, validationCadence int) *Trainer {
	if validationCadence < 1 {
		validationCadence = 1
	}
	return &Trainer{
		name:              name,
		version:           version,
		dispatcher:        dispatcher,
		validationCadence: validationCadence,
	}
}

// Fit trains model on data for the given number of epochs. External
// resources are forced into existence before the first message goes out,
// so a broken backend fails the run immediately instead of mid-epoch.
func (t *Trainer) Fit(ctx context.Context, model Model, data DataModule, epochs int) (Scores, error) {
	if epochs < 1 {
		return nil, fmt.Errorf("epochs must be at least 1")
	}

	scope := registry.Scope{
		RunID:     uuid.NewString(),
		RunName:   t.name,
		StartedAt: time.Now().UTC(),
	}
	reg := t.dispatcher.Registry()
	if err := reg.CallAllCreators(ctx, scope); err != nil {
		return nil, err
	}

	log := logger.WithRun(scope.RunID, scope.RunName)
	log.Info("starting training", zap.Int("epochs", epochs))

	started, err := messaging.NewRunStarted(messaging.RunStarted{Description: model.Describe()})
	if err != nil {
		return nil, err
	}
	if err := t.dispatcher.Dispatch(started); err != nil {
		return nil, err
	}

	fitStart := time.Now()
	var scores Scores
	for epoch := 1; epoch <= epochs; epoch++ {
		scores, err = t.fitEpoch(epoch, epochs, model, data)
		if err != nil {
			return nil, err
		}
	}
	log.Info("training finished", zap.Duration("elapsed", time.Since(fitStart)))

	signature := model.Signature()
	trained, err := messaging.NewModelTrained(messaging.ModelTrained{
		TrainingName: t.name,
		Version:      t.version,
		State:        model.State(),
		Inputs:       signature.Inputs,
		Outputs:      signature.Outputs,
		Summary:      model.Describe(),
	})
	if err != nil {
		return nil, err
	}
	if err := t.dispatcher.Dispatch(trained); err != nil {
		return nil, err
	}

	return scores, nil
}

func (t *Trainer) fitEpoch(epoch, epochs int, model Model, data DataModule) (Scores, error) {
	trainBatches := data.TrainingBatches()
	validationBatches := data.ValidationBatches()

	epochMsg, err := messaging.NewEpochStarted(messaging.EpochStarted{
		Epoch:             epoch,
		Epochs:            epochs,
		BatchSize:         data.BatchSize(),
		TrainingBatches:   len(trainBatches),
		ValidationBatches: len(validationBatches),
	})
	if err != nil {
		return nil, err
	}
	if err := t.dispatcher.Dispatch(epochMsg); err != nil {
		return nil, err
	}

	scores, err := t.trainPass(epoch, model, trainBatches)
	if err != nil {
		return nil, err
	}

	if epoch%t.validationCadence == 0 || epoch == epochs {
		scores, err = t.validationPass(epoch, model, validationBatches)
		if err != nil {
			return nil, err
		}
	}
	return scores, nil
}

func (t *Trainer) trainPass(epoch int, model Model, batches []Batch) (Scores, error) {
	if err := t.dispatchBatchStarted(epoch, messaging.ModeTraining, len(batches)); err != nil {
		return nil, err
	}

	passStart := time.Now()
	var totalLoss float64
	var totalSamples int
	for i, batch := range batches {
		if err := t.dispatchBatchProgress(epoch, messaging.ModeTraining, i, len(batches), passStart); err != nil {
			return nil, err
		}
		loss, err := model.TrainBatch(batch)
		if err != nil {
			return nil, fmt.Errorf("training batch %d of epoch %d failed: %w", i, epoch, err)
		}
		totalLoss += loss * float64(batch.Len())
		totalSamples += batch.Len()
	}
	t.trainingSamples += totalSamples

	if err := t.dispatchBatchCompleted(epoch, messaging.ModeTraining, len(batches)); err != nil {
		return nil, err
	}

	scores := Scores{"loss": meanLoss(totalLoss, totalSamples)}
	if err := t.dispatchMetrics(epoch, messaging.ModeTraining, t.trainingSamples, []messaging.MetricValue{
		{Name: "loss", Value: scores["loss"]},
	}); err != nil {
		return nil, err
	}
	return scores, nil
}

func (t *Trainer) validationPass(epoch int, model Model, batches []Batch) (Scores, error) {
	if err := t.dispatchBatchStarted(epoch, messaging.ModeValidation, len(batches)); err != nil {
		return nil, err
	}

	passStart := time.Now()
	var totalLoss float64
	var totalSamples int
	var labels, predictions []float64
	for i, batch := range batches {
		if err := t.dispatchBatchProgress(epoch, messaging.ModeValidation, i, len(batches), passStart); err != nil {
			return nil, err
		}
		loss, preds, err := model.EvaluateBatch(batch)
		if err != nil {
			return nil, fmt.Errorf("validation batch %d of epoch %d failed: %w", i, epoch, err)
		}
		totalLoss += loss * float64(batch.Len())
		totalSamples += batch.Len()
		labels = append(labels, batch.Labels...)
		predictions = append(predictions, preds...)
	}
	t.validationSamples += totalSamples

	if err := t.dispatchBatchCompleted(epoch, messaging.ModeValidation, len(batches)); err != nil {
		return nil, err
	}

	scores := Scores{
		"loss":     meanLoss(totalLoss, totalSamples),
		"accuracy": accuracy(labels, predictions),
	}
	if err := t.dispatchMetrics(epoch, messaging.ModeValidation, t.validationSamples, []messaging.MetricValue{
		{Name: "loss", Value: scores["loss"]},
		{Name: "accuracy", Value: scores["accuracy"]},
	}); err != nil {
		return nil, err
	}

	if len(labels) > 0 {
		results, err := messaging.NewResults(messaging.Results{
			Epoch:            epoch,
			Mode:             messaging.ModeValidation,
			SamplesProcessed: t.validationSamples,
			Labels:           labels,
			Predictions:      predictions,
		})
		if err != nil {
			return nil, err
		}
		if err := t.dispatcher.Dispatch(results); err != nil {
			return nil, err
		}
	}
	return scores, nil
}

func (t *Trainer) dispatchBatchStarted(epoch int, mode messaging.Mode, count int) error {
	if count == 0 {
		return nil
	}
	msg, err := messaging.NewBatchStarted(messaging.BatchStarted{
		Epoch: epoch, Mode: mode, BatchCount: count,
	})
	if err != nil {
		return err
	}
	return t.dispatcher.Dispatch(msg)
}

func (t *Trainer) dispatchBatchCompleted(epoch int, mode messaging.Mode, count int) error {
	if count == 0 {
		return nil
	}
	msg, err := messaging.NewBatchCompleted(messaging.BatchCompleted{
		Epoch: epoch, Mode: mode, BatchCount: count, CompletedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return t.dispatcher.Dispatch(msg)
}

func (t *Trainer) dispatchBatchProgress(epoch int, mode messaging.Mode, index, count int, startedAt time.Time) error {
	msg, err := messaging.NewBatchProgress(messaging.BatchProgress{
		Epoch: epoch, Mode: mode, BatchIndex: index, BatchCount: count, StartedAt: startedAt,
	})
	if err != nil {
		return err
	}
	return t.dispatcher.Dispatch(msg)
}

func (t *Trainer) dispatchMetrics(epoch int, mode messaging.Mode, samples int, values []messaging.MetricValue) error {
	msg, err := messaging.NewMetrics(messaging.Metrics{
		Epoch:            epoch,
		Mode:             mode,
		SamplesProcessed: samples,
		Values:           values,
	})
	if err != nil {
		return err
	}
	return t.dispatcher.Dispatch(msg)
}

func meanLoss(total float64, samples int) float64 {
	if samples == 0 {
		return 0
	}
	return total / float64(samples)
}

func accuracy(labels, predictions []float64) float64 {
	if len(labels) == 0 {
		return 0
	}
	var correct int
	for i, label := range labels {
		predicted := predictions[i] >= 0.5
		if predicted == (label >= 0.5) {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}
