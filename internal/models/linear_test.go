package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaml/luna16/internal/datasets"
	"github.com/lunaml/luna16/internal/training"
)

func TestLinear_LearnsSeparableData(t *testing.T) {
	data := datasets.NewSynthetic(400, 4, 32, 7)
	model := NewLinear(4, 0.1, 0.9)

	first := -1.0
	var last float64
	for epoch := 0; epoch < 20; epoch++ {
		for _, batch := range data.TrainingBatches() {
			loss, err := model.TrainBatch(batch)
			require.NoError(t, err)
			if first < 0 {
				first = loss
			}
			last = loss
		}
	}
	assert.Less(t, last, first, "loss should decrease while training")

	var labels, predictions []float64
	for _, batch := range data.ValidationBatches() {
		_, preds, err := model.EvaluateBatch(batch)
		require.NoError(t, err)
		labels = append(labels, batch.Labels...)
		predictions = append(predictions, preds...)
	}

	var correct int
	for i, label := range labels {
		if (predictions[i] >= 0.5) == (label >= 0.5) {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(labels))
	assert.Greater(t, accuracy, 0.85, "two shifted clusters should be mostly separable")
}

func TestLinear_StateRoundTrip(t *testing.T) {
	model := NewLinear(3, 0.05, 0.9)
	batch := training.Batch{
		Inputs: [][]float32{{1, 0, -1}, {-1, 0.5, 1}},
		Labels: []float64{1, 0},
	}
	_, err := model.TrainBatch(batch)
	require.NoError(t, err)

	state := model.State()
	restored := NewLinear(3, 0.05, 0.9)
	require.NoError(t, restored.LoadState(state))

	_, originalPreds, err := model.EvaluateBatch(batch)
	require.NoError(t, err)
	_, restoredPreds, err := restored.EvaluateBatch(batch)
	require.NoError(t, err)
	assert.Equal(t, originalPreds, restoredPreds)
}

func TestLinear_RejectsBadInput(t *testing.T) {
	model := NewLinear(3, 0.05, 0.9)

	t.Run("empty batch", func(t *testing.T) {
		_, err := model.TrainBatch(training.Batch{})
		assert.Error(t, err)
	})

	t.Run("wrong feature width", func(t *testing.T) {
		_, err := model.TrainBatch(training.Batch{
			Inputs: [][]float32{{1, 2}},
			Labels: []float64{1},
		})
		assert.Error(t, err)
	})

	t.Run("mismatched checkpoint", func(t *testing.T) {
		err := model.LoadState(map[string][]float32{"weight": {1}})
		assert.Error(t, err)
	})
}

func TestLinear_Signature(t *testing.T) {
	model := NewLinear(16, 0.001, 0.99)
	assert.Equal(t, training.Signature{Inputs: 16, Outputs: 1}, model.Signature())
	assert.Contains(t, model.Describe(), "dim=16")
}
