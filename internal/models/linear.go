// Package models ships the reference model the pipeline trains end to
// end. Real architectures plug in through the training.Model interface.
package models

import (
	"fmt"
	"math"

	"github.com/lunaml/luna16/internal/training"
)

// Linear is a logistic-regression classifier trained with mini-batch SGD
// and momentum. Small enough to run in tests, real enough to produce
// meaningful losses, predictions, and checkpoints.
type Linear struct {
	dim      int
	lr       float64
	momentum float64

	weights []float32
	bias    float32

	weightVelocity []float64
	biasVelocity   float64
}

// NewLinear creates a zero-initialized classifier over dim features
func NewLinear(dim int, lr, momentum float64) *Linear {
	return &Linear{
		dim:            dim,
		lr:             lr,
		momentum:       momentum,
		weights:        make([]float32, dim),
		weightVelocity: make([]float64, dim),
	}
}

// Describe implements training.Model
func (m *Linear) Describe() string {
	return fmt.Sprintf("LinearClassifier(dim=%d, lr=%g, momentum=%g)", m.dim, m.lr, m.momentum)
}

// Signature implements training.Model
func (m *Linear) Signature() training.Signature {
	return training.Signature{Inputs: m.dim, Outputs: 1}
}

// TrainBatch performs one SGD step on the batch and returns its mean
// logistic loss.
func (m *Linear) TrainBatch(b training.Batch) (float64, error) {
	if b.Len() == 0 {
		return 0, fmt.Errorf("cannot train on an empty batch")
	}

	gradW := make([]float64, m.dim)
	var gradB, totalLoss float64

	for i, input := range b.Inputs {
		if len(input) != m.dim {
			return 0, fmt.Errorf("input %d has %d features, model expects %d", i, len(input), m.dim)
		}
		p := m.forward(input)
		label := b.Labels[i]
		totalLoss += logisticLoss(label, p)

		residual := p - label
		for j, x := range input {
			gradW[j] += residual * float64(x)
		}
		gradB += residual
	}

	n := float64(b.Len())
	for j := range m.weights {
		m.weightVelocity[j] = m.momentum*m.weightVelocity[j] - m.lr*gradW[j]/n
		m.weights[j] += float32(m.weightVelocity[j])
	}
	m.biasVelocity = m.momentum*m.biasVelocity - m.lr*gradB/n
	m.bias += float32(m.biasVelocity)

	return totalLoss / n, nil
}

// EvaluateBatch returns the mean loss and per-sample probabilities
// without updating parameters.
func (m *Linear) EvaluateBatch(b training.Batch) (float64, []float64, error) {
	if b.Len() == 0 {
		return 0, nil, fmt.Errorf("cannot evaluate an empty batch")
	}

	predictions := make([]float64, b.Len())
	var totalLoss float64
	for i, input := range b.Inputs {
		if len(input) != m.dim {
			return 0, nil, fmt.Errorf("input %d has %d features, model expects %d", i, len(input), m.dim)
		}
		p := m.forward(input)
		predictions[i] = p
		totalLoss += logisticLoss(b.Labels[i], p)
	}
	return totalLoss / float64(b.Len()), predictions, nil
}

// State returns a copy of the parameter tensors
func (m *Linear) State() map[string][]float32 {
	weights := make([]float32, len(m.weights))
	copy(weights, m.weights)
	return map[string][]float32{
		"weight": weights,
		"bias":   {m.bias},
	}
}

// LoadState restores parameters from a checkpoint state
func (m *Linear) LoadState(state map[string][]float32) error {
	weights, ok := state["weight"]
	if !ok || len(weights) != m.dim {
		return fmt.Errorf("checkpoint weight tensor missing or has wrong size")
	}
	bias, ok := state["bias"]
	if !ok || len(bias) != 1 {
		return fmt.Errorf("checkpoint bias tensor missing or has wrong size")
	}
	copy(m.weights, weights)
	m.bias = bias[0]
	return nil
}

func (m *Linear) forward(input []float32) float64 {
	logit := float64(m.bias)
	for j, x := range input {
		logit += float64(m.weights[j]) * float64(x)
	}
	return sigmoid(logit)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// logisticLoss clamps probabilities away from 0 and 1 so the loss stays
// finite on confident mistakes.
func logisticLoss(label, p float64) float64 {
	const eps = 1e-7
	p = math.Min(math.Max(p, eps), 1-eps)
	if label >= 0.5 {
		return -math.Log(p)
	}
	return -math.Log(1 - p)
}
