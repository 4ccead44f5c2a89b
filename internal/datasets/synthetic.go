// Package datasets provides the data modules the trainer iterates.
// Production readers (CT volumes, cutouts) are external collaborators;
// the synthetic module here backs the reference pipeline and the tests.
package datasets

import (
	"math/rand"

	"github.com/lunaml/luna16/internal/training"
)

// Synthetic generates two Gaussian clusters, one per class, split into
// training and validation batches. Deterministic for a given seed.
type Synthetic struct {
	batchSize  int
	training   []training.Batch
	validation []training.Batch
}

// NewSynthetic builds a dataset of samples points with dim features.
// One fifth of the samples goes to validation.
func NewSynthetic(samples, dim, batchSize int, seed int64) *Synthetic {
	rng := rand.New(rand.NewSource(seed))

	inputs := make([][]float32, samples)
	labels := make([]float64, samples)
	for i := range inputs {
		label := float64(i % 2)
		center := float32(-1)
		if label == 1 {
			center = 1
		}
		point := make([]float32, dim)
		for j := range point {
			point[j] = center + float32(rng.NormFloat64())*0.75
		}
		inputs[i] = point
		labels[i] = label
	}

	validationLen := samples / 5
	trainingLen := samples - validationLen

	s := &Synthetic{batchSize: batchSize}
	s.training = toBatches(inputs[:trainingLen], labels[:trainingLen], batchSize)
	s.validation = toBatches(inputs[trainingLen:], labels[trainingLen:], batchSize)
	return s
}

// BatchSize implements training.DataModule
func (s *Synthetic) BatchSize() int { return s.batchSize }

// TrainingBatches implements training.DataModule
func (s *Synthetic) TrainingBatches() []training.Batch { return s.training }

// ValidationBatches implements training.DataModule
func (s *Synthetic) ValidationBatches() []training.Batch { return s.validation }

func toBatches(inputs [][]float32, labels []float64, batchSize int) []training.Batch {
	var batches []training.Batch
	for start := 0; start < len(inputs); start += batchSize {
		end := start + batchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		batches = append(batches, training.Batch{
			Inputs: inputs[start:end],
			Labels: labels[start:end],
		})
	}
	return batches
}
