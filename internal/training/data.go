package training

// Batch is one mini-batch of feature vectors and their labels.
type Batch struct {
	Inputs [][]float32
	Labels []float64
}

// Len returns the number of samples in the batch
func (b Batch) Len() int {
	return len(b.Inputs)
}

// DataModule supplies the training and validation batches for a run. The
// concrete readers (CT scans, cutouts, augmentation) live outside this
// package; the trainer only iterates.
type DataModule interface {
	BatchSize() int
	TrainingBatches() []Batch
	ValidationBatches() []Batch
}

// Signature describes a model's input and output widths, persisted next
// to its parameters so a checkpoint can be rebuilt without the code that
// produced it.
type Signature struct {
	Inputs  int
	Outputs int
}

// Model is the training driver's view of a model. Architectures are
// external collaborators; the trainer only steps, evaluates, and
// snapshots.
type Model interface {
	Describe() string
	Signature() Signature
	TrainBatch(b Batch) (loss float64, err error)
	EvaluateBatch(b Batch) (loss float64, predictions []float64, err error)
	State() map[string][]float32
}
