package tracking

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRecords(t *testing.T, path string) []scalarRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []scalarRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec scalarRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestScalarWriter_WriteScalar(t *testing.T) {
	dir := t.TempDir()
	w, err := NewScalarWriter(dir, "training")
	require.NoError(t, err)

	require.NoError(t, w.WriteScalar("loss", 0.42, 100))
	require.NoError(t, w.WriteScalar("loss", 0.40, 200))
	require.NoError(t, w.Close())

	records := readRecords(t, w.Path())
	require.Len(t, records, 2)
	assert.Equal(t, "scalar", records[0].Type)
	assert.Equal(t, "loss", records[0].Tag)
	assert.Equal(t, 100, records[0].Step)
	assert.InDelta(t, 0.42, records[0].Value, 1e-9)
	assert.Equal(t, 200, records[1].Step)
}

func TestScalarWriter_WriteHistogram(t *testing.T) {
	dir := t.TempDir()
	w, err := NewScalarWriter(dir, "validation")
	require.NoError(t, err)

	values := []float64{0.0, 0.01, 0.5, 0.99, 1.0}
	require.NoError(t, w.WriteHistogram("is_neg", values, 500))
	require.NoError(t, w.Close())

	records := readRecords(t, w.Path())
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "histogram", rec.Type)
	assert.Len(t, rec.BinEdges, 51)
	assert.Len(t, rec.Counts, 50)

	var total int
	for _, c := range rec.Counts {
		total += c
	}
	assert.Equal(t, len(values), total, "every value lands in exactly one bin")
}

func TestScalarWriter_WritePRCurve(t *testing.T) {
	dir := t.TempDir()
	w, err := NewScalarWriter(dir, "validation")
	require.NoError(t, err)

	labels := []float64{0, 0, 1, 1}
	predictions := []float64{0.1, 0.2, 0.8, 0.9}
	require.NoError(t, w.WritePRCurve("pr", labels, predictions, 1000))
	require.NoError(t, w.Close())

	records := readRecords(t, w.Path())
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "pr_curve", rec.Type)
	require.Len(t, rec.Thresholds, 51)
	require.Len(t, rec.Precision, 51)
	require.Len(t, rec.Recall, 51)

	// Threshold 0 predicts everything positive.
	assert.InDelta(t, 0.5, rec.Precision[0], 1e-9)
	assert.InDelta(t, 1.0, rec.Recall[0], 1e-9)
	// A perfectly separable sweep reaches full precision at full recall.
	assert.InDelta(t, 1.0, rec.Precision[25], 1e-9)
	assert.InDelta(t, 1.0, rec.Recall[25], 1e-9)
}

func TestScalarWriter_RejectsMismatchedPRInput(t *testing.T) {
	w, err := NewScalarWriter(t.TempDir(), "validation")
	require.NoError(t, err)
	defer w.Close()

	err = w.WritePRCurve("pr", []float64{0, 1}, []float64{0.5}, 1)
	assert.Error(t, err)
}
