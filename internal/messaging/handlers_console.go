package messaging

import (
	"fmt"
	"strings"
	"time"

	"github.com/lunaml/luna16/internal/pkg/logger"
	"github.com/lunaml/luna16/internal/registry"
)

// Console handlers run before any backend handler so operators see
// progress even when a backend is slow or failing.

func logStartToConsole(msg Message, reg *registry.Registry) error {
	m, ok := msg.(RunStarted)
	if !ok {
		return typeMismatch(msg, m)
	}
	logger.Sugar.Infof("Starting %s", m.Description)
	return nil
}

func logEpochToConsole(msg Message, reg *registry.Registry) error {
	m, ok := msg.(EpochStarted)
	if !ok {
		return typeMismatch(msg, m)
	}
	logger.Sugar.Infof("E %04d of %04d, %d/%d batches of size %d",
		m.Epoch, m.Epochs, m.TrainingBatches, m.ValidationBatches, m.BatchSize)
	return nil
}

func logMetricsToConsole(msg Message, reg *registry.Registry) error {
	m, ok := msg.(Metrics)
	if !ok {
		return typeMismatch(msg, m)
	}

	formatted := make([]string, 0, len(m.Values))
	for _, v := range m.Values {
		formatted = append(formatted, fmt.Sprintf("%s: %s", capitalize(v.Name), v.Formatted()))
	}
	logger.Sugar.Infof("E %04d %10s %s", m.Epoch, m.Mode, strings.Join(formatted, ", "))
	return nil
}

func logBatchStartToConsole(msg Message, reg *registry.Registry) error {
	m, ok := msg.(BatchStarted)
	if !ok {
		return typeMismatch(msg, m)
	}
	logger.Sugar.Infof("E %04d %10s ----/%d, starting", m.Epoch, m.Mode, m.BatchCount)
	return nil
}

func logBatchEndToConsole(msg Message, reg *registry.Registry) error {
	m, ok := msg.(BatchCompleted)
	if !ok {
		return typeMismatch(msg, m)
	}
	completedAt := m.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	logger.Sugar.Infof("E %04d %10s ----/%d, done at %s",
		m.Epoch, m.Mode, m.BatchCount, completedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func typeMismatch(got Message, want Message) error {
	return fmt.Errorf("expected %T, got %T", want, got)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
