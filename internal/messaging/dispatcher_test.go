package messaging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaml/luna16/internal/registry"
)

func validMetrics(t *testing.T) Metrics {
	t.Helper()
	m, err := NewMetrics(Metrics{
		Epoch:            3,
		Mode:             ModeValidation,
		SamplesProcessed: 1000,
		Values: []MetricValue{
			{Name: "loss", Value: 0.42},
			{Name: "accuracy", Value: 0.91},
		},
	})
	require.NoError(t, err)
	return m
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("invokes handlers in table order exactly once", func(t *testing.T) {
		reg := registry.New()
		var calls []string

		record := func(name string) Handler {
			return func(msg Message, r *registry.Registry) error {
				calls = append(calls, name)
				return nil
			}
		}

		d := NewDispatcher(reg, HandlerTable{
			KindMetrics: {record("h1"), record("h2"), record("h3")},
		})

		require.NoError(t, d.Dispatch(validMetrics(t)))
		assert.Equal(t, []string{"h1", "h2", "h3"}, calls)
	})

	t.Run("passes the same message and registry to every handler", func(t *testing.T) {
		reg := registry.New()
		msg := validMetrics(t)

		type call struct {
			name string
			msg  Message
			reg  *registry.Registry
		}
		var calls []call

		console := func(m Message, r *registry.Registry) error {
			calls = append(calls, call{"console", m, r})
			return nil
		}
		backend := func(m Message, r *registry.Registry) error {
			calls = append(calls, call{"backend", m, r})
			return nil
		}

		d := NewDispatcher(reg, HandlerTable{KindMetrics: {console, backend}})
		require.NoError(t, d.Dispatch(msg))

		require.Len(t, calls, 2)
		assert.Equal(t, "console", calls[0].name, "console handler must run before the backend handler")
		assert.Equal(t, "backend", calls[1].name)
		for _, c := range calls {
			assert.Equal(t, msg, c.msg)
			assert.Same(t, reg, c.reg)
		}
	})

	t.Run("a kind with an empty handler slice dispatches to nothing", func(t *testing.T) {
		d := NewDispatcher(registry.New(), HandlerTable{
			KindBatchProgress: {},
		})

		msg, err := NewBatchProgress(BatchProgress{
			Epoch: 1, Mode: ModeTraining, BatchIndex: 0, BatchCount: 10,
		})
		require.NoError(t, err)

		assert.NoError(t, d.Dispatch(msg))
	})

	t.Run("a kind missing from the table fails", func(t *testing.T) {
		d := NewDispatcher(registry.New(), HandlerTable{})

		err := d.Dispatch(validMetrics(t))

		var unhandled *UnhandledKindError
		require.ErrorAs(t, err, &unhandled)
		assert.Equal(t, KindMetrics, unhandled.Kind)
	})

	t.Run("a handler failure wraps into HandlerError and stops the fan-out", func(t *testing.T) {
		boom := errors.New("backend unreachable")
		var after int

		d := NewDispatcher(registry.New(), HandlerTable{
			KindMetrics: {
				func(Message, *registry.Registry) error { return nil },
				func(Message, *registry.Registry) error { return boom },
				func(Message, *registry.Registry) error { after++; return nil },
			},
		})

		err := d.Dispatch(validMetrics(t))

		var handlerErr *HandlerError
		require.ErrorAs(t, err, &handlerErr)
		assert.Equal(t, KindMetrics, handlerErr.Kind)
		assert.Equal(t, 1, handlerErr.Handler)
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, after, "handlers after the failing one must not run")
	})
}

func TestHandlerTable_Clone(t *testing.T) {
	t.Run("overriding a clone leaves the original untouched", func(t *testing.T) {
		noop := func(Message, *registry.Registry) error { return nil }
		original := HandlerTable{KindMetrics: {noop, noop}}

		clone := original.Clone()
		clone[KindMetrics] = nil

		assert.Len(t, original[KindMetrics], 2)
	})
}

func TestDefaultTable(t *testing.T) {
	t.Run("covers every message kind", func(t *testing.T) {
		table := DefaultTable()

		kinds := []Kind{
			KindRunStarted, KindEpochStarted, KindBatchStarted,
			KindBatchCompleted, KindBatchProgress, KindMetrics,
			KindResults, KindImages, KindModelTrained,
		}
		for _, kind := range kinds {
			_, ok := table[kind]
			assert.True(t, ok, "kind %s missing from default table", kind)
		}
	})

	t.Run("keeps batch progress silent", func(t *testing.T) {
		assert.Empty(t, DefaultTable()[KindBatchProgress])
	})
}
