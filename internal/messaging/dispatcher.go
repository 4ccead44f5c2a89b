package messaging

import (
	"github.com/lunaml/luna16/internal/registry"
)

// ServiceKey is the registry key the dispatcher is registered under.
const ServiceKey registry.Key = "messaging.dispatcher"

// Handler reacts to one message. It resolves whatever services it needs
// from the registry on each call and must not register new ones.
type Handler func(msg Message, reg *registry.Registry) error

// HandlerTable maps a message kind to its ordered handler slice. It is
// pure configuration: built once at startup, never mutated per dispatch.
type HandlerTable map[Kind][]Handler

// Clone returns a copy whose slices can be swapped out without touching
// the original. Used by tests to override single kinds.
func (t HandlerTable) Clone() HandlerTable {
	clone := make(HandlerTable, len(t))
	for kind, handlers := range t {
		clone[kind] = append([]Handler(nil), handlers...)
	}
	return clone
}

// Dispatcher fans messages out to their handlers, synchronously and in
// table order.
type Dispatcher struct {
	registry *registry.Registry
	table    HandlerTable
}

// NewDispatcher creates a dispatcher bound to reg and table
func NewDispatcher(reg *registry.Registry, table HandlerTable) *Dispatcher {
	return &Dispatcher{registry: reg, table: table}
}

// Registry returns the registry handlers resolve services from.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.registry
}

// Dispatch looks up the message's kind and invokes each handler in order,
// passing the message and the registry. A kind missing from the table
// fails with UnhandledKindError; a kind mapped to an empty slice is a
// no-op. The first handler failure wraps into HandlerError and
// propagates; there is no retry and no buffering.
func (d *Dispatcher) Dispatch(msg Message) error {
	handlers, ok := d.table[msg.Kind()]
	if !ok {
		return &UnhandledKindError{Kind: msg.Kind()}
	}

	for i, handle := range handlers {
		if err := handle(msg, d.registry); err != nil {
			return &HandlerError{Kind: msg.Kind(), Handler: i, Err: err}
		}
	}
	return nil
}
