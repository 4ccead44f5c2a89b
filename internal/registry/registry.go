// Package registry provides the typed service container every training run
// is wired through. Services are registered either as ready-made instances
// or as creators that run once on first resolution; resolved services are
// torn down in reverse registration order when the run ends.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Key identifies one kind of externally-backed service, for example a
// metrics writer or an experiment run handle. One entry exists per key.
type Key string

// Scope carries the shared setup context passed to creators. It is fixed
// once per training invocation.
type Scope struct {
	RunID     string
	RunName   string
	StartedAt time.Time
}

// Validate reports a configuration error if a required scope field is
// missing. Creators that need the run identity call this before building
// anything so misconfiguration surfaces before any resource is opened.
func (s Scope) Validate() error {
	if s.RunID == "" {
		return fmt.Errorf("scope is missing a run ID")
	}
	if s.RunName == "" {
		return fmt.Errorf("scope is missing a run name")
	}
	if s.StartedAt.IsZero() {
		return fmt.Errorf("scope is missing a start time")
	}
	return nil
}

// Creator builds a service instance on first demand.
type Creator func(ctx context.Context, scope Scope) (any, error)

// Cleanup releases a resolved service's underlying resource. It is called
// at most once per resolved instance.
type Cleanup func(instance any) error

type entry struct {
	key      Key
	instance any
	resolved bool
	creator  Creator
	cleanup  Cleanup
}

// Registry owns the mapping from service key to entry. It resolves lazily,
// caches by identity, and closes everything it resolved exactly once.
//
// Usage is single-goroutine by design; the mutex only guards against
// accidental cross-goroutine misuse, no operation blocks on it.
type Registry struct {
	mu      sync.Mutex
	entries map[Key]*entry
	order   []Key
	scope   Scope
	closed  bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[Key]*entry),
	}
}

// RegisterCreator stores a creator for key without invoking it. The
// optional cleanup hook runs during CloseAll if the creator was resolved.
// Registering an already-known key fails with DuplicateRegistrationError.
func (r *Registry) RegisterCreator(key Key, create Creator, cleanup Cleanup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if _, ok := r.entries[key]; ok {
		return &DuplicateRegistrationError{Key: key}
	}

	r.entries[key] = &entry{key: key, creator: create, cleanup: cleanup}
	r.order = append(r.order, key)
	return nil
}

// RegisterService stores an already-built instance for key. No creator
// runs for this key later and no cleanup hook is attached; the caller
// keeps responsibility for the instance's lifetime beyond the run.
func (r *Registry) RegisterService(key Key, instance any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if _, ok := r.entries[key]; ok {
		return &DuplicateRegistrationError{Key: key}
	}

	r.entries[key] = &entry{key: key, instance: instance, resolved: true}
	r.order = append(r.order, key)
	return nil
}

// Get resolves key. A creator-backed entry is built on first call and the
// result is cached, so two calls always return the same instance. Unknown
// keys fail with UnregisteredError.
func (r *Registry) Get(key Key) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	e, ok := r.entries[key]
	if !ok {
		return nil, &UnregisteredError{Key: key}
	}
	if e.resolved {
		return e.instance, nil
	}
	return r.resolveLocked(context.Background(), e)
}

// CallAllCreators eagerly resolves every still-unresolved creator-backed
// entry with the given scope, in registration order. Failures in external
// resources surface here, before the first message is dispatched, instead
// of lazily mid-run. The scope is retained for any creator registered
// afterwards and resolved lazily.
func (r *Registry) CallAllCreators(ctx context.Context, scope Scope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.scope = scope

	for _, key := range r.order {
		e := r.entries[key]
		if e.resolved {
			continue
		}
		if _, err := r.resolveLocked(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) resolveLocked(ctx context.Context, e *entry) (any, error) {
	instance, err := e.creator(ctx, r.scope)
	if err != nil {
		return nil, fmt.Errorf("failed to create service %q: %w", string(e.key), err)
	}
	e.instance = instance
	e.resolved = true
	e.creator = nil
	return instance, nil
}

// CloseAll invokes every resolved entry's cleanup hook in reverse
// registration order, so services acquired later are released first.
// Entries whose creator never ran are skipped. One failing hook does not
// stop the others; all failures come back together as a CleanupError.
// A second call is a no-op.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var failures []CleanupFailure
	for i := len(r.order) - 1; i >= 0; i-- {
		e := r.entries[r.order[i]]
		if !e.resolved || e.cleanup == nil {
			continue
		}
		if err := e.cleanup(e.instance); err != nil {
			failures = append(failures, CleanupFailure{Key: e.key, Err: err})
		}
	}

	if len(failures) > 0 {
		return &CleanupError{Failures: failures}
	}
	return nil
}

// Scope returns the scope set by CallAllCreators. Zero before that.
func (r *Registry) Scope() Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scope
}

// Resolve resolves key and asserts the instance to T.
func Resolve[T any](r *Registry, key Key) (T, error) {
	var zero T
	v, err := r.Get(key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &WrongTypeError{
			Key:  key,
			Want: fmt.Sprintf("%T", zero),
			Got:  fmt.Sprintf("%T", v),
		}
	}
	return t, nil
}
