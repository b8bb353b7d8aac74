// Package views holds the list and dashboard controllers the CLI renders:
// pagination, filters, polling and last-request-wins loading.
package views

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned to a Load whose result was discarded because a
// newer Load started.
var ErrSuperseded = errors.New("superseded by a newer request")

// State is a snapshot of a Loader.
type State[T any] struct {
	Data    T
	Err     error
	Loading bool
	Loaded  bool
}

// Loader runs fetches for one view. Only the most recently started fetch may
// commit; an older one that finishes late is dropped and its context is
// cancelled as soon as the newer one starts.
type Loader[T any] struct {
	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	state    State[T]
	onChange func(State[T])
}

// OnChange registers a callback invoked (outside the lock) after every
// state transition.
func (l *Loader[T]) OnChange(fn func(State[T])) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Load runs fetch under a fresh generation.
func (l *Loader[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.state.Loading = true
	snapshot, notify := l.state, l.onChange
	l.mu.Unlock()
	if notify != nil {
		notify(snapshot)
	}

	data, err := fetch(ctx)
	cancel()

	l.mu.Lock()
	if gen != l.gen {
		// The newer request owns the loading flag now.
		l.mu.Unlock()
		var zero T
		return zero, ErrSuperseded
	}
	l.cancel = nil
	l.state.Loading = false
	if err != nil {
		l.state.Err = err
	} else {
		l.state = State[T]{Data: data, Loaded: true}
	}
	snapshot, notify = l.state, l.onChange
	l.mu.Unlock()
	if notify != nil {
		notify(snapshot)
	}

	if err != nil {
		var zero T
		return zero, err
	}
	return data, nil
}

// State returns the current snapshot. After a failed load Data still holds
// the last good result.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Stop cancels any in-flight fetch and drops its result.
func (l *Loader[T]) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.state.Loading = false
}
