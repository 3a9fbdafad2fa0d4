// Package hooks holds the per-view data containers. Each hook is bound to a
// key (route param, filter, query); binding starts a fetch and only the most
// recently issued fetch may commit. Superseded responses are dropped without
// cancelling their requests.
package hooks

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Status is the lifecycle position of a hook.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrClosed is returned by Wait once the hook has been closed.
var ErrClosed = errors.New("hook closed")

// State is a snapshot of a hook.
type State[T any] struct {
	Status  Status `json:"status"`
	Data    T      `json:"data"`
	Err     error  `json:"-"`
	Message string `json:"error,omitempty"`

	// Extending is set while a load-more runs. A failed load-more keeps Data
	// and records ExtendErr instead of moving to StatusError.
	Extending bool   `json:"extending,omitempty"`
	ExtendErr error  `json:"-"`
	ExtendMsg string `json:"extendError,omitempty"`

	Generation uint64 `json:"generation"`
}

// Settled reports whether no fetch or load-more is outstanding.
func (s State[T]) Settled() bool {
	return s.Status != StatusLoading && !s.Extending
}

// FetchFunc loads the data for a key.
type FetchFunc[K comparable, T any] func(ctx context.Context, key K) (T, error)

// ExtendFunc derives new data from the committed data (load more).
type ExtendFunc[K comparable, T any] func(ctx context.Context, key K, current T) (T, error)

// Hook is a stale-suppressing state container for one view.
type Hook[K comparable, T any] struct {
	name     string
	fetch    FetchFunc[K, T]
	fallback string
	logger   zerolog.Logger

	mu        sync.Mutex
	notifyMu  sync.Mutex
	key       K
	bound     bool
	gen       uint64
	state     State[T]
	closed    bool
	changed   chan struct{}
	observers []func(State[T])
}

// New creates an idle hook. fallback is the message shown when a failure
// carries no user-facing text.
func New[K comparable, T any](name string, fetch FetchFunc[K, T], fallback string, logger zerolog.Logger) *Hook[K, T] {
	return &Hook[K, T]{
		name:     name,
		fetch:    fetch,
		fallback: fallback,
		logger:   logger.With().Str("component", "hooks").Str("hook", name).Logger(),
		state:    State[T]{Status: StatusIdle},
		changed:  make(chan struct{}),
	}
}

// Name returns the hook name used in logs.
func (h *Hook[K, T]) Name() string { return h.name }

// Bind starts loading key. Every call supersedes the previous one, including
// calls with the same key; accumulated data is reset.
func (h *Hook[K, T]) Bind(ctx context.Context, key K) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.gen++
	gen := h.gen
	h.key = key
	h.bound = true
	h.state = State[T]{Status: StatusLoading, Generation: gen}
	h.publishLocked()

	go h.run(ctx, gen, key)
}

// BindIfChanged binds key unless the hook is already bound to it.
func (h *Hook[K, T]) BindIfChanged(ctx context.Context, key K) bool {
	h.mu.Lock()
	same := h.bound && h.key == key && !h.closed
	h.mu.Unlock()
	if same {
		return false
	}
	h.Bind(ctx, key)
	return true
}

func (h *Hook[K, T]) run(ctx context.Context, gen uint64, key K) {
	data, err := h.fetch(ctx, key)

	h.mu.Lock()
	if h.closed || gen != h.gen {
		h.mu.Unlock()
		h.logger.Debug().Uint64("generation", gen).Msg("discarding stale response")
		return
	}
	if err != nil {
		var zero T
		h.state = State[T]{
			Status:     StatusError,
			Data:       zero,
			Err:        err,
			Message:    Message(err, h.fallback),
			Generation: gen,
		}
	} else {
		h.state = State[T]{Status: StatusSuccess, Data: data, Generation: gen}
	}
	h.publishLocked()
}

// Extend runs fn against the committed data for the current key. It returns
// false without doing anything unless the hook holds a successful result and
// no other load-more is running.
func (h *Hook[K, T]) Extend(ctx context.Context, fn ExtendFunc[K, T]) bool {
	h.mu.Lock()
	if h.closed || h.state.Status != StatusSuccess || h.state.Extending {
		h.mu.Unlock()
		return false
	}
	gen := h.gen
	key := h.key
	current := h.state.Data
	h.state.Extending = true
	h.state.ExtendErr = nil
	h.state.ExtendMsg = ""
	h.publishLocked()

	go func() {
		next, err := fn(ctx, key, current)

		h.mu.Lock()
		if h.closed || gen != h.gen {
			h.mu.Unlock()
			h.logger.Debug().Uint64("generation", gen).Msg("discarding stale load-more")
			return
		}
		h.state.Extending = false
		if err != nil {
			h.logger.Warn().Err(err).Msg("load more failed")
			h.state.ExtendErr = err
			h.state.ExtendMsg = Message(err, MsgLoadMore)
		} else {
			h.state.Data = next
		}
		h.publishLocked()
	}()
	return true
}

// Mutate applies a local, synchronous change to successful data (UI state
// such as the selected schedule day). It reports whether fn was applied.
func (h *Hook[K, T]) Mutate(fn func(T) T) bool {
	h.mu.Lock()
	if h.closed || h.state.Status != StatusSuccess {
		h.mu.Unlock()
		return false
	}
	h.state.Data = fn(h.state.Data)
	h.publishLocked()
	return true
}

// State returns the current snapshot.
func (h *Hook[K, T]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Key returns the bound key and whether the hook has been bound.
func (h *Hook[K, T]) Key() (K, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.key, h.bound
}

// Wait blocks until the current generation has settled, ctx is done or the
// hook is closed, and returns the state at that point.
func (h *Hook[K, T]) Wait(ctx context.Context) (State[T], error) {
	for {
		h.mu.Lock()
		st := h.state
		closed := h.closed
		changed := h.changed
		h.mu.Unlock()

		if closed {
			return st, ErrClosed
		}
		if st.Settled() {
			return st, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// OnChange registers an observer called after every state change, in order.
// Observers must not call Bind, Extend or Mutate synchronously.
func (h *Hook[K, T]) OnChange(fn func(State[T])) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, fn)
}

// Close unmounts the hook. Every later resolution is discarded.
func (h *Hook[K, T]) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.changed)
	h.changed = make(chan struct{})
	h.observers = nil
	h.mu.Unlock()
}

// publishLocked wakes waiters and notifies observers, then releases h.mu.
// notifyMu is taken before h.mu is released so observers see changes in
// commit order.
func (h *Hook[K, T]) publishLocked() {
	close(h.changed)
	h.changed = make(chan struct{})
	snapshot := h.state
	observers := h.observers

	h.notifyMu.Lock()
	h.mu.Unlock()
	defer h.notifyMu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}
