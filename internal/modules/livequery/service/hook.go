package service

import (
	"context"
	"sync"
)

// Sink receives what a Source produces.
type Sink[T any] interface {
	// Replace swaps in a complete new snapshot.
	Replace(items []T)
	// Fail reports a subscription problem. The last snapshot stays in place.
	Fail(err error)
}

// Source feeds a Hook until ctx is cancelled.
type Source[T any] interface {
	Run(ctx context.Context, sink Sink[T])
}

// View is what a Hook exposes to its consumer.
type View[T any] struct {
	Data    []T    `json:"data"`
	Loading bool   `json:"loading"`
	Stale   bool   `json:"stale"`
	Error   string `json:"error,omitempty"`
}

// Hook mirrors one live collection for one consumer. Loading is true until the first snapshot
// arrives and never becomes true again.
type Hook[T any] struct {
	mu    sync.RWMutex
	view  View[T]
	ready chan struct{}
	once  sync.Once

	subMu       sync.Mutex
	subscribers map[int]func(View[T])
	nextSub     int
	notifyMu    sync.Mutex

	cancel    context.CancelFunc
	done      chan struct{}
	unmounted sync.Once
}

// Mount starts src and returns the hook tracking it. Call Unmount to release the source.
func Mount[T any](ctx context.Context, src Source[T]) *Hook[T] {
	runCtx, cancel := context.WithCancel(ctx)
	h := &Hook[T]{
		view:        View[T]{Data: []T{}, Loading: true},
		ready:       make(chan struct{}),
		subscribers: make(map[int]func(View[T])),
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		src.Run(runCtx, h)
	}()
	return h
}

func (h *Hook[T]) Replace(items []T) {
	if items == nil {
		items = []T{}
	}

	h.mu.Lock()
	h.view = View[T]{Data: items}
	h.mu.Unlock()

	h.once.Do(func() { close(h.ready) })
	h.notify()
}

func (h *Hook[T]) Fail(err error) {
	h.mu.Lock()
	h.view.Stale = true
	h.view.Error = err.Error()
	h.mu.Unlock()

	h.notify()
}

// Snapshot returns the current view. Data must not be modified.
func (h *Hook[T]) Snapshot() View[T] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.view
}

// Ready is closed once the first snapshot has been delivered.
func (h *Hook[T]) Ready() <-chan struct{} {
	return h.ready
}

// Wait blocks until the first snapshot or ctx is done.
func (h *Hook[T]) Wait(ctx context.Context) (View[T], error) {
	select {
	case <-h.ready:
		return h.Snapshot(), nil
	case <-ctx.Done():
		return h.Snapshot(), ctx.Err()
	}
}

// Subscribe calls fn with the current view and after every change, in order.
func (h *Hook[T]) Subscribe(fn func(View[T])) func() {
	h.notifyMu.Lock()
	h.subMu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subscribers[id] = fn
	h.subMu.Unlock()
	fn(h.Snapshot())
	h.notifyMu.Unlock()

	return func() {
		h.subMu.Lock()
		delete(h.subscribers, id)
		h.subMu.Unlock()
	}
}

// Unmount stops the source and waits for it to release its subscription.
func (h *Hook[T]) Unmount() {
	h.unmounted.Do(func() {
		h.cancel()
		<-h.done
	})
}

// Done is closed after the source has stopped.
func (h *Hook[T]) Done() <-chan struct{} {
	return h.done
}

func (h *Hook[T]) notify() {
	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()

	view := h.Snapshot()

	h.subMu.Lock()
	fns := make([]func(View[T]), 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		fns = append(fns, fn)
	}
	h.subMu.Unlock()

	for _, fn := range fns {
		fn(view)
	}
}
