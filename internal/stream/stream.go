// Package stream implements the live-subscription primitive shared by the
// order and catalog views: every subscriber gets the full current result
// set of its own source on every change, never deltas. Rapid changes
// coalesce: a slow consumer sees only the latest snapshot, which is
// safe because each snapshot is complete.
package stream

import "sync"

// Source produces the subscriber's full current result set. Each
// subscriber carries its own source so differently-filtered views can
// share one hub.
type Source[T any] func() ([]T, error)

// Hub fans change notifications out to live subscriptions.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[*Subscription[T]]struct{}

	// optional hooks for a subscriber gauge
	onSubscribe   func()
	onUnsubscribe func()
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[*Subscription[T]]struct{})}
}

// SetGaugeHooks installs callbacks fired on subscribe/unsubscribe.
func (h *Hub[T]) SetGaugeHooks(onSub, onUnsub func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSubscribe = onSub
	h.onUnsubscribe = onUnsub
}

// Subscription is a live view over a Hub. C delivers full snapshots;
// Errors delivers non-fatal source failures without tearing the
// subscription down; the consumer keeps its last-known-good snapshot
// and decides whether to retry or unsubscribe.
type Subscription[T any] struct {
	C    chan []T
	errs chan error

	hub  *Hub[T]
	src  Source[T]
	once sync.Once
}

// Errors reports source failures. The subscription stays live.
func (s *Subscription[T]) Errors() <-chan error {
	return s.errs
}

// Unsubscribe detaches the subscription. Callers must invoke it on
// teardown; it is the only cancellation primitive.
func (s *Subscription[T]) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		onUnsub := s.hub.onUnsubscribe
		s.hub.mu.Unlock()
		if onUnsub != nil {
			onUnsub()
		}
	})
}

// Subscribe registers a new live view and primes it with the source's
// current result set.
func (h *Hub[T]) Subscribe(src Source[T]) *Subscription[T] {
	sub := &Subscription[T]{
		C:    make(chan []T, 1),
		errs: make(chan error, 1),
		hub:  h,
		src:  src,
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	onSub := h.onSubscribe
	h.mu.Unlock()
	if onSub != nil {
		onSub()
	}
	deliver(sub)
	return sub
}

// Publish re-evaluates every subscription's source and delivers the
// resulting snapshots. Called after each successful write to the
// underlying collection.
func (h *Hub[T]) Publish() {
	h.mu.Lock()
	subs := make([]*Subscription[T], 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		deliver(s)
	}
}

func deliver[T any](s *Subscription[T]) {
	snap, err := s.src()
	if err != nil {
		// non-fatal: report alongside whatever the consumer last saw
		select {
		case s.errs <- err:
		default:
		}
		return
	}
	// latest snapshot wins when the consumer lags
	select {
	case s.C <- snap:
	default:
		select {
		case <-s.C:
		default:
		}
		select {
		case s.C <- snap:
		default:
		}
	}
}
