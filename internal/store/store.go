// Package store holds the authoritative client-side list for one entity type.
//
// Every operation runs the same request lifecycle: pending (loading set, last
// error cleared) → fulfilled (merge applied) or rejected (error recorded,
// items untouched). State only changes after the server confirms; there are
// no optimistic updates to roll back. Concurrent requests are applied in
// completion order, an accepted eventual-consistency trade-off: the UI
// re-fetches after every success and on every broadcast, so staleness windows
// stay small.
package store

import (
	"context"
	"sync"

	"teamdeck/internal/broadcast"

	"go.uber.org/zap"
)

type Entity interface {
	EntityID() int
}

// Remote is the store's view of the remote adapter (api.Resource satisfies it).
type Remote[T Entity, D any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft D) (T, string, error)
	Update(ctx context.Context, id int, draft D) (T, string, error)
	Remove(ctx context.Context, id int) (string, error)
}

// Publisher is the store's view of the broadcast channel.
type Publisher interface {
	Publish(broadcast.Event) error
}

type Snapshot[T Entity] struct {
	Items   []T
	Loading bool
	Err     string
}

type Store[T Entity, D any] struct {
	kind   string
	remote Remote[T, D]
	pub    Publisher
	log    *zap.Logger

	mu      sync.Mutex
	items   []T
	loading bool
	err     string

	watchMu sync.Mutex
	watch   map[chan struct{}]struct{}
}

type Option[T Entity, D any] func(*Store[T, D])

// WithPublisher makes every successful mutation publish a channel event as its
// final step, after the local transition.
func WithPublisher[T Entity, D any](pub Publisher) Option[T, D] {
	return func(s *Store[T, D]) { s.pub = pub }
}

func WithLogger[T Entity, D any](log *zap.Logger) Option[T, D] {
	return func(s *Store[T, D]) { s.log = log }
}

func New[T Entity, D any](kind string, remote Remote[T, D], opts ...Option[T, D]) *Store[T, D] {
	s := &Store[T, D]{
		kind:   kind,
		remote: remote,
		log:    zap.NewNop(),
		items:  []T{},
		watch:  map[chan struct{}]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store[T, D]) Kind() string { return s.kind }

// Snapshot returns a copy of the current state; the items slice is never
// shared with callers.
func (s *Store[T, D]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{
		Items:   append([]T{}, s.items...),
		Loading: s.loading,
		Err:     s.err,
	}
}

// Has reports whether an entity with the given id is present locally. Used by
// the broadcast listener to de-duplicate CREATED re-fetches.
func (s *Store[T, D]) Has(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.EntityID() == id {
			return true
		}
	}
	return false
}

// Watch registers for change notification: one signal per state transition,
// coalesced when the watcher lags. Cancel when the watching component goes
// away.
func (s *Store[T, D]) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 8)
	s.watchMu.Lock()
	s.watch[ch] = struct{}{}
	s.watchMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.watchMu.Lock()
			delete(s.watch, ch)
			s.watchMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store[T, D]) notify() {
	s.watchMu.Lock()
	for ch := range s.watch {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.watchMu.Unlock()
}

// Fetch replaces items wholesale with the server's list, preserving server
// order.
func (s *Store[T, D]) Fetch(ctx context.Context) error {
	s.begin()
	items, err := s.remote.List(ctx)
	if err != nil {
		s.reject(err)
		return err
	}

	s.mu.Lock()
	s.items = items
	s.loading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()
	return nil
}

// Create submits a draft; on success the new entity is appended to the end of
// the list (the documented boundary for newly created items) and a CREATED
// event is published.
func (s *Store[T, D]) Create(ctx context.Context, draft D) (T, string, error) {
	s.begin()
	entity, msg, err := s.remote.Create(ctx, draft)
	if err != nil {
		s.reject(err)
		var zero T
		return zero, "", err
	}

	s.mu.Lock()
	s.items = append(s.items, entity)
	s.loading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()

	s.publish(broadcast.Created(entity.EntityID(), entity))
	return entity, msg, nil
}

// Update replaces the matching item in place. A fulfilled update whose id is
// no longer present locally is a no-op, logged rather than fatal.
func (s *Store[T, D]) Update(ctx context.Context, id int, draft D) (T, string, error) {
	s.begin()
	entity, msg, err := s.remote.Update(ctx, id, draft)
	if err != nil {
		s.reject(err)
		var zero T
		return zero, "", err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.items {
		if s.items[i].EntityID() == entity.EntityID() {
			s.items[i] = entity
			replaced = true
			break
		}
	}
	s.loading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()

	if !replaced {
		s.log.Info("updated entity not in local list, skipping merge",
			zap.String("kind", s.kind), zap.Int("id", entity.EntityID()))
	}

	s.publish(broadcast.Updated(entity.EntityID(), entity))
	return entity, msg, nil
}

// Remove filters the matching item out and publishes a DELETED event.
func (s *Store[T, D]) Remove(ctx context.Context, id int) (string, error) {
	s.begin()
	msg, err := s.remote.Remove(ctx, id)
	if err != nil {
		s.reject(err)
		return "", err
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.EntityID() != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.loading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()

	s.publish(broadcast.Deleted(id))
	return msg, nil
}

func (s *Store[T, D]) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

func (s *Store[T, D]) reject(err error) {
	s.mu.Lock()
	s.loading = false
	s.err = err.Error()
	s.mu.Unlock()
	s.notify()
}

func (s *Store[T, D]) publish(ev broadcast.Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ev); err != nil {
		// Other instances converge on their next fetch; local state is already
		// correct, so a failed publish is only worth a log line.
		s.log.Warn("broadcast publish failed",
			zap.String("kind", s.kind), zap.Error(err))
	}
}
