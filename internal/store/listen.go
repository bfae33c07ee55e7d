package store

import (
	"context"

	"teamdeck/internal/broadcast"
)

// Listen wires a broadcast channel into the store: events published by other
// console instances trigger a re-fetch so all instances converge.
//
// Receipt policy:
//   - CREATED: skip the fetch when the id is already present locally. This
//     de-duplicates the race where our own completed create lands just before
//     another instance's broadcast for the same entity.
//   - UPDATED / DELETED: always re-fetch. A targeted patch could race a
//     concurrent edit, so correctness wins over efficiency here.
//
// The subscription lives until cancel is called; callers tie it to the
// lifetime of the component that owns the channel.
func Listen[T Entity, D any](s *Store[T, D], ch *broadcast.Channel) (cancel func()) {
	sub, unsubscribe := ch.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ev := range sub {
			switch ev.Type {
			case broadcast.EventCreated:
				if s.Has(ev.ID) {
					continue
				}
				_ = s.Fetch(context.Background())
			case broadcast.EventUpdated, broadcast.EventDeleted:
				_ = s.Fetch(context.Background())
			}
		}
	}()

	return func() {
		unsubscribe()
		<-done
	}
}
