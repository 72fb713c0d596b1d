// Package cascade performs the multi-entity side effects of client,
// room and reservation deletion.  Cascades are not transactional
// across the store; they are crash-safe by idempotent replay:
// re-running a cascade frees already-free rooms and deletes
// already-deleted reservations as no-ops and converges to the same
// end state.
package cascade

import (
	"context"
	"errors"
	"log"

	"github.com/hotelio/hotel-reservation/internal/engine"
	"github.com/hotelio/hotel-reservation/internal/model"
	"github.com/hotelio/hotel-reservation/internal/queue"
	"github.com/hotelio/hotel-reservation/internal/store"
)

// Coordinator resolves dependent reservations and room state before
// removing a client or room.
type Coordinator struct {
	store  *store.Store
	engine *engine.Engine
	events queue.Publisher
}

// New returns a Coordinator.  pub may be nil when no relay is wired.
func New(s *store.Store, eng *engine.Engine, pub queue.Publisher) *Coordinator {
	if pub == nil {
		pub = queue.Nop{}
	}
	return &Coordinator{store: s, engine: eng, events: pub}
}

func (c *Coordinator) publish(ctx context.Context, entity string, t queue.EventType, payload any) {
	ev, err := queue.New(entity, t, payload)
	if err != nil {
		log.Printf("cascade: marshal %s %s event: %v", entity, t, err)
		return
	}
	_ = c.events.Publish(ctx, queue.TopicFor(entity), ev)
}

// DeleteClient removes a client after resolving every reservation
// that references it: each reservation's room is freed and the
// reservation deleted before the client record goes away, so a room
// can never be left reserved with no recoverable owner.
func (c *Coordinator) DeleteClient(ctx context.Context, id string) error {
	if _, err := c.store.Clients.Get(ctx, id); err != nil {
		return err
	}
	reservations, err := c.store.Reservations.ListByClient(ctx, id)
	if err != nil {
		return err
	}
	for _, res := range reservations {
		if err := c.store.Rooms.SetStatus(ctx, res.RoomID, model.RoomFree); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := c.store.Reservations.Delete(ctx, res.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		c.publish(ctx, queue.EntityReservation, queue.EventSuppression, queue.Deleted{ID: res.ID})
		if room, err := c.store.Rooms.Get(ctx, res.RoomID); err == nil {
			c.publish(ctx, queue.EntityRoom, queue.EventModification, room)
		}
	}
	if err := c.store.Clients.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	c.publish(ctx, queue.EntityClient, queue.EventSuppression, queue.Deleted{ID: id})
	return nil
}

// DeleteRoom removes a room and every reservation referencing it.
// No other room's status is touched.
func (c *Coordinator) DeleteRoom(ctx context.Context, id string) error {
	if _, err := c.store.Rooms.Get(ctx, id); err != nil {
		return err
	}
	reservations, err := c.store.Reservations.ListByRoom(ctx, id)
	if err != nil {
		return err
	}
	for _, res := range reservations {
		if err := c.store.Reservations.Delete(ctx, res.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		c.publish(ctx, queue.EntityReservation, queue.EventSuppression, queue.Deleted{ID: res.ID})
	}
	if err := c.store.Rooms.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	c.publish(ctx, queue.EntityRoom, queue.EventSuppression, queue.Deleted{ID: id})
	return nil
}

// DeleteReservation removes a single reservation and frees its
// room.  It delegates to the engine's release transition.
func (c *Coordinator) DeleteReservation(ctx context.Context, id string) error {
	return c.engine.Release(ctx, id)
}
