// Package engine implements the availability engine: the state
// machine coupling a room's availability flag to the reservation
// lifecycle.  A room is reserved iff a live reservation references
// it.  All transitions go through the store's conditional
// compare-and-set so that concurrent attempts on the same room are
// serialized by the persistence collaborator; losing the race is a
// conflict, never a double booking.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hotelio/hotel-reservation/internal/model"
	"github.com/hotelio/hotel-reservation/internal/queue"
	"github.com/hotelio/hotel-reservation/internal/store"
)

// Engine validates and performs reservation transitions against the
// store and announces committed mutations on the event relay.
type Engine struct {
	store  *store.Store
	events queue.Publisher
}

// New returns an Engine over the given store.  pub may be nil when
// no relay is wired.
func New(s *store.Store, pub queue.Publisher) *Engine {
	if pub == nil {
		pub = queue.Nop{}
	}
	return &Engine{store: s, events: pub}
}

// publish announces a committed mutation.  Publishing is
// fire-and-forget: failures are logged by the publisher and never
// surfaced to the caller.
func (e *Engine) publish(ctx context.Context, entity string, t queue.EventType, payload any) {
	ev, err := queue.New(entity, t, payload)
	if err != nil {
		log.Printf("engine: marshal %s %s event: %v", entity, t, err)
		return
	}
	_ = e.events.Publish(ctx, queue.TopicFor(entity), ev)
}

// Reserve books a room for a client over a date range.  It fails
// with ErrNotFound when the client or room does not exist,
// ErrInvalidRange when end precedes start, and ErrConflict when the
// room is not free.  The room flag and the reservation row are two
// writes: if the reservation cannot be persisted after the room was
// flipped to reserved, the room is rolled back to free so the system
// never holds a reserved room with no reservation.
func (e *Engine) Reserve(ctx context.Context, clientID, roomID string, start, end time.Time) (*model.Reservation, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: dateEnd %s before dateStart %s",
			store.ErrInvalidRange, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if _, err := e.store.Clients.Get(ctx, clientID); err != nil {
		return nil, err
	}
	if _, err := e.store.Rooms.Get(ctx, roomID); err != nil {
		return nil, err
	}

	ok, err := e.store.Rooms.CompareAndSetStatus(ctx, roomID, model.RoomFree, model.RoomReserved)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: room %s is not free", store.ErrConflict, roomID)
	}

	res := &model.Reservation{
		ClientID:  clientID,
		RoomID:    roomID,
		DateStart: start,
		DateEnd:   end,
	}
	if err := e.store.Reservations.Create(ctx, res); err != nil {
		// Compensating action: the room transition committed but the
		// reservation did not.
		if _, cerr := e.store.Rooms.CompareAndSetStatus(ctx, roomID, model.RoomReserved, model.RoomFree); cerr != nil {
			log.Printf("engine: rollback of room %s failed: %v", roomID, cerr)
		}
		return nil, err
	}

	e.publish(ctx, queue.EntityReservation, queue.EventCreation, res)
	if room, err := e.store.Rooms.Get(ctx, roomID); err == nil {
		e.publish(ctx, queue.EntityRoom, queue.EventModification, room)
	}
	return res, nil
}

// Release deletes a reservation and frees its room.  The free is
// unconditional: the single-slot model guarantees at most one live
// reservation per room.  A room that no longer exists is not an
// error; the release simply completes.
func (e *Engine) Release(ctx context.Context, reservationID string) error {
	res, err := e.store.Reservations.Get(ctx, reservationID)
	if err != nil {
		return err
	}
	if err := e.store.Reservations.Delete(ctx, reservationID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := e.store.Rooms.SetStatus(ctx, res.RoomID, model.RoomFree); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	e.publish(ctx, queue.EntityReservation, queue.EventSuppression, queue.Deleted{ID: reservationID})
	if room, err := e.store.Rooms.Get(ctx, res.RoomID); err == nil {
		e.publish(ctx, queue.EntityRoom, queue.EventModification, room)
	}
	return nil
}

// Amend describes the optional field changes of an amendment.
type Amend struct {
	ClientID  *string
	RoomID    *string
	DateStart *time.Time
	DateEnd   *time.Time
}

// AmendReservation updates an existing reservation.  A room change
// is a single logical transition: the new room is acquired first via
// compare-and-set, and only then is the reservation rebound and the
// old room freed.  Failure to acquire the new room, or to persist
// the rebound reservation, leaves the old binding unchanged.
func (e *Engine) AmendReservation(ctx context.Context, reservationID string, patch Amend) (*model.Reservation, error) {
	res, err := e.store.Reservations.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	updated := *res
	if patch.ClientID != nil {
		if _, err := e.store.Clients.Get(ctx, *patch.ClientID); err != nil {
			return nil, err
		}
		updated.ClientID = *patch.ClientID
	}
	if patch.DateStart != nil {
		updated.DateStart = *patch.DateStart
	}
	if patch.DateEnd != nil {
		updated.DateEnd = *patch.DateEnd
	}
	if updated.DateEnd.Before(updated.DateStart) {
		return nil, fmt.Errorf("%w: dateEnd %s before dateStart %s", store.ErrInvalidRange,
			updated.DateEnd.Format("2006-01-02"), updated.DateStart.Format("2006-01-02"))
	}

	roomChanged := patch.RoomID != nil && *patch.RoomID != res.RoomID
	if roomChanged {
		newRoomID := *patch.RoomID
		if _, err := e.store.Rooms.Get(ctx, newRoomID); err != nil {
			return nil, err
		}
		ok, err := e.store.Rooms.CompareAndSetStatus(ctx, newRoomID, model.RoomFree, model.RoomReserved)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: room %s is not free", store.ErrConflict, newRoomID)
		}
		updated.RoomID = newRoomID
	}

	if err := e.store.Reservations.Update(ctx, &updated); err != nil {
		if roomChanged {
			// No partial re-binding: hand the freshly acquired room back.
			if _, cerr := e.store.Rooms.CompareAndSetStatus(ctx, updated.RoomID, model.RoomReserved, model.RoomFree); cerr != nil {
				log.Printf("engine: rollback of room %s failed: %v", updated.RoomID, cerr)
			}
		}
		return nil, err
	}

	if roomChanged {
		if err := e.store.Rooms.SetStatus(ctx, res.RoomID, model.RoomFree); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("engine: freeing previous room %s failed: %v", res.RoomID, err)
		}
		if room, err := e.store.Rooms.Get(ctx, res.RoomID); err == nil {
			e.publish(ctx, queue.EntityRoom, queue.EventModification, room)
		}
		if room, err := e.store.Rooms.Get(ctx, updated.RoomID); err == nil {
			e.publish(ctx, queue.EntityRoom, queue.EventModification, room)
		}
	}

	e.publish(ctx, queue.EntityReservation, queue.EventModification, &updated)
	return &updated, nil
}
