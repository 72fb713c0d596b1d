package store

import (
	"context"

	"github.com/hotelio/hotel-reservation/internal/model"
)

// ClientStore provides typed CRUD access to clients.  Create assigns
// a fresh opaque ID; Put writes an entity under a caller-supplied ID
// and is used by the event relay when replaying mutations.
type ClientStore interface {
	Create(ctx context.Context, c *model.Client) error
	Get(ctx context.Context, id string) (*model.Client, error)
	GetByEmail(ctx context.Context, email string) (*model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	Update(ctx context.Context, c *model.Client) error
	Delete(ctx context.Context, id string) error
	Put(ctx context.Context, c *model.Client) error
}

// RoomStore provides typed CRUD access to rooms plus the conditional
// status transition the availability engine serializes on.
type RoomStore interface {
	Create(ctx context.Context, r *model.Room) error
	Get(ctx context.Context, id string) (*model.Room, error)
	GetByNumero(ctx context.Context, numero string) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	Update(ctx context.Context, r *model.Room) error
	Delete(ctx context.Context, id string) error
	Put(ctx context.Context, r *model.Room) error

	// CompareAndSetStatus atomically transitions the room's status
	// from one value to another.  It returns false (and no error)
	// when the room exists but its status does not match from, and
	// ErrNotFound when the room does not exist.
	CompareAndSetStatus(ctx context.Context, id string, from, to model.RoomStatus) (bool, error)

	// SetStatus unconditionally writes the room's status.  It
	// returns ErrNotFound when the room does not exist; callers that
	// free rooms during cascades ignore that case.
	SetStatus(ctx context.Context, id string, status model.RoomStatus) error
}

// ReservationStore provides typed CRUD access to reservations and
// the reference queries the cascade coordinator enumerates with.
type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation) error
	Get(ctx context.Context, id string) (*model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ListByClient(ctx context.Context, clientID string) ([]model.Reservation, error)
	ListByRoom(ctx context.Context, roomID string) ([]model.Reservation, error)
	Update(ctx context.Context, r *model.Reservation) error
	Delete(ctx context.Context, id string) error
	Put(ctx context.Context, r *model.Reservation) error
}

// Store bundles the per-entity stores.  Components receive it by
// reference; the owning process opens the backing collaborator at
// startup and closes it at shutdown.
type Store struct {
	Clients      ClientStore
	Rooms        RoomStore
	Reservations ReservationStore
}
