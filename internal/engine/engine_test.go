package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelio/hotel-reservation/internal/model"
	"github.com/hotelio/hotel-reservation/internal/store"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixture seeds a memory store with one client and one free room.
func fixture(t *testing.T) (*store.Store, *model.Client, *model.Room) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()

	c := &model.Client{Name: "Ada", Surname: "Lovelace", Address: "1 Analytical Way", Email: "ada@example.com", Phone: "0600000001"}
	require.NoError(t, st.Clients.Create(ctx, c))

	r := &model.Room{Numero: "101", Type: model.RoomDouble, Price: 90}
	require.NoError(t, st.Rooms.Create(ctx, r))
	return st, c, r
}

func TestReserveMarksRoomReserved(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	res, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 5))
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)
	assert.Equal(t, c.ID, res.ClientID)
	assert.Equal(t, r.ID, res.RoomID)

	room, err := st.Rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomReserved, room.Status)
}

func TestReserveRejectsInvalidRange(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	_, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 5), date(2026, 9, 1))
	assert.ErrorIs(t, err, store.ErrInvalidRange)

	// Equal start and end is a valid single-day stay.
	_, err = eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 1))
	assert.NoError(t, err)
}

func TestReserveUnknownReferences(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	_, err := eng.Reserve(ctx, "missing", r.ID, date(2026, 9, 1), date(2026, 9, 5))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = eng.Reserve(ctx, c.ID, "missing", date(2026, 9, 1), date(2026, 9, 5))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReserveConflictOnReservedRoom(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	_, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 5))
	require.NoError(t, err)

	_, err = eng.Reserve(ctx, c.ID, r.ID, date(2026, 10, 1), date(2026, 10, 5))
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 5))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, store.ErrConflict)
		}
	}
	assert.Equal(t, 1, wins)

	reservations, err := st.Reservations.List(ctx)
	require.NoError(t, err)
	assert.Len(t, reservations, 1)
}

// failingReservations wraps a ReservationStore and fails Create.
type failingReservations struct {
	store.ReservationStore
}

func (f *failingReservations) Create(ctx context.Context, r *model.Reservation) error {
	return store.ErrUnavailable
}

func TestReserveRollsBackRoomWhenCreateFails(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	st.Reservations = &failingReservations{ReservationStore: st.Reservations}
	eng := New(st, nil)

	_, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 5))
	assert.ErrorIs(t, err, store.ErrUnavailable)

	room, err := st.Rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomFree, room.Status)
}

func TestReleaseFreesRoom(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	res, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 5))
	require.NoError(t, err)

	require.NoError(t, eng.Release(ctx, res.ID))

	_, err = st.Reservations.Get(ctx, res.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	room, err := st.Rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomFree, room.Status)

	// Releasing again reports the reservation as gone.
	assert.ErrorIs(t, eng.Release(ctx, res.ID), store.ErrNotFound)
}

func TestAmendDatesOnly(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	res, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 5))
	require.NoError(t, err)

	newEnd := date(2026, 9, 9)
	updated, err := eng.AmendReservation(ctx, res.ID, Amend{DateEnd: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, newEnd, updated.DateEnd)
	assert.Equal(t, r.ID, updated.RoomID)

	badEnd := date(2026, 8, 1)
	_, err = eng.AmendReservation(ctx, res.ID, Amend{DateEnd: &badEnd})
	assert.ErrorIs(t, err, store.ErrInvalidRange)
}

func TestAmendRoomChangeSwapsStatuses(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	other := &model.Room{Numero: "102", Type: model.RoomTriple, Price: 130}
	require.NoError(t, st.Rooms.Create(ctx, other))

	res, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 5))
	require.NoError(t, err)

	updated, err := eng.AmendReservation(ctx, res.ID, Amend{RoomID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.RoomID)

	oldRoom, err := st.Rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomFree, oldRoom.Status)
	newRoom, err := st.Rooms.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomReserved, newRoom.Status)
}

func TestAmendRoomChangeConflict(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	other := &model.Room{Numero: "102", Type: model.RoomTriple, Price: 130, Status: model.RoomReserved}
	require.NoError(t, st.Rooms.Create(ctx, other))

	res, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 5))
	require.NoError(t, err)

	_, err = eng.AmendReservation(ctx, res.ID, Amend{RoomID: &other.ID})
	assert.ErrorIs(t, err, store.ErrConflict)

	// The original binding is untouched.
	kept, err := st.Reservations.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, kept.RoomID)
	oldRoom, err := st.Rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomReserved, oldRoom.Status)
}

// failingUpdates wraps a ReservationStore and fails Update.
type failingUpdates struct {
	store.ReservationStore
}

func (f *failingUpdates) Update(ctx context.Context, r *model.Reservation) error {
	return store.ErrUnavailable
}

func TestAmendRollsBackNewRoomWhenUpdateFails(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	other := &model.Room{Numero: "102", Type: model.RoomTriple, Price: 130}
	require.NoError(t, st.Rooms.Create(ctx, other))

	res, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 5))
	require.NoError(t, err)

	st.Reservations = &failingUpdates{ReservationStore: st.Reservations}
	_, err = eng.AmendReservation(ctx, res.ID, Amend{RoomID: &other.ID})
	assert.ErrorIs(t, err, store.ErrUnavailable)

	newRoom, err := st.Rooms.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomFree, newRoom.Status)
	oldRoom, err := st.Rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomReserved, oldRoom.Status)
}

func TestReserveReleaseReserveCycle(t *testing.T) {
	ctx := context.Background()
	st, c, r := fixture(t)
	eng := New(st, nil)

	first, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 9, 1), date(2026, 9, 5))
	require.NoError(t, err)

	_, err = eng.Reserve(ctx, c.ID, r.ID, date(2026, 10, 1), date(2026, 10, 5))
	require.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, eng.Release(ctx, first.ID))

	second, err := eng.Reserve(ctx, c.ID, r.ID, date(2026, 10, 1), date(2026, 10, 5))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	room, err := st.Rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomReserved, room.Status)
}

func TestErrorsCarrySentinels(t *testing.T) {
	ctx := context.Background()
	st, _, _ := fixture(t)
	eng := New(st, nil)

	err := eng.Release(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
