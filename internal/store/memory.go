package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hotelio/hotel-reservation/internal/model"
)

// NewMemory returns a Store backed by in-process maps.  It is used
// by the relay replica, which materializes mutations into its own
// store, and by tests.  All methods are safe for concurrent use; the
// room status compare-and-set is serialized by the store mutex.
func NewMemory() *Store {
	m := &memory{
		clients:      map[string]model.Client{},
		rooms:        map[string]model.Room{},
		reservations: map[string]model.Reservation{},
	}
	return &Store{
		Clients:      (*memClients)(m),
		Rooms:        (*memRooms)(m),
		Reservations: (*memReservations)(m),
	}
}

type memory struct {
	mu           sync.Mutex
	clients      map[string]model.Client
	rooms        map[string]model.Room
	reservations map[string]model.Reservation
}

func newID() string { return uuid.New().String() }

type memClients memory

func (m *memClients) Create(ctx context.Context, c *model.Client) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.clients {
		if existing.Email == c.Email {
			return fmt.Errorf("%w: email %s", ErrDuplicate, c.Email)
		}
	}
	c.ID = newID()
	m.clients[c.ID] = *c
	return nil
}

func (m *memClients) Get(ctx context.Context, id string) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("%w: client %s", ErrNotFound, id)
	}
	return &c, nil
}

func (m *memClients) GetByEmail(ctx context.Context, email string) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		if c.Email == email {
			out := c
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: client with email %s", ErrNotFound, email)
}

func (m *memClients) List(ctx context.Context) ([]model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memClients) Update(ctx context.Context, c *model.Client) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; !ok {
		return fmt.Errorf("%w: client %s", ErrNotFound, c.ID)
	}
	for id, existing := range m.clients {
		if id != c.ID && existing.Email == c.Email {
			return fmt.Errorf("%w: email %s", ErrDuplicate, c.Email)
		}
	}
	m.clients[c.ID] = *c
	return nil
}

func (m *memClients) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return fmt.Errorf("%w: client %s", ErrNotFound, id)
	}
	delete(m.clients, id)
	return nil
}

func (m *memClients) Put(ctx context.Context, c *model.Client) error {
	if c.ID == "" {
		return fmt.Errorf("%w: put requires an id", ErrValidation)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = *c
	return nil
}

type memRooms memory

func (m *memRooms) Create(ctx context.Context, r *model.Room) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rooms {
		if existing.Numero == r.Numero {
			return fmt.Errorf("%w: numero %s", ErrDuplicate, r.Numero)
		}
	}
	if r.Status == "" {
		r.Status = model.RoomFree
	}
	r.ID = newID()
	m.rooms[r.ID] = *r
	return nil
}

func (m *memRooms) Get(ctx context.Context, id string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	return &r, nil
}

func (m *memRooms) GetByNumero(ctx context.Context, numero string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		if r.Numero == numero {
			out := r
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: room numero %s", ErrNotFound, numero)
}

func (m *memRooms) List(ctx context.Context) ([]model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, nil
}

func (m *memRooms) Update(ctx context.Context, r *model.Room) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[r.ID]; !ok {
		return fmt.Errorf("%w: room %s", ErrNotFound, r.ID)
	}
	for id, existing := range m.rooms {
		if id != r.ID && existing.Numero == r.Numero {
			return fmt.Errorf("%w: numero %s", ErrDuplicate, r.Numero)
		}
	}
	m.rooms[r.ID] = *r
	return nil
}

func (m *memRooms) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	delete(m.rooms, id)
	return nil
}

func (m *memRooms) Put(ctx context.Context, r *model.Room) error {
	if r.ID == "" {
		return fmt.Errorf("%w: put requires an id", ErrValidation)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Status == "" {
		r.Status = model.RoomFree
	}
	m.rooms[r.ID] = *r
	return nil
}

func (m *memRooms) CompareAndSetStatus(ctx context.Context, id string, from, to model.RoomStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return false, fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	if r.Status != from {
		return false, nil
	}
	r.Status = to
	m.rooms[id] = r
	return true, nil
}

func (m *memRooms) SetStatus(ctx context.Context, id string, status model.RoomStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	r.Status = status
	m.rooms[id] = r
	return nil
}

type memReservations memory

func (m *memReservations) Create(ctx context.Context, r *model.Reservation) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = newID()
	m.reservations[r.ID] = *r
	return nil
}

func (m *memReservations) Get(ctx context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	return &r, nil
}

func (m *memReservations) List(ctx context.Context) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Reservation, 0, len(m.reservations))
	for _, r := range m.reservations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memReservations) ListByClient(ctx context.Context, clientID string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.reservations {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReservations) ListByRoom(ctx context.Context, roomID string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.reservations {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReservations) Update(ctx context.Context, r *model.Reservation) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[r.ID]; !ok {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, r.ID)
	}
	m.reservations[r.ID] = *r
	return nil
}

func (m *memReservations) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[id]; !ok {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	delete(m.reservations, id)
	return nil
}

func (m *memReservations) Put(ctx context.Context, r *model.Reservation) error {
	if r.ID == "" {
		return fmt.Errorf("%w: put requires an id", ErrValidation)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[r.ID] = *r
	return nil
}
