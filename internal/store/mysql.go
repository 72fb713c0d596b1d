package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/hotelio/hotel-reservation/internal/model"
)

// NewMySQL returns a Store backed by the given MySQL handle.  The
// handle is owned by the caller: opened at startup, closed at
// shutdown and shared by all components.
func NewMySQL(db *sql.DB) *Store {
	return &Store{
		Clients:      &sqlClients{db: db},
		Rooms:        &sqlRooms{db: db},
		Reservations: &sqlReservations{db: db},
	}
}

// EnsureSchema creates the tables used by the MySQL store when they
// do not exist yet.  Identifiers are UUID strings assigned in Go so
// that events can carry the primary-assigned identity.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id       CHAR(36) PRIMARY KEY,
			name     VARCHAR(80)  NOT NULL,
			surname  VARCHAR(80)  NOT NULL,
			address  VARCHAR(255) NOT NULL,
			email    VARCHAR(255) NOT NULL,
			phone    VARCHAR(40)  NOT NULL,
			UNIQUE KEY uq_clients_email (email)
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id          CHAR(36) PRIMARY KEY,
			numero      VARCHAR(20) NOT NULL,
			type        VARCHAR(20) NOT NULL,
			status      VARCHAR(20) NOT NULL DEFAULT 'free',
			price       DOUBLE      NOT NULL,
			description TEXT        NOT NULL,
			UNIQUE KEY uq_rooms_numero (numero)
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id         CHAR(36) PRIMARY KEY,
			client_id  CHAR(36) NOT NULL,
			room_id    CHAR(36) NOT NULL,
			date_start DATETIME NOT NULL,
			date_end   DATETIME NOT NULL,
			KEY idx_reservations_client (client_id),
			KEY idx_reservations_room (room_id)
		)`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// wrapSQL translates driver-level failures into the store taxonomy.
func wrapSQL(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return fmt.Errorf("%w: %s", ErrDuplicate, entity)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

type sqlClients struct {
	db *sql.DB
}

func (s *sqlClients) Create(ctx context.Context, c *model.Client) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	c.ID = uuid.New().String()
	const q = `INSERT INTO clients (id, name, surname, address, email, phone) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, c.ID, c.Name, c.Surname, c.Address, c.Email, c.Phone)
	return wrapSQL(err, "client", c.ID)
}

func (s *sqlClients) Get(ctx context.Context, id string) (*model.Client, error) {
	const q = `SELECT id, name, surname, address, email, phone FROM clients WHERE id = ?`
	var c model.Client
	err := s.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Surname, &c.Address, &c.Email, &c.Phone)
	if err != nil {
		return nil, wrapSQL(err, "client", id)
	}
	return &c, nil
}

func (s *sqlClients) GetByEmail(ctx context.Context, email string) (*model.Client, error) {
	const q = `SELECT id, name, surname, address, email, phone FROM clients WHERE email = ?`
	var c model.Client
	err := s.db.QueryRowContext(ctx, q, email).Scan(&c.ID, &c.Name, &c.Surname, &c.Address, &c.Email, &c.Phone)
	if err != nil {
		return nil, wrapSQL(err, "client", email)
	}
	return &c, nil
}

func (s *sqlClients) List(ctx context.Context) ([]model.Client, error) {
	const q = `SELECT id, name, surname, address, email, phone FROM clients ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, wrapSQL(err, "client", "")
	}
	defer rows.Close()
	out := make([]model.Client, 0)
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Surname, &c.Address, &c.Email, &c.Phone); err != nil {
			return nil, wrapSQL(err, "client", "")
		}
		out = append(out, c)
	}
	return out, wrapSQL(rows.Err(), "client", "")
}

func (s *sqlClients) Update(ctx context.Context, c *model.Client) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	const q = `UPDATE clients SET name = ?, surname = ?, address = ?, email = ?, phone = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, c.Name, c.Surname, c.Address, c.Email, c.Phone, c.ID)
	if err != nil {
		return wrapSQL(err, "client", c.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.Get(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqlClients) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM clients WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return wrapSQL(err, "client", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: client %s", ErrNotFound, id)
	}
	return nil
}

func (s *sqlClients) Put(ctx context.Context, c *model.Client) error {
	if c.ID == "" {
		return fmt.Errorf("%w: put requires an id", ErrValidation)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	const q = `INSERT INTO clients (id, name, surname, address, email, phone) VALUES (?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE name = VALUES(name), surname = VALUES(surname),
	           address = VALUES(address), email = VALUES(email), phone = VALUES(phone)`
	_, err := s.db.ExecContext(ctx, q, c.ID, c.Name, c.Surname, c.Address, c.Email, c.Phone)
	return wrapSQL(err, "client", c.ID)
}

type sqlRooms struct {
	db *sql.DB
}

func (s *sqlRooms) Create(ctx context.Context, r *model.Room) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if r.Status == "" {
		r.Status = model.RoomFree
	}
	r.ID = uuid.New().String()
	const q = `INSERT INTO rooms (id, numero, type, status, price, description) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, r.ID, r.Numero, r.Type, r.Status, r.Price, r.Description)
	return wrapSQL(err, "room", r.ID)
}

func (s *sqlRooms) Get(ctx context.Context, id string) (*model.Room, error) {
	const q = `SELECT id, numero, type, status, price, description FROM rooms WHERE id = ?`
	var r model.Room
	err := s.db.QueryRowContext(ctx, q, id).Scan(&r.ID, &r.Numero, &r.Type, &r.Status, &r.Price, &r.Description)
	if err != nil {
		return nil, wrapSQL(err, "room", id)
	}
	return &r, nil
}

func (s *sqlRooms) GetByNumero(ctx context.Context, numero string) (*model.Room, error) {
	const q = `SELECT id, numero, type, status, price, description FROM rooms WHERE numero = ?`
	var r model.Room
	err := s.db.QueryRowContext(ctx, q, numero).Scan(&r.ID, &r.Numero, &r.Type, &r.Status, &r.Price, &r.Description)
	if err != nil {
		return nil, wrapSQL(err, "room", numero)
	}
	return &r, nil
}

func (s *sqlRooms) List(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT id, numero, type, status, price, description FROM rooms ORDER BY numero`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, wrapSQL(err, "room", "")
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.ID, &r.Numero, &r.Type, &r.Status, &r.Price, &r.Description); err != nil {
			return nil, wrapSQL(err, "room", "")
		}
		out = append(out, r)
	}
	return out, wrapSQL(rows.Err(), "room", "")
}

func (s *sqlRooms) Update(ctx context.Context, r *model.Room) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	const q = `UPDATE rooms SET numero = ?, type = ?, status = ?, price = ?, description = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, r.Numero, r.Type, r.Status, r.Price, r.Description, r.ID)
	if err != nil {
		return wrapSQL(err, "room", r.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.Get(ctx, r.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqlRooms) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM rooms WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return wrapSQL(err, "room", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	return nil
}

func (s *sqlRooms) Put(ctx context.Context, r *model.Room) error {
	if r.ID == "" {
		return fmt.Errorf("%w: put requires an id", ErrValidation)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if r.Status == "" {
		r.Status = model.RoomFree
	}
	const q = `INSERT INTO rooms (id, numero, type, status, price, description) VALUES (?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE numero = VALUES(numero), type = VALUES(type),
	           status = VALUES(status), price = VALUES(price), description = VALUES(description)`
	_, err := s.db.ExecContext(ctx, q, r.ID, r.Numero, r.Type, r.Status, r.Price, r.Description)
	return wrapSQL(err, "room", r.ID)
}

// CompareAndSetStatus is the persistence-native conditional update
// the engine serializes room transitions on.  Zero rows affected
// with an existing room means the precondition failed.
func (s *sqlRooms) CompareAndSetStatus(ctx context.Context, id string, from, to model.RoomStatus) (bool, error) {
	const q = `UPDATE rooms SET status = ? WHERE id = ? AND status = ?`
	res, err := s.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return false, wrapSQL(err, "room", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapSQL(err, "room", id)
	}
	if n > 0 {
		return true, nil
	}
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *sqlRooms) SetStatus(ctx context.Context, id string, status model.RoomStatus) error {
	const q = `UPDATE rooms SET status = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return wrapSQL(err, "room", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

type sqlReservations struct {
	db *sql.DB
}

func (s *sqlReservations) Create(ctx context.Context, r *model.Reservation) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	r.ID = uuid.New().String()
	const q = `INSERT INTO reservations (id, client_id, room_id, date_start, date_end) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, r.ID, r.ClientID, r.RoomID, r.DateStart.UTC(), r.DateEnd.UTC())
	return wrapSQL(err, "reservation", r.ID)
}

func (s *sqlReservations) Get(ctx context.Context, id string) (*model.Reservation, error) {
	const q = `SELECT id, client_id, room_id, date_start, date_end FROM reservations WHERE id = ?`
	var r model.Reservation
	err := s.db.QueryRowContext(ctx, q, id).Scan(&r.ID, &r.ClientID, &r.RoomID, &r.DateStart, &r.DateEnd)
	if err != nil {
		return nil, wrapSQL(err, "reservation", id)
	}
	return &r, nil
}

func (s *sqlReservations) List(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT id, client_id, room_id, date_start, date_end FROM reservations ORDER BY id`
	return s.queryList(ctx, q)
}

func (s *sqlReservations) ListByClient(ctx context.Context, clientID string) ([]model.Reservation, error) {
	const q = `SELECT id, client_id, room_id, date_start, date_end FROM reservations WHERE client_id = ?`
	return s.queryList(ctx, q, clientID)
}

func (s *sqlReservations) ListByRoom(ctx context.Context, roomID string) ([]model.Reservation, error) {
	const q = `SELECT id, client_id, room_id, date_start, date_end FROM reservations WHERE room_id = ?`
	return s.queryList(ctx, q, roomID)
}

func (s *sqlReservations) queryList(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapSQL(err, "reservation", "")
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var r model.Reservation
		if err := rows.Scan(&r.ID, &r.ClientID, &r.RoomID, &r.DateStart, &r.DateEnd); err != nil {
			return nil, wrapSQL(err, "reservation", "")
		}
		out = append(out, r)
	}
	return out, wrapSQL(rows.Err(), "reservation", "")
}

func (s *sqlReservations) Update(ctx context.Context, r *model.Reservation) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	const q = `UPDATE reservations SET client_id = ?, room_id = ?, date_start = ?, date_end = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, r.ClientID, r.RoomID, r.DateStart.UTC(), r.DateEnd.UTC(), r.ID)
	if err != nil {
		return wrapSQL(err, "reservation", r.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.Get(ctx, r.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqlReservations) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM reservations WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return wrapSQL(err, "reservation", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	return nil
}

func (s *sqlReservations) Put(ctx context.Context, r *model.Reservation) error {
	if r.ID == "" {
		return fmt.Errorf("%w: put requires an id", ErrValidation)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	const q = `INSERT INTO reservations (id, client_id, room_id, date_start, date_end) VALUES (?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE client_id = VALUES(client_id), room_id = VALUES(room_id),
	           date_start = VALUES(date_start), date_end = VALUES(date_end)`
	_, err := s.db.ExecContext(ctx, q, r.ID, r.ClientID, r.RoomID, r.DateStart.UTC(), r.DateEnd.UTC())
	return wrapSQL(err, "reservation", r.ID)
}
