package model

import (
	"fmt"
	"time"
)

// Reservation binds a client to a room for a date range.  A
// reservation does not own its client or room; it only holds their
// identifiers.  Its existence is the sole source of truth driving
// the referenced room's availability flag.
//
// Fields:
//  ID        – opaque identifier assigned by the store at creation.
//  ClientID  – client holding the reservation.
//  RoomID    – room being reserved.
//  DateStart – first night of the stay.
//  DateEnd   – last night of the stay, never before DateStart.
type Reservation struct {
	ID        string    `json:"id"`        // reservations.id
	ClientID  string    `json:"client"`    // reservations.client_id
	RoomID    string    `json:"room"`      // reservations.room_id
	DateStart time.Time `json:"dateStart"` // reservations.date_start
	DateEnd   time.Time `json:"dateEnd"`   // reservations.date_end
}

// Validate checks references and the date range.
func (r *Reservation) Validate() error {
	if r.ClientID == "" {
		return fmt.Errorf("client is required")
	}
	if r.RoomID == "" {
		return fmt.Errorf("room is required")
	}
	if r.DateStart.IsZero() || r.DateEnd.IsZero() {
		return fmt.Errorf("dateStart and dateEnd are required")
	}
	return nil
}
