package model

import (
	"fmt"
	"strings"
)

// RoomType enumerates the kinds of rooms the hotel offers.
type RoomType string

const (
	RoomDouble     RoomType = "double"
	RoomTriple     RoomType = "triple"
	RoomIndividual RoomType = "individual"
	RoomFamilial   RoomType = "familial"
	RoomQuadruple  RoomType = "quadruple"
)

// Valid reports whether t is a member of the room type enumeration.
func (t RoomType) Valid() bool {
	switch t {
	case RoomDouble, RoomTriple, RoomIndividual, RoomFamilial, RoomQuadruple:
		return true
	}
	return false
}

// RoomStatus is the availability flag of a room.  It is derived
// state: a room is reserved iff a live reservation references it,
// and free otherwise.  Only the availability engine and the cascade
// coordinator transition it.
type RoomStatus string

const (
	RoomFree     RoomStatus = "free"
	RoomReserved RoomStatus = "reserved"
)

// Valid reports whether s is a member of the status enumeration.
func (s RoomStatus) Valid() bool {
	return s == RoomFree || s == RoomReserved
}

// Room describes a bookable hotel room.
//
// Fields:
//  ID          – opaque identifier assigned by the store at creation.
//  Numero      – room number, unique across rooms.
//  Type        – one of the RoomType enumeration.
//  Status      – free or reserved (derived from live reservations).
//  Price       – nightly price.
//  Description – free-form description.
type Room struct {
	ID          string     `json:"id"`          // rooms.id
	Numero      string     `json:"numero"`      // rooms.numero
	Type        RoomType   `json:"type"`        // rooms.type
	Status      RoomStatus `json:"status"`      // rooms.status
	Price       float64    `json:"price"`       // rooms.price
	Description string     `json:"description"` // rooms.description
}

// Validate checks required fields and enumeration membership.  An
// empty status is allowed; the store defaults it to free.
func (r *Room) Validate() error {
	if strings.TrimSpace(r.Numero) == "" {
		return fmt.Errorf("numero is required")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("type %q is not a valid room type", r.Type)
	}
	if r.Status != "" && !r.Status.Valid() {
		return fmt.Errorf("status %q is not a valid room status", r.Status)
	}
	if r.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}
