// Package store defines the persistence capability consumed by the
// availability engine, the cascade coordinator and the front door.
// Sentinel errors below form the error taxonomy shared by every
// implementation; higher layers compare with errors.Is and translate
// them into transport-level responses.
package store

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a conditional room transition loses
// the race, i.e. the room was not free at reservation time.
var ErrConflict = errors.New("conflict")

// ErrInvalidRange is returned when a reservation's end date precedes
// its start date.
var ErrInvalidRange = errors.New("invalid date range")

// ErrValidation is returned on schema violations such as missing
// required fields or unknown enumeration values.
var ErrValidation = errors.New("validation failed")

// ErrDuplicate is returned when a unique key (client email, room
// numero) is already taken.
var ErrDuplicate = errors.New("duplicate key")

// ErrUnavailable is returned when the underlying persistence
// collaborator cannot be reached.
var ErrUnavailable = errors.New("store unavailable")
