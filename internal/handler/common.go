// Package handler defines the thin front door: REST and RPC
// adapters that translate external calls into entity store,
// availability engine and cascade coordinator calls.  No business
// logic lives here; handlers bind payloads, dispatch and map the
// store error taxonomy onto transport status codes.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hotelio/hotel-reservation/internal/cascade"
	"github.com/hotelio/hotel-reservation/internal/engine"
	"github.com/hotelio/hotel-reservation/internal/queue"
	"github.com/hotelio/hotel-reservation/internal/store"
)

// Handler bundles the core components every adapter dispatches to.
type Handler struct {
	Store   *store.Store
	Engine  *engine.Engine
	Cascade *cascade.Coordinator
	Events  queue.Publisher
}

// New constructs a Handler and panics if a core dependency is nil.
func New(st *store.Store, eng *engine.Engine, csc *cascade.Coordinator, pub queue.Publisher) *Handler {
	if st == nil || eng == nil || csc == nil {
		panic("nil dependency passed to handler.New")
	}
	if pub == nil {
		pub = queue.Nop{}
	}
	return &Handler{Store: st, Engine: eng, Cascade: csc, Events: pub}
}

// publish announces a mutation or read on the relay, fire-and-forget.
func (h *Handler) publish(ctx context.Context, entity string, t queue.EventType, payload any) {
	ev, err := queue.New(entity, t, payload)
	if err != nil {
		log.Printf("handler: marshal %s %s event: %v", entity, t, err)
		return
	}
	_ = h.Events.Publish(ctx, queue.TopicFor(entity), ev)
}

// statusFor maps the store error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidRange), errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes the error as a JSON body with the mapped status.
func fail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
}

// parseDate accepts dates as 2006-01-02 or RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD or RFC3339", store.ErrValidation, s)
}
