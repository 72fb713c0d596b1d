package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hotelio/hotel-reservation/internal/engine"
	"github.com/hotelio/hotel-reservation/internal/queue"
)

// reservationBody is the request payload for reservation create and
// update.  Dates are strings so both YYYY-MM-DD and RFC 3339 are
// accepted.
type reservationBody struct {
	ClientID  string `json:"client"`
	RoomID    string `json:"room"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
}

// CreateReservation handles POST /v1/reservations.  It routes
// through the availability engine: the room must exist and be free,
// and the transition is serialized per room.
func (h *Handler) CreateReservation(c echo.Context) error {
	var body reservationBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, err := parseDate(body.DateStart)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	end, err := parseDate(body.DateEnd)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	res, err := h.Engine.Reserve(c.Request().Context(), body.ClientID, body.RoomID, start, end)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// GetReservation handles GET /v1/reservations/:id.
func (h *Handler) GetReservation(c echo.Context) error {
	ctx := c.Request().Context()
	res, err := h.Store.Reservations.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	h.publish(ctx, queue.EntityReservation, queue.EventRecuperation, queue.Lookup{ID: res.ID})
	return c.JSON(http.StatusOK, res)
}

// ListReservations handles GET /v1/reservations.
func (h *Handler) ListReservations(c echo.Context) error {
	ctx := c.Request().Context()
	reservations, err := h.Store.Reservations.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	h.publish(ctx, queue.EntityReservation, queue.EventRecuperationAll, struct{}{})
	return c.JSON(http.StatusOK, reservations)
}

// UpdateReservation handles PUT /v1/reservations/:id.  Omitted
// fields keep their current values.  A room change re-validates the
// new room's availability exactly as creation does.
func (h *Handler) UpdateReservation(c echo.Context) error {
	var body struct {
		ClientID  *string `json:"client"`
		RoomID    *string `json:"room"`
		DateStart *string `json:"dateStart"`
		DateEnd   *string `json:"dateEnd"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	patch := engine.Amend{ClientID: body.ClientID, RoomID: body.RoomID}
	if body.DateStart != nil {
		t, err := parseDate(*body.DateStart)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		patch.DateStart = &t
	}
	if body.DateEnd != nil {
		t, err := parseDate(*body.DateEnd)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		patch.DateEnd = &t
	}
	res, err := h.Engine.AmendReservation(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// DeleteReservation handles DELETE /v1/reservations/:id.  The
// cascade coordinator releases the reservation and frees its room.
func (h *Handler) DeleteReservation(c echo.Context) error {
	if err := h.Cascade.DeleteReservation(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
