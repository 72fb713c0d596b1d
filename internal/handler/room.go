package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hotelio/hotel-reservation/internal/model"
	"github.com/hotelio/hotel-reservation/internal/queue"
)

// roomBody is the request payload for room create and update.  The
// status field is accepted on create for parity with the RPC
// surface but defaults to free when omitted.
type roomBody struct {
	Numero      string  `json:"numero"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// CreateRoom handles POST /v1/rooms.
func (h *Handler) CreateRoom(c echo.Context) error {
	var body roomBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	room := &model.Room{
		Numero:      body.Numero,
		Type:        model.RoomType(body.Type),
		Status:      model.RoomStatus(body.Status),
		Price:       body.Price,
		Description: body.Description,
	}
	ctx := c.Request().Context()
	if err := h.Store.Rooms.Create(ctx, room); err != nil {
		return fail(c, err)
	}
	h.publish(ctx, queue.EntityRoom, queue.EventCreation, room)
	return c.JSON(http.StatusCreated, room)
}

// GetRoom handles GET /v1/rooms/:id.
func (h *Handler) GetRoom(c echo.Context) error {
	ctx := c.Request().Context()
	room, err := h.Store.Rooms.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	h.publish(ctx, queue.EntityRoom, queue.EventRecuperation, queue.Lookup{ID: room.ID})
	return c.JSON(http.StatusOK, room)
}

// ListRooms handles GET /v1/rooms.
func (h *Handler) ListRooms(c echo.Context) error {
	ctx := c.Request().Context()
	rooms, err := h.Store.Rooms.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	h.publish(ctx, queue.EntityRoom, queue.EventRecuperationAll, struct{}{})
	return c.JSON(http.StatusOK, rooms)
}

// UpdateRoom handles PUT /v1/rooms/:id.  The availability flag is
// derived state owned by the engine: updates keep the stored status
// unless the caller explicitly provides one, which covers manual
// repair but never happens on the normal paths.
func (h *Handler) UpdateRoom(c echo.Context) error {
	var body roomBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	room, err := h.Store.Rooms.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	room.Numero = body.Numero
	room.Type = model.RoomType(body.Type)
	room.Price = body.Price
	room.Description = body.Description
	if body.Status != "" {
		room.Status = model.RoomStatus(body.Status)
	}
	if err := h.Store.Rooms.Update(ctx, room); err != nil {
		return fail(c, err)
	}
	h.publish(ctx, queue.EntityRoom, queue.EventModification, room)
	return c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /v1/rooms/:id.  Deletion goes through
// the cascade coordinator, which removes dependent reservations;
// no other room's status is altered.
func (h *Handler) DeleteRoom(c echo.Context) error {
	if err := h.Cascade.DeleteRoom(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
