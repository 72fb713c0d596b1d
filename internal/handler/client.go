package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hotelio/hotel-reservation/internal/model"
	"github.com/hotelio/hotel-reservation/internal/queue"
)

// clientBody is the request payload for client create and update.
type clientBody struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// CreateClient handles POST /v1/clients.
func (h *Handler) CreateClient(c echo.Context) error {
	var body clientBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	client := &model.Client{
		Name:    body.Name,
		Surname: body.Surname,
		Address: body.Address,
		Email:   body.Email,
		Phone:   body.Phone,
	}
	ctx := c.Request().Context()
	if err := h.Store.Clients.Create(ctx, client); err != nil {
		return fail(c, err)
	}
	h.publish(ctx, queue.EntityClient, queue.EventCreation, client)
	return c.JSON(http.StatusCreated, client)
}

// GetClient handles GET /v1/clients/:id.
func (h *Handler) GetClient(c echo.Context) error {
	ctx := c.Request().Context()
	client, err := h.Store.Clients.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	h.publish(ctx, queue.EntityClient, queue.EventRecuperation, queue.Lookup{ID: client.ID})
	return c.JSON(http.StatusOK, client)
}

// ListClients handles GET /v1/clients.
func (h *Handler) ListClients(c echo.Context) error {
	ctx := c.Request().Context()
	clients, err := h.Store.Clients.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	h.publish(ctx, queue.EntityClient, queue.EventRecuperationAll, struct{}{})
	return c.JSON(http.StatusOK, clients)
}

// UpdateClient handles PUT /v1/clients/:id.
func (h *Handler) UpdateClient(c echo.Context) error {
	var body clientBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	client := &model.Client{
		ID:      c.Param("id"),
		Name:    body.Name,
		Surname: body.Surname,
		Address: body.Address,
		Email:   body.Email,
		Phone:   body.Phone,
	}
	ctx := c.Request().Context()
	if err := h.Store.Clients.Update(ctx, client); err != nil {
		return fail(c, err)
	}
	h.publish(ctx, queue.EntityClient, queue.EventModification, client)
	return c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /v1/clients/:id.  Deletion goes
// through the cascade coordinator, which resolves every reservation
// referencing the client and frees their rooms first.
func (h *Handler) DeleteClient(c echo.Context) error {
	if err := h.Cascade.DeleteClient(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
