package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hotelio/hotel-reservation/internal/engine"
	"github.com/hotelio/hotel-reservation/internal/model"
	"github.com/hotelio/hotel-reservation/internal/queue"
	"github.com/hotelio/hotel-reservation/internal/store"
)

// rpcRequest is the envelope accepted on POST /rpc.  Method is
// "<entity>.<operation>" with operations create, get, getAll,
// update and delete; params carries the operation arguments.
type rpcRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// RPC dispatches an RPC-style call onto the same core API the REST
// adapter uses.  It exists so callers of the historical per-entity
// RPC services keep a single-endpoint equivalent; no business logic
// is duplicated here.
func (h *Handler) RPC(c echo.Context) error {
	var req rpcRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	result, err := h.dispatch(c, req)
	if err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"result": result})
}

func (h *Handler) dispatch(c echo.Context, req rpcRequest) (any, error) {
	ctx := c.Request().Context()

	var byID struct {
		ID string `json:"id"`
	}
	switch req.Method {
	case "client.create", "client.update":
		var p struct {
			clientBody
			ID string `json:"id"`
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("%w: invalid params: %v", store.ErrValidation, err)
		}
		client := &model.Client{
			ID:      p.ID,
			Name:    p.Name,
			Surname: p.Surname,
			Address: p.Address,
			Email:   p.Email,
			Phone:   p.Phone,
		}
		if req.Method == "client.create" {
			if err := h.Store.Clients.Create(ctx, client); err != nil {
				return nil, err
			}
			h.publish(ctx, queue.EntityClient, queue.EventCreation, client)
		} else {
			if err := h.Store.Clients.Update(ctx, client); err != nil {
				return nil, err
			}
			h.publish(ctx, queue.EntityClient, queue.EventModification, client)
		}
		return client, nil
	case "client.get":
		if err := json.Unmarshal(req.Params, &byID); err != nil {
			return nil, fmt.Errorf("%w: invalid params: %v", store.ErrValidation, err)
		}
		client, err := h.Store.Clients.Get(ctx, byID.ID)
		if err != nil {
			return nil, err
		}
		h.publish(ctx, queue.EntityClient, queue.EventRecuperation, queue.Lookup{ID: client.ID})
		return client, nil
	case "client.getAll":
		clients, err := h.Store.Clients.List(ctx)
		if err != nil {
			return nil, err
		}
		h.publish(ctx, queue.EntityClient, queue.EventRecuperationAll, struct{}{})
		return clients, nil
	case "client.delete":
		if err := json.Unmarshal(req.Params, &byID); err != nil {
			return nil, fmt.Errorf("%w: invalid params: %v", store.ErrValidation, err)
		}
		return echo.Map{"deleted": byID.ID}, h.Cascade.DeleteClient(ctx, byID.ID)

	case "room.create", "room.update":
		var p struct {
			roomBody
			ID string `json:"id"`
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("%w: invalid params: %v", store.ErrValidation, err)
		}
		room := &model.Room{
			ID:          p.ID,
			Numero:      p.Numero,
			Type:        model.RoomType(p.Type),
			Status:      model.RoomStatus(p.Status),
			Price:       p.Price,
			Description: p.Description,
		}
		if req.Method == "room.create" {
			if err := h.Store.Rooms.Create(ctx, room); err != nil {
				return nil, err
			}
			h.publish(ctx, queue.EntityRoom, queue.EventCreation, room)
		} else {
			if err := h.Store.Rooms.Update(ctx, room); err != nil {
				return nil, err
			}
			h.publish(ctx, queue.EntityRoom, queue.EventModification, room)
		}
		return room, nil
	case "room.get":
		if err := json.Unmarshal(req.Params, &byID); err != nil {
			return nil, fmt.Errorf("%w: invalid params: %v", store.ErrValidation, err)
		}
		room, err := h.Store.Rooms.Get(ctx, byID.ID)
		if err != nil {
			return nil, err
		}
		h.publish(ctx, queue.EntityRoom, queue.EventRecuperation, queue.Lookup{ID: room.ID})
		return room, nil
	case "room.getAll":
		rooms, err := h.Store.Rooms.List(ctx)
		if err != nil {
			return nil, err
		}
		h.publish(ctx, queue.EntityRoom, queue.EventRecuperationAll, struct{}{})
		return rooms, nil
	case "room.delete":
		if err := json.Unmarshal(req.Params, &byID); err != nil {
			return nil, fmt.Errorf("%w: invalid params: %v", store.ErrValidation, err)
		}
		return echo.Map{"deleted": byID.ID}, h.Cascade.DeleteRoom(ctx, byID.ID)

	case "reservation.create":
		var p reservationBody
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("%w: invalid params: %v", store.ErrValidation, err)
		}
		start, err := parseDate(p.DateStart)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(p.DateEnd)
		if err != nil {
			return nil, err
		}
		return h.Engine.Reserve(ctx, p.ClientID, p.RoomID, start, end)
	case "reservation.update":
		var p struct {
			ID        string  `json:"id"`
			ClientID  *string `json:"client"`
			RoomID    *string `json:"room"`
			DateStart *string `json:"dateStart"`
			DateEnd   *string `json:"dateEnd"`
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("%w: invalid params: %v", store.ErrValidation, err)
		}
		patch := engine.Amend{ClientID: p.ClientID, RoomID: p.RoomID}
		if p.DateStart != nil {
			t, err := parseDate(*p.DateStart)
			if err != nil {
				return nil, err
			}
			patch.DateStart = &t
		}
		if p.DateEnd != nil {
			t, err := parseDate(*p.DateEnd)
			if err != nil {
				return nil, err
			}
			patch.DateEnd = &t
		}
		return h.Engine.AmendReservation(ctx, p.ID, patch)
	case "reservation.get":
		if err := json.Unmarshal(req.Params, &byID); err != nil {
			return nil, fmt.Errorf("%w: invalid params: %v", store.ErrValidation, err)
		}
		res, err := h.Store.Reservations.Get(ctx, byID.ID)
		if err != nil {
			return nil, err
		}
		h.publish(ctx, queue.EntityReservation, queue.EventRecuperation, queue.Lookup{ID: res.ID})
		return res, nil
	case "reservation.getAll":
		reservations, err := h.Store.Reservations.List(ctx)
		if err != nil {
			return nil, err
		}
		h.publish(ctx, queue.EntityReservation, queue.EventRecuperationAll, struct{}{})
		return reservations, nil
	case "reservation.delete":
		if err := json.Unmarshal(req.Params, &byID); err != nil {
			return nil, fmt.Errorf("%w: invalid params: %v", store.ErrValidation, err)
		}
		return echo.Map{"deleted": byID.ID}, h.Cascade.DeleteReservation(ctx, byID.ID)
	}
	return nil, fmt.Errorf("%w: unknown method %q", store.ErrValidation, req.Method)
}
