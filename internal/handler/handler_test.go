package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelio/hotel-reservation/internal/cascade"
	"github.com/hotelio/hotel-reservation/internal/engine"
	"github.com/hotelio/hotel-reservation/internal/handler"
	"github.com/hotelio/hotel-reservation/internal/model"
	"github.com/hotelio/hotel-reservation/internal/queue"
	"github.com/hotelio/hotel-reservation/internal/router"
	"github.com/hotelio/hotel-reservation/internal/store"
)

// app bundles a full in-memory application for handler tests.
type app struct {
	echo  *echo.Echo
	store *store.Store
}

func newApp(t *testing.T) *app {
	t.Helper()
	st := store.NewMemory()
	eng := engine.New(st, nil)
	csc := cascade.New(st, eng, nil)
	h := handler.New(st, eng, csc, queue.Nop{})

	e := echo.New()
	router.RegisterRoutes(e, h, nil)
	return &app{echo: e, store: st}
}

// do performs a request against the app and decodes the JSON body
// into out when out is non-nil.
func (a *app) do(t *testing.T, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func (a *app) createClient(t *testing.T, email string) model.Client {
	t.Helper()
	var c model.Client
	rec := a.do(t, http.MethodPost, "/v1/clients", map[string]string{
		"name": "Jean", "surname": "Valjean", "address": "Montreuil",
		"email": email, "phone": "0600000000",
	}, &c)
	require.Equal(t, http.StatusCreated, rec.Code)
	return c
}

func (a *app) createRoom(t *testing.T, numero string) model.Room {
	t.Helper()
	var r model.Room
	rec := a.do(t, http.MethodPost, "/v1/rooms", map[string]any{
		"numero": numero, "type": "double", "price": 120.0,
	}, &r)
	require.Equal(t, http.StatusCreated, rec.Code)
	return r
}

func (a *app) createReservation(t *testing.T, clientID, roomID string) model.Reservation {
	t.Helper()
	var res model.Reservation
	rec := a.do(t, http.MethodPost, "/v1/reservations", map[string]string{
		"client": clientID, "room": roomID,
		"dateStart": "2026-09-01", "dateEnd": "2026-09-05",
	}, &res)
	require.Equal(t, http.StatusCreated, rec.Code)
	return res
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	rec := a.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientLifecycle(t *testing.T) {
	a := newApp(t)

	c := a.createClient(t, "valjean@example.com")
	require.NotEmpty(t, c.ID)

	var got model.Client
	rec := a.do(t, http.MethodGet, "/v1/clients/"+c.ID, nil, &got)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Valjean", got.Surname)

	rec = a.do(t, http.MethodPut, "/v1/clients/"+c.ID, map[string]string{
		"name": "Jean", "surname": "Madeleine", "address": "Montreuil-sur-Mer",
		"email": "valjean@example.com", "phone": "0600000000",
	}, &got)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Madeleine", got.Surname)

	var list []model.Client
	rec = a.do(t, http.MethodGet, "/v1/clients", nil, &list)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list, 1)

	rec = a.do(t, http.MethodDelete, "/v1/clients/"+c.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodGet, "/v1/clients/"+c.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateClientValidationAndDuplicate(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, http.MethodPost, "/v1/clients", map[string]string{"name": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	a.createClient(t, "dup@example.com")
	rec = a.do(t, http.MethodPost, "/v1/clients", map[string]string{
		"name": "Jean", "surname": "Valjean", "address": "Montreuil",
		"email": "dup@example.com", "phone": "0600000000",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReserveConflictOverHTTP(t *testing.T) {
	a := newApp(t)
	c := a.createClient(t, "guest@example.com")
	r := a.createRoom(t, "101")

	a.createReservation(t, c.ID, r.ID)

	rec := a.do(t, http.MethodPost, "/v1/reservations", map[string]string{
		"client": c.ID, "room": r.ID,
		"dateStart": "2026-10-01", "dateEnd": "2026-10-05",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReservationBadDates(t *testing.T) {
	a := newApp(t)
	c := a.createClient(t, "guest@example.com")
	r := a.createRoom(t, "101")

	rec := a.do(t, http.MethodPost, "/v1/reservations", map[string]string{
		"client": c.ID, "room": r.ID,
		"dateStart": "not-a-date", "dateEnd": "2026-09-05",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/v1/reservations", map[string]string{
		"client": c.ID, "room": r.ID,
		"dateStart": "2026-09-05", "dateEnd": "2026-09-01",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteClientCascadesOverHTTP(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	c := a.createClient(t, "guest@example.com")
	r := a.createRoom(t, "101")
	res := a.createReservation(t, c.ID, r.ID)

	rec := a.do(t, http.MethodDelete, "/v1/clients/"+c.ID, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := a.store.Reservations.Get(ctx, res.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	room, err := a.store.Rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomFree, room.Status)
}

func TestUpdateReservationOverHTTP(t *testing.T) {
	a := newApp(t)
	c := a.createClient(t, "guest@example.com")
	r1 := a.createRoom(t, "101")
	r2 := a.createRoom(t, "102")
	res := a.createReservation(t, c.ID, r1.ID)

	var updated model.Reservation
	rec := a.do(t, http.MethodPut, "/v1/reservations/"+res.ID, map[string]string{
		"room": r2.ID,
	}, &updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, r2.ID, updated.RoomID)

	var room model.Room
	rec = a.do(t, http.MethodGet, "/v1/rooms/"+r1.ID, nil, &room)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoomFree, room.Status)
}

func TestRoomUpdateKeepsStatus(t *testing.T) {
	a := newApp(t)
	c := a.createClient(t, "guest@example.com")
	r := a.createRoom(t, "101")
	a.createReservation(t, c.ID, r.ID)

	var updated model.Room
	rec := a.do(t, http.MethodPut, "/v1/rooms/"+r.ID, map[string]any{
		"numero": "101", "type": "double", "price": 150.0, "description": "renovated",
	}, &updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoomReserved, updated.Status)
	assert.Equal(t, 150.0, updated.Price)
}

func TestNotFoundMapping(t *testing.T) {
	a := newApp(t)
	for _, path := range []string{"/v1/clients/nope", "/v1/rooms/nope", "/v1/reservations/nope"} {
		rec := a.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		rec = a.do(t, http.MethodDelete, path, nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func rpcCall(t *testing.T, a *app, method string, params any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	var out map[string]json.RawMessage
	rec := a.do(t, http.MethodPost, "/rpc", map[string]any{
		"method": method, "params": json.RawMessage(raw),
	}, &out)
	return rec, out
}

func TestRPCDispatch(t *testing.T) {
	a := newApp(t)

	rec, out := rpcCall(t, a, "client.create", map[string]string{
		"name": "Jean", "surname": "Valjean", "address": "Montreuil",
		"email": "rpc@example.com", "phone": "0600000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created model.Client
	require.NoError(t, json.Unmarshal(out["result"], &created))
	require.NotEmpty(t, created.ID)

	rec, out = rpcCall(t, a, "client.get", map[string]string{"id": created.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Client
	require.NoError(t, json.Unmarshal(out["result"], &got))
	assert.Equal(t, created.Email, got.Email)

	rec, _ = rpcCall(t, a, "client.get", map[string]string{"id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = rpcCall(t, a, "client.teleport", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRPCReservationFlow(t *testing.T) {
	a := newApp(t)
	c := a.createClient(t, "rpcflow@example.com")
	r := a.createRoom(t, "700")

	rec, out := rpcCall(t, a, "reservation.create", map[string]string{
		"client": c.ID, "room": r.ID,
		"dateStart": "2026-09-01", "dateEnd": "2026-09-05",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var res model.Reservation
	require.NoError(t, json.Unmarshal(out["result"], &res))
	require.NotEmpty(t, res.ID)

	// The same room over RPC and REST shares one availability state.
	httpRec := a.do(t, http.MethodPost, "/v1/reservations", map[string]string{
		"client": c.ID, "room": r.ID,
		"dateStart": "2026-10-01", "dateEnd": "2026-10-05",
	}, nil)
	assert.Equal(t, http.StatusConflict, httpRec.Code)

	rec, _ = rpcCall(t, a, "reservation.delete", map[string]string{"id": res.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	var room model.Room
	httpRec = a.do(t, http.MethodGet, fmt.Sprintf("/v1/rooms/%s", r.ID), nil, &room)
	require.Equal(t, http.StatusOK, httpRec.Code)
	assert.Equal(t, model.RoomFree, room.Status)
}
