// Package router wires the HTTP surface onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hotelio/hotel-reservation/internal/handler"
)

// RegisterRoutes registers the health check, the REST entity routes
// and the RPC endpoint.  cacheMW, when non-nil, is applied to the
// read-only GET routes; mutations are never cached.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, cacheMW echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	g := e.Group("/v1")
	read := []echo.MiddlewareFunc{}
	if cacheMW != nil {
		read = append(read, cacheMW)
	}

	g.POST("/clients", h.CreateClient)
	g.GET("/clients", h.ListClients, read...)
	g.GET("/clients/:id", h.GetClient, read...)
	g.PUT("/clients/:id", h.UpdateClient)
	g.DELETE("/clients/:id", h.DeleteClient)

	g.POST("/rooms", h.CreateRoom)
	g.GET("/rooms", h.ListRooms, read...)
	g.GET("/rooms/:id", h.GetRoom, read...)
	g.PUT("/rooms/:id", h.UpdateRoom)
	g.DELETE("/rooms/:id", h.DeleteRoom)

	g.POST("/reservations", h.CreateReservation)
	g.GET("/reservations", h.ListReservations)
	g.GET("/reservations/:id", h.GetReservation)
	g.PUT("/reservations/:id", h.UpdateReservation)
	g.DELETE("/reservations/:id", h.DeleteReservation)

	// RPC adapter over the same core API.
	e.POST("/rpc", h.RPC)
}
