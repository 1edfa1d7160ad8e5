// Package router wires HTTP routes onto an echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/restaurant-reservation/internal/handler"
)

// RegisterRoutes registers the operational endpoints: the health check and
// the Prometheus scrape endpoint.  A nil gatherer means the default
// registry.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler, gatherer prometheus.Gatherer) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.RouteNotFound("/*", NotFound)
}

// RegisterReservations registers the reservation lifecycle endpoints.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/reservations", h.List, mw...)
	e.POST("/reservations", h.Create, mw...)
	e.GET("/reservations/:reservation_id", h.Get, mw...)
	e.PUT("/reservations/:reservation_id", h.Update, mw...)
	e.PUT("/reservations/:reservation_id/status", h.UpdateStatus, mw...)
}

// RegisterTables registers the table and seating endpoints.
func RegisterTables(e *echo.Echo, h *handler.TableHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/tables", h.List, mw...)
	e.POST("/tables", h.Create, mw...)
	e.GET("/tables/:table_id", h.Get, mw...)
	e.PUT("/tables/:table_id/seat", h.Seat, mw...)
	e.DELETE("/tables/:table_id/seat", h.Finish, mw...)
}

// NotFound answers unknown paths with the standard error body.
func NotFound(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotFound, "Path not found: "+c.Request().URL.Path)
}
