package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/apperr"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// TableHandler exposes the table endpoints.
type TableHandler struct {
	Tables *service.TableService
}

func NewTableHandler(svc *service.TableService) *TableHandler {
	if svc == nil {
		panic("nil service passed to NewTableHandler")
	}
	return &TableHandler{Tables: svc}
}

// List handles GET /tables.
func (h *TableHandler) List(c echo.Context) error {
	list, err := h.Tables.List(c.Request().Context())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, list)
}

// Create handles POST /tables.
func (h *TableHandler) Create(c echo.Context) error {
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	t, err := h.Tables.Create(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, t)
}

// Get handles GET /tables/:table_id.
func (h *TableHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "table_id")
	if !ok {
		return tableNotFound(c)
	}
	t, err := h.Tables.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, t)
}

// Seat handles PUT /tables/:table_id/seat.
func (h *TableHandler) Seat(c echo.Context) error {
	id, ok := pathID(c, "table_id")
	if !ok {
		return tableNotFound(c)
	}
	// An unknown table is reported before anything about the body.
	if _, err := h.Tables.Get(c.Request().Context(), id); err != nil {
		return err
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	t, err := h.Tables.Seat(c.Request().Context(), id, p)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, t)
}

// Finish handles DELETE /tables/:table_id/seat.
func (h *TableHandler) Finish(c echo.Context) error {
	id, ok := pathID(c, "table_id")
	if !ok {
		return tableNotFound(c)
	}
	t, err := h.Tables.Finish(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, t)
}

func tableNotFound(c echo.Context) error {
	return apperr.NotFound("table id %s does not exist", c.Param("table_id"))
}
