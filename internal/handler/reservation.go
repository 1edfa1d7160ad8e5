package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/apperr"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// ReservationHandler exposes the reservation endpoints.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: svc}
}

// List handles GET /reservations.  ?date= lists one day, ?mobile_number=
// searches by number fragment, neither lists everything.
func (h *ReservationHandler) List(c echo.Context) error {
	list, err := h.Reservations.List(c.Request().Context(), service.ListQuery{
		Date:   strings.TrimSpace(c.QueryParam("date")),
		Mobile: strings.TrimSpace(c.QueryParam("mobile_number")),
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, list)
}

// Create handles POST /reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	r, err := h.Reservations.Create(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, r)
}

// Get handles GET /reservations/:reservation_id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "reservation_id")
	if !ok {
		return reservationNotFound(c)
	}
	r, err := h.Reservations.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, r)
}

// Update handles PUT /reservations/:reservation_id.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "reservation_id")
	if !ok {
		return reservationNotFound(c)
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	r, err := h.Reservations.Update(c.Request().Context(), id, p)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, r)
}

// UpdateStatus handles PUT /reservations/:reservation_id/status.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "reservation_id")
	if !ok {
		return reservationNotFound(c)
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	r, err := h.Reservations.UpdateStatus(c.Request().Context(), id, p)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, r)
}

func reservationNotFound(c echo.Context) error {
	return apperr.NotFound("reservation id %s cannot be found.", c.Param("reservation_id"))
}
