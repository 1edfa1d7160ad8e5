package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/validate"
)

// maxBodyBytes bounds request bodies read by the write endpoints.
const maxBodyBytes = 1 << 20

// readPayload parses the {"data": {...}} request body.
func readPayload(c echo.Context) (validate.Payload, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes))
	if err != nil {
		return validate.Payload{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	return validate.ParseBody(raw)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// data wraps a successful result in the response envelope.
func data(c echo.Context, status int, v any) error {
	return c.JSON(status, echo.Map{"data": v})
}
