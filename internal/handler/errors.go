package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// ErrorHandler renders handler errors as {"status", "message"}.  apperr
// kinds and echo HTTP errors keep their message; anything else is logged
// and reported as a 500.
func ErrorHandler(logger *logrus.Entry) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		body := ErrorBody{Status: http.StatusInternalServerError, Message: "internal server error"}
		var he *echo.HTTPError
		switch e, ok := apperr.As(err); {
		case ok:
			body = ErrorBody{Status: e.Kind.HTTPStatus(), Message: e.Message}
		case errors.As(err, &he):
			body.Status = he.Code
			body.Message = fmt.Sprint(he.Message)
		default:
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
			}).Error("unhandled error")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(body.Status)
		} else {
			werr = c.JSON(body.Status, body)
		}
		if werr != nil {
			logger.WithError(werr).Warn("write error response")
		}
	}
}
