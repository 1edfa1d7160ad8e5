package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/middleware"
)

// Options collects everything New needs.  Cache and RateLimit are optional
// and usually come from middleware.ResponseCache and middleware.RateLimiter.
type Options struct {
	Reservations *handler.ReservationHandler
	Tables       *handler.TableHandler
	Health       *handler.HealthHandler
	Gatherer     prometheus.Gatherer
	Metrics      *metrics.Workflow
	Logger       *logrus.Entry
	Cache        echo.MiddlewareFunc
	RateLimit    echo.MiddlewareFunc
}

// New builds the echo instance serving the API.  Operational endpoints sit
// outside the cache and rate limiter.
func New(opts Options) *echo.Echo {
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(opts.Logger)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger.WithField("component", "http")))
	e.Use(middleware.Metrics(opts.Metrics))

	RegisterRoutes(e, opts.Health, opts.Gatherer)

	var api []echo.MiddlewareFunc
	if opts.RateLimit != nil {
		api = append(api, opts.RateLimit)
	}
	if opts.Cache != nil {
		api = append(api, opts.Cache)
	}
	RegisterReservations(e, opts.Reservations, api...)
	RegisterTables(e, opts.Tables, api...)
	return e
}
