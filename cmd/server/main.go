package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/database"
	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/jobs"
	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
	"github.com/iliyamo/restaurant-reservation/internal/router"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

func setupLogger(cfg config.Config) *log.Entry {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	return log.WithField("env", cfg.Env)
}

func openStore(ctx context.Context, cfg config.Config, logger *log.Entry) (repository.Store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(nil), func() {}, nil
	}
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("database schema ensured")
	}
	return repository.NewSQLStore(db), func() { _ = db.Close() }, nil
}

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	logger := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("open store")
	}
	defer closeStore()

	wf := metrics.New(prometheus.DefaultRegisterer)

	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL, cfg.EventsQueue, logger)
		go func() {
			err := queue.StartConsumer(ctx, queue.ConsumerConfig{
				URL:     cfg.RabbitURL,
				Queue:   cfg.EventsQueue,
				LogPath: cfg.ReservationLog,
			}, logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("reservation log consumer stopped")
			}
		}()
	} else {
		logger.Info("RABBITMQ_URL not set; reservation events are not published")
	}

	deps := service.Deps{
		Store: store,
		Clock: service.SystemClock,
		Hours: service.BusinessHours{
			Location:   cfg.Location,
			Open:       cfg.Opening,
			Close:      cfg.Closing,
			ClosedDays: cfg.ClosedDays,
		},
		Publisher: publisher,
		Metrics:   wf,
		Logger:    logger.WithField("component", "service"),
	}

	var cacheMW, rateMW echo.MiddlewareFunc
	if rdb, err := config.NewRedisClient(ctx, cfg.Redis); err != nil {
		logger.WithError(err).Warn("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
		cacheMW = middleware.ResponseCache(cfg.Cache, middleware.NewRedisCacheStore(rdb, cfg.Cache.Prefix), logger)
		rateMW = middleware.RateLimiter(cfg.RateLimit, middleware.NewRedisBucket(rdb, cfg.RateLimit), logger)
	}

	e := router.New(router.Options{
		Reservations: handler.NewReservationHandler(service.NewReservationService(deps)),
		Tables:       handler.NewTableHandler(service.NewTableService(deps)),
		Health:       &handler.HealthHandler{Store: store},
		Gatherer:     prometheus.DefaultGatherer,
		Metrics:      wf,
		Logger:       logger,
		Cache:        cacheMW,
		RateLimit:    rateMW,
	})

	sched, err := jobs.Start(ctx, &jobs.OccupancyJob{
		Store:    store,
		Metrics:  wf,
		Location: cfg.Location,
		Logger:   logger.WithField("component", "jobs"),
	}, cfg.StatsInterval)
	if err != nil {
		logger.WithError(err).Fatal("start scheduler")
	}

	addr := ":" + cfg.Port
	go func() {
		logger.WithFields(log.Fields{"addr": addr, "store": cfg.StoreDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}
	if err := sched.Shutdown(); err != nil {
		logger.WithError(err).Warn("scheduler shutdown")
	}
}
