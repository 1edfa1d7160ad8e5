// Package metrics exposes Prometheus collectors for the reservation workflow
// and the HTTP layer.  All recorder methods are safe on a nil receiver so
// callers can run without metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Workflow counts reservation and table state changes.
type Workflow struct {
	reservationsCreated prometheus.Counter
	statusChanges       *prometheus.CounterVec
	seatings            prometheus.Counter
	finishes            prometheus.Counter
	rejections          *prometheus.CounterVec
	todayByStatus       *prometheus.GaugeVec
	occupiedTables      prometheus.Gauge
	httpDuration        *prometheus.HistogramVec
}

// New registers the collectors with registerer.  A nil registerer means the
// default Prometheus registry.
func New(registerer prometheus.Registerer) *Workflow {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Workflow{
		reservationsCreated: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "restaurant_reservations_created_total",
			Help: "Total number of reservations booked",
		})),
		statusChanges: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restaurant_reservation_status_changes_total",
			Help: "Reservation status transitions by source and target status",
		}, []string{"from", "to"})),
		seatings: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "restaurant_table_seatings_total",
			Help: "Total number of reservations seated at a table",
		})),
		finishes: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "restaurant_table_finishes_total",
			Help: "Total number of tables released after a reservation finished",
		})),
		rejections: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restaurant_rejected_operations_total",
			Help: "Operations rejected by validation or conflict rules",
		}, []string{"operation", "kind"})),
		todayByStatus: register(registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "restaurant_reservations_today",
			Help: "Reservations for the current day by status",
		}, []string{"status"})),
		occupiedTables: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "restaurant_tables_occupied",
			Help: "Tables currently holding a seated reservation",
		})),
		httpDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "restaurant_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "code"})),
	}
}

// register registers c, reusing an already registered collector of the same
// shape so that New can be called more than once per process (tests).
func register[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func (w *Workflow) ReservationCreated() {
	if w == nil {
		return
	}
	w.reservationsCreated.Inc()
}

func (w *Workflow) StatusChanged(from, to string) {
	if w == nil {
		return
	}
	w.statusChanges.WithLabelValues(from, to).Inc()
}

func (w *Workflow) TableSeated() {
	if w == nil {
		return
	}
	w.seatings.Inc()
}

func (w *Workflow) TableFinished() {
	if w == nil {
		return
	}
	w.finishes.Inc()
}

// Rejected counts a client error for operation, labelled by error kind.
func (w *Workflow) Rejected(operation, kind string) {
	if w == nil {
		return
	}
	w.rejections.WithLabelValues(operation, kind).Inc()
}

// SetToday replaces the per-status gauge for the current day.
func (w *Workflow) SetToday(counts map[string]int) {
	if w == nil {
		return
	}
	w.todayByStatus.Reset()
	for status, n := range counts {
		w.todayByStatus.WithLabelValues(status).Set(float64(n))
	}
}

func (w *Workflow) SetOccupiedTables(n int) {
	if w == nil {
		return
	}
	w.occupiedTables.Set(float64(n))
}

// ObserveHTTP records the latency of one request.
func (w *Workflow) ObserveHTTP(method, route, code string, d time.Duration) {
	if w == nil {
		return
	}
	w.httpDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}
