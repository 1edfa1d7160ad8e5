package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWorkflowCounters(t *testing.T) {
	w := New(prometheus.NewRegistry())

	w.ReservationCreated()
	w.ReservationCreated()
	w.StatusChanged("booked", "seated")
	w.TableSeated()
	w.TableFinished()
	w.Rejected("seat", "conflict")

	assert.Equal(t, 2.0, testutil.ToFloat64(w.reservationsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(w.statusChanges.WithLabelValues("booked", "seated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(w.seatings))
	assert.Equal(t, 1.0, testutil.ToFloat64(w.finishes))
	assert.Equal(t, 1.0, testutil.ToFloat64(w.rejections.WithLabelValues("seat", "conflict")))
}

func TestSetTodayReplacesPreviousValues(t *testing.T) {
	w := New(prometheus.NewRegistry())

	w.SetToday(map[string]int{"booked": 3, "seated": 1})
	w.SetToday(map[string]int{"finished": 2})

	assert.Equal(t, 1, testutil.CollectAndCount(w.todayByStatus))
	assert.Equal(t, 2.0, testutil.ToFloat64(w.todayByStatus.WithLabelValues("finished")))
}

func TestNewTwiceOnSameRegistryReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg)
	b := New(reg)

	a.TableSeated()
	assert.Equal(t, 1.0, testutil.ToFloat64(b.seatings))
}

func TestNilWorkflowIsNoop(t *testing.T) {
	var w *Workflow
	assert.NotPanics(t, func() {
		w.ReservationCreated()
		w.StatusChanged("a", "b")
		w.TableSeated()
		w.TableFinished()
		w.Rejected("x", "y")
		w.SetToday(map[string]int{"booked": 1})
		w.SetOccupiedTables(2)
		w.ObserveHTTP("GET", "/tables", "200", time.Millisecond)
	})
}
