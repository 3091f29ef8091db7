package monitoring

import (
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "Reservation creation attempts by outcome",
		},
		[]string{"outcome"},
	)

	stateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_transitions_total",
			Help: "Reservation status transitions",
		},
		[]string{"from", "to"},
	)

	paymentWebhooks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Payment provider webhook deliveries by result",
		},
		[]string{"result"},
	)

	reservationsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reservations_by_status",
			Help: "Current number of reservations per status",
		},
		[]string{"status"},
	)

	vehicleLockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vehicle_lock_wait_seconds",
			Help:    "Time spent waiting for the per-vehicle booking lock",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)
)

// TrackReservationCreated records one creation attempt outcome
// (created, conflict, lock_failed, error).
func TrackReservationCreated(outcome string) {
	reservationsCreated.WithLabelValues(outcome).Inc()
}

// TrackStateTransition records one status transition.
func TrackStateTransition(from, to string) {
	stateTransitions.WithLabelValues(from, to).Inc()
}

// TrackPaymentWebhook records one webhook delivery result.
func TrackPaymentWebhook(result string) {
	paymentWebhooks.WithLabelValues(result).Inc()
}

// ObserveLockWait records how long a booking waited on the vehicle lock.
func ObserveLockWait(d time.Duration) {
	vehicleLockWait.Observe(d.Seconds())
}

// Monitor periodically collects per-status reservation gauges from the
// record store.
type Monitor struct {
	app core.App
}

func NewMonitor(app core.App) *Monitor {
	monitor := &Monitor{app: app}

	// Start metrics collection
	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.collectReservationMetrics()
	}
}

func (m *Monitor) collectReservationMetrics() {
	statuses := []string{"pending", "confirmed", "active", "completed", "cancelled"}
	for _, s := range statuses {
		count, err := m.app.CountRecords("reservations", dbx.HashExp{"status": s})
		if err != nil {
			continue
		}
		reservationsByStatus.WithLabelValues(s).Set(float64(count))
	}
}
