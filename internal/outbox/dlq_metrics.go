package outbox

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// dlqOutcome is what one DLQ manager pass did with an entry.
type dlqOutcome string

const (
	dlqOutcomeRequeued    dlqOutcome = "requeued"
	dlqOutcomeRetried     dlqOutcome = "retried"
	dlqOutcomeQuarantined dlqOutcome = "quarantined"
)

var (
	dlqEntriesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campus_hub",
		Subsystem: "dlq",
		Name:      "entries_handled_total",
		Help:      "DLQ entries handled by the manager, by outcome.",
	}, []string{"topic", "event_type", "outcome"})

	dlqAttemptsHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "campus_hub",
		Subsystem: "dlq",
		Name:      "entry_attempts",
		Help:      "Retry count an entry had reached when the manager handled it.",
		Buckets:   []float64{0, 1, 2, 3, 5, 8},
	}, []string{"outcome"})

	dlqBacklogGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "campus_hub",
		Subsystem: "dlq",
		Name:      "entries",
		Help:      "Entries currently in the DLQ, split into pending and quarantined.",
	}, []string{"state"})
)

func init() {
	prometheus.MustRegister(dlqEntriesCounter, dlqAttemptsHistogram, dlqBacklogGauge)
}

func recordDLQOutcome(entry dlqEntry, outcome dlqOutcome) {
	dlqEntriesCounter.WithLabelValues(entry.Topic, entry.EventType, string(outcome)).Inc()
	dlqAttemptsHistogram.WithLabelValues(string(outcome)).Observe(float64(entry.RetryCount))
}

func setDLQBacklog(pending, quarantined int) {
	dlqBacklogGauge.WithLabelValues("pending").Set(float64(pending))
	dlqBacklogGauge.WithLabelValues("quarantined").Set(float64(quarantined))
}

func updateBacklogGauge(ctx context.Context, pool *pgxpool.Pool) {
	var pending, quarantined int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE quarantined_at IS NULL),
                COUNT(*) FILTER (WHERE quarantined_at IS NOT NULL)
           FROM outbox_dlq`).Scan(&pending, &quarantined)
	if err != nil {
		return
	}
	setDLQBacklog(pending, quarantined)
}
