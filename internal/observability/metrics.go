package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Signup operations and outcomes used as metric labels.
const (
	OperationJoin   = "join"
	OperationCancel = "cancel"

	ResultOK               = "ok"
	ResultNoop             = "noop"
	ResultAlreadyJoined    = "already_joined"
	ResultCapacityExceeded = "capacity_exceeded"
	ResultNotFound         = "not_found"
	ResultError            = "error"
)

var (
	signupOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campus_hub",
		Subsystem: "signups",
		Name:      "outcomes_total",
		Help:      "Signup join/cancel calls grouped by operation and result.",
	}, []string{"operation", "result"})

	signupDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "campus_hub",
		Subsystem: "signups",
		Name:      "unit_of_work_seconds",
		Help:      "Time spent inside the signup transaction, including lock waits.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"operation"})

	signupPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "campus_hub",
		Subsystem: "persistence",
		Name:      "last_signup_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent signup row written.",
	})
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "campus_hub",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity written.",
	})
)

func init() {
	prometheus.MustRegister(signupOutcomes, signupDuration, signupPersistGauge, activityPersistGauge)
}

// RecordSignupOutcome counts one join or cancel call.
func RecordSignupOutcome(operation, result string) {
	signupOutcomes.WithLabelValues(operation, result).Inc()
}

// ObserveSignupDuration records how long a signup unit of work took.
func ObserveSignupDuration(operation string, d time.Duration) {
	signupDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SignupOutcomeCounter exposes the counter for a label pair; tests read it with testutil.
func SignupOutcomeCounter(operation, result string) prometheus.Counter {
	return signupOutcomes.WithLabelValues(operation, result)
}

// RecordSignupPersisted updates the signup persistence watermark gauge.
func RecordSignupPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	signupPersistGauge.Set(float64(ts.Unix()))
}

// RecordActivityPersisted updates the activity persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}
