package consumer

import "github.com/prometheus/client_golang/prometheus"

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campus_hub",
		Subsystem: "consumer",
		Name:      "messages_processed_total",
		Help:      "Number of Kafka messages successfully handled.",
	}, []string{"topic", "event_type"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campus_hub",
		Subsystem: "consumer",
		Name:      "handler_errors_total",
		Help:      "Number of handler errors grouped by topic and event type.",
	}, []string{"topic", "event_type"})

	handlerRetryCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campus_hub",
		Subsystem: "consumer",
		Name:      "handler_retries_total",
		Help:      "Number of handler retries grouped by topic and event type.",
	}, []string{"topic", "event_type"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campus_hub",
		Subsystem: "consumer",
		Name:      "decode_errors_total",
		Help:      "Number of decode failures per topic.",
	}, []string{"topic"})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "campus_hub",
		Subsystem: "consumer",
		Name:      "last_message_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successfully processed message per topic.",
	}, []string{"topic"})

	notificationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campus_hub",
		Subsystem: "consumer",
		Name:      "notifications_created_total",
		Help:      "Notifications produced from consumed events, by notification type.",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(processedCounter, handlerErrorCounter, handlerRetryCounter, decodeErrorCounter, lastMessageGauge, notificationCounter)
}

func recordProcessed(msg Message) {
	processedCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
	if !msg.Timestamp.IsZero() {
		lastMessageGauge.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}

func recordHandlerError(msg Message) {
	handlerErrorCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordHandlerRetry(msg Message) {
	handlerRetryCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}

func recordNotification(kind string) {
	notificationCounter.WithLabelValues(kind).Inc()
}
