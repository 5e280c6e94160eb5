package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_token_operations_total",
			Help: "Token operations by scope and outcome",
		},
		[]string{"operation", "branch", "service", "status"},
	)

	numberCollisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_token_number_collisions_total",
			Help: "Token numbers rejected as duplicates and regenerated",
		},
		[]string{"branch", "service"},
	)

	waitingTokens = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_waiting_tokens",
			Help: "Waiting tokens per scope as of the last issue or advancement",
		},
		[]string{"branch", "service"},
	)

	subscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_subscribers",
			Help: "Currently connected real-time subscribers",
		},
	)

	droppedSubscribers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_dropped_subscribers_total",
			Help: "Subscribers dropped because they could not keep up",
		},
	)

	sideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_side_effect_failures_total",
			Help: "Best-effort notification and receipt failures",
		},
		[]string{"channel"},
	)
)

// TrackTokenOperation counts an issue/serve attempt and its outcome.
func TrackTokenOperation(operation, branch, service, status string) {
	tokenOperations.WithLabelValues(operation, branch, service, status).Inc()
}

func TrackNumberCollision(branch, service string) {
	numberCollisions.WithLabelValues(branch, service).Inc()
}

func SetWaiting(branch, service string, n int) {
	waitingTokens.WithLabelValues(branch, service).Set(float64(n))
}

func SubscriberAdded()   { subscribers.Inc() }
func SubscriberRemoved() { subscribers.Dec() }

func TrackDroppedSubscriber() { droppedSubscribers.Inc() }

// TrackSideEffectFailure counts a swallowed failure on channel
// ("notify" or "receipt").
func TrackSideEffectFailure(channel string) {
	sideEffectFailures.WithLabelValues(channel).Inc()
}
