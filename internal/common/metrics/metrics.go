// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerbot_turns_total",
			Help: "Total number of dialogue turns processed, by state at turn start",
		},
		[]string{"state"},
	)

	IntentPredictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerbot_intent_predictions_total",
			Help: "Top intent returned by the classifier",
		},
		[]string{"intent"},
	)

	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerbot_state_transitions_total",
			Help: "Dialogue state transitions",
		},
		[]string{"from", "to"},
	)

	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "careerbot_classify_duration_seconds",
			Help:    "Duration of intent classification in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)

	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "careerbot_sessions_started_total",
			Help: "Total number of chat sessions started",
		},
	)

	SessionResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "careerbot_session_resets_total",
			Help: "Total number of sessions reset by a farewell",
		},
	)

	SessionStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerbot_session_store_errors_total",
			Help: "Session store failures by backend and operation",
		},
		[]string{"backend", "op"},
	)
)
