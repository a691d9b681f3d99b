package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Decision path
	DecisionInvocations *prometheus.CounterVec
	DecisionLatency     prometheus.Histogram
	ActionsExecuted     *prometheus.CounterVec
	ActionsBlocked      *prometheus.CounterVec

	// Completion client
	CompletionRequests prometheus.Counter
	CompletionLatency  prometheus.Histogram
	CompletionErrors   *prometheus.CounterVec

	// Learning path
	LearningRuns *prometheus.CounterVec
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		DecisionInvocations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalis_decision_invocations_total",
			Help: "Total number of decision-path invocations by trigger type and outcome",
		}, []string{"trigger_type", "outcome"}), // outcome: "success" or "error"

		DecisionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitalis_decision_duration_seconds",
			Help:    "End-to-end decision invocation latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}, // dominated by the completion call
		}),

		ActionsExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalis_actions_executed_total",
			Help: "Total number of agent actions executed by tool",
		}, []string{"tool"}),

		ActionsBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalis_actions_blocked_total",
			Help: "Total number of agent actions blocked by guardrail reason",
		}, []string{"tool", "reason"}),

		CompletionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_completion_requests_total",
			Help: "Total number of completion API requests",
		}),

		CompletionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitalis_completion_duration_seconds",
			Help:    "Completion API request latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),

		CompletionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalis_completion_errors_total",
			Help: "Total number of completion API errors by type",
		}, []string{"error_type"}),

		LearningRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalis_learning_runs_total",
			Help: "Total number of per-user learning runs by outcome",
		}, []string{"outcome"}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}
