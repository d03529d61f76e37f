package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		turnsTotal,
		turnLatency,
		turnsRejected,
		sessionsCreated,
		sessionsReconciled,
	)
}

var (
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_chat_turns_total",
			Help: "Completed turns by outcome and fault class.",
		},
		[]string{"outcome", "fault"}, // outcome: 'ok', 'error'
	)

	turnLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_chat_turn_duration_seconds",
			Help:    "Round trip time of a turn against the agent service.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"outcome"},
	)

	turnsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_chat_turns_rejected_total",
			Help: "Turns refused before reaching the agent service.",
		},
		[]string{"reason"}, // 'empty', 'no_session', 'in_flight'
	)

	sessionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_chat_sessions_created_total",
			Help: "Sessions started, by whether the agent service accepted them.",
		},
		[]string{"result"}, // 'remote', 'fallback'
	)

	sessionsReconciled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_chat_sessions_reconciled_total",
			Help: "Loads of unbound sessions, by whether a fresh remote session was bound.",
		},
		[]string{"result"}, // 'rebound', 'local'
	)
)

// ObserveTurn records a completed turn. fault is the fault class for failed turns.
func ObserveTurn(success bool, fault string, elapsed time.Duration) {
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	if success {
		fault = "none"
	}
	turnsTotal.WithLabelValues(outcome, norm(fault)).Inc()
	turnLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// TurnRejected records a turn refused without a network call
func TurnRejected(reason string) {
	turnsRejected.WithLabelValues(norm(reason)).Inc()
}

// SessionCreated records a new session; remote is false for local fallbacks
func SessionCreated(remote bool) {
	result := "remote"
	if !remote {
		result = "fallback"
	}
	sessionsCreated.WithLabelValues(result).Inc()
}

// SessionReconciled records the load of an unbound session
func SessionReconciled(rebound bool) {
	result := "rebound"
	if !rebound {
		result = "local"
	}
	sessionsReconciled.WithLabelValues(result).Inc()
}
