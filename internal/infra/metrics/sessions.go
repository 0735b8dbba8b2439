package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		SessionsCreated,
		SessionsActive,
		GateCompletions,
	)
}

var (
	SessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_sessions_created_total",
			Help: "Count of verification sessions started.",
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "verification_sessions_active",
			Help: "Verification sessions currently held in memory.",
		},
	)

	GateCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_gate_completions_total",
			Help: "Count of sessions whose gate opened (all requirements met).",
		},
	)
)
