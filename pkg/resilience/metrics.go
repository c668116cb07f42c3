package resilience

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Outcomes recorded for every call made through a breaker.
const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeRejected = "rejected"
)

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pricing",
		Subsystem: "breaker",
		Name:      "state",
		Help:      "Breaker state (0=closed, 0.5=half-open, 1=open)",
	}, []string{"breaker"})

	breakerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing",
		Subsystem: "breaker",
		Name:      "calls_total",
		Help:      "Calls made through a breaker by outcome",
	}, []string{"breaker", "outcome"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing",
		Subsystem: "breaker",
		Name:      "transitions_total",
		Help:      "Breaker state transitions",
	}, []string{"breaker", "from", "to"})

	unnamedBreakers uint64
)

func breakerName(name string) string {
	if name != "" {
		return name
	}
	return "breaker-" + strconv.FormatUint(atomic.AddUint64(&unnamedBreakers, 1), 10)
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 0.5
	case gobreaker.StateOpen:
		return 1
	}
	return -1
}

func observeState(name string, state gobreaker.State) {
	breakerState.WithLabelValues(name).Set(stateValue(state))
}

func observeTransition(name string, from, to gobreaker.State) {
	breakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	observeState(name, to)
}

func observeCall(name, outcome string) {
	breakerCalls.WithLabelValues(name, outcome).Inc()
}
