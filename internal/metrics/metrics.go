package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	stepAdvances = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourbook",
			Name:      "wizard_step_advances_total",
			Help:      "Wizard step gate checks by step and outcome.",
		},
		[]string{"step", "outcome"},
	)

	checkouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourbook",
			Name:      "checkout_total",
			Help:      "Checkout dispatches by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, stepAdvances, checkouts)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncStepAdvance counts a step gate check ("passed" or "blocked").
func IncStepAdvance(step int, outcome string) {
	stepAdvances.WithLabelValues(strconv.Itoa(step), outcome).Inc()
}

// IncCheckout counts a checkout dispatch by mode and outcome.
func IncCheckout(mode, outcome string) {
	checkouts.WithLabelValues(mode, outcome).Inc()
}
