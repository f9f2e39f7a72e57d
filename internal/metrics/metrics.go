// Package metrics registers the Prometheus collectors the decision
// orchestrator updates on every request_access call.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abac_decisions_total",
			Help: "Total number of access decisions made by the orchestrator.",
		},
		[]string{"permit"},
	)

	decisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "abac_decision_duration_seconds",
			Help:    "Time spent evaluating a single request_access call.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14), // 50us to ~400ms
		},
	)

	policiesEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "abac_policies_enabled",
			Help: "Number of policy rules currently marked enabled in the catalog.",
		},
	)
)

// ObserveDecision records one RequestAccess outcome: the decision
// counter, keyed by permit/deny, and the latency histogram.
func ObserveDecision(permit bool, seconds float64) {
	decisionsTotal.WithLabelValues(strconv.FormatBool(permit)).Inc()
	decisionDuration.Observe(seconds)
}

// SetPoliciesEnabled reports the current count of enabled policy rules,
// typically refreshed after a CreatePolicy/SetPolicyEnabled/DeletePolicy
// call.
func SetPoliciesEnabled(count int) {
	policiesEnabled.Set(float64(count))
}
