// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/pwpolicy/pkg/pwpolicy"
)

// Outcome label values for pwpolicy_evaluations_total.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

// Metrics contains custom Prometheus metrics for password evaluation.
type Metrics struct {
	EvaluationsTotal  *prometheus.CounterVec
	RuleFailuresTotal *prometheus.CounterVec
	EvaluateDuration  prometheus.Histogram
	RequestsTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers pwpolicy metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pwpolicy_evaluations_total",
				Help: "Total number of password evaluations by outcome",
			},
			[]string{"outcome"},
		),
		RuleFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pwpolicy_rule_failures_total",
				Help: "Total number of failed top-level rules by rule code",
			},
			[]string{"code"},
		),
		EvaluateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pwpolicy_evaluate_duration_seconds",
			Help:    "Histogram of password evaluation latency in seconds",
			Buckets: []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3},
		}),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pwpolicy_http_requests_total",
				Help: "Total number of HTTP API requests by route and status",
			},
			[]string{"route", "status"},
		),
	}

	reg.MustRegister(m.EvaluationsTotal)
	reg.MustRegister(m.RuleFailuresTotal)
	reg.MustRegister(m.EvaluateDuration)
	reg.MustRegister(m.RequestsTotal)

	return m
}

// RecordEvaluation records one completed evaluation.
func (m *Metrics) RecordEvaluation(res pwpolicy.ValidationResult, d time.Duration) {
	outcome := OutcomeInvalid
	if res.IsValid {
		outcome = OutcomeValid
	}
	m.EvaluationsTotal.WithLabelValues(outcome).Inc()
	for _, code := range res.Failed() {
		m.RuleFailuresTotal.WithLabelValues(code).Inc()
	}
	m.EvaluateDuration.Observe(d.Seconds())
}

// RecordRequest records one HTTP API response.
func (m *Metrics) RecordRequest(route string, status int) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
