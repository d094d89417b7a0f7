// Package metrics exposes Prometheus counters for billing activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/th3mailmann/bildpro/billing"
)

var (
	validationIssues = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bildpro",
		Name:      "validation_issues_total",
		Help:      "Validation findings by rule and severity.",
	}, []string{"rule", "severity"})

	payAppTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bildpro",
		Name:      "pay_application_transitions_total",
		Help:      "Pay application status changes by outcome.",
	}, []string{"to", "outcome"})

	chainBreaks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bildpro",
		Name:      "history_chain_breaks_total",
		Help:      "Applications whose line 7 did not match prior line 6 totals.",
	})
)

// ObserveValidation counts every error and warning in r.
func ObserveValidation(r billing.ValidationResult) {
	for _, issue := range r.Errors {
		validationIssues.WithLabelValues(string(issue.Rule), string(issue.Severity)).Inc()
	}
	for _, issue := range r.Warnings {
		validationIssues.WithLabelValues(string(issue.Rule), string(issue.Severity)).Inc()
	}
}

// ObserveTransition records an attempted status change.
func ObserveTransition(to billing.PayAppStatus, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	payAppTransitions.WithLabelValues(string(to), outcome).Inc()
}

// ObserveChainBreaks counts applications whose line 7 disagrees with history.
func ObserveChainBreaks(n int) {
	chainBreaks.Add(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
