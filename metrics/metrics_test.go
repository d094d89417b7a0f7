package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/th3mailmann/bildpro/billing"
)

func TestObserveValidation(t *testing.T) {
	counter := validationIssues.WithLabelValues(string(billing.RuleOverbilled), string(billing.SeverityWarning))
	before := testutil.ToFloat64(counter)

	ObserveValidation(billing.ValidationResult{
		Warnings: []billing.ValidationIssue{
			{Rule: billing.RuleOverbilled, Severity: billing.SeverityWarning},
			{Rule: billing.RuleOverbilled, Severity: billing.SeverityWarning},
		},
	})

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("overbilled warnings counted = %v, want 2", got)
	}
}

func TestObserveTransition(t *testing.T) {
	rejected := payAppTransitions.WithLabelValues(string(billing.StatusPaid), "rejected")
	before := testutil.ToFloat64(rejected)

	ObserveTransition(billing.StatusPaid, errors.New("not submitted"))

	if got := testutil.ToFloat64(rejected) - before; got != 1 {
		t.Errorf("rejected transitions counted = %v, want 1", got)
	}
}
