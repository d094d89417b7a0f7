package billing

import (
	"strings"
	"testing"
)

// validate runs the pipeline on a single set of inputs.
func validate(contractSum float64, items []LineItemInput, previous []PayApplication) (ValidationResult, G702Summary) {
	totals := CalculateG703Totals(items)
	summary := CalculateG702Summary(contractSum, nil, totals, tenPercent, previous)
	return ValidatePayApplication(items, summary, totals), summary
}

func TestValidate_OverbilledItemWarns(t *testing.T) {
	items := []LineItemInput{
		{ItemNumber: "4", ScheduledValue: 10000, WorkCompletedThisPeriod: 10500},
	}

	result, _ := validate(10000, items, nil)

	if !result.IsValid {
		t.Fatalf("expected valid result, got errors %+v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %d, want 1: %+v", len(result.Warnings), result.Warnings)
	}
	w := result.Warnings[0]
	if w.Rule != RuleOverbilled || w.LineItem != "4" || !w.CanOverride {
		t.Errorf("warning = %+v", w)
	}
	if !strings.Contains(w.Message, "Line item 4") {
		t.Errorf("warning message %q does not name the item", w.Message)
	}
}

func TestValidate_ScheduleMismatchErrors(t *testing.T) {
	items := []LineItemInput{
		{ItemNumber: "1", ScheduledValue: 60000},
		{ItemNumber: "2", ScheduledValue: 35000},
	}

	result, _ := validate(100000, items, nil)

	if result.IsValid {
		t.Fatal("expected invalid result for SOV mismatch")
	}
	if len(result.Errors) != 1 || result.Errors[0].Rule != RuleScheduleMismatch {
		t.Fatalf("errors = %+v", result.Errors)
	}
	msg := result.Errors[0].Message
	if !strings.Contains(msg, "$95,000.00") || !strings.Contains(msg, "$100,000.00") {
		t.Errorf("message %q should name both figures", msg)
	}
	if result.Errors[0].Field != "schedule_of_values" {
		t.Errorf("field = %q, want schedule_of_values", result.Errors[0].Field)
	}
}

func TestValidate_ScheduleWithinTolerance(t *testing.T) {
	items := []LineItemInput{{ItemNumber: "1", ScheduledValue: 100000.01}}
	result, _ := validate(100000, items, nil)
	if result.Has(RuleScheduleMismatch) {
		t.Errorf("one cent of drift should be tolerated: %+v", result.Errors)
	}

	items = []LineItemInput{{ItemNumber: "1", ScheduledValue: 100000.02}}
	result, _ = validate(100000, items, nil)
	if !result.Has(RuleScheduleMismatch) {
		t.Error("two cents of drift should be reported")
	}
}

func TestValidate_CalculationMismatch(t *testing.T) {
	items := []LineItemInput{{ItemNumber: "1", ScheduledValue: 100000, WorkCompletedThisPeriod: 20000}}
	totals := CalculateG703Totals(items)
	summary := CalculateG702Summary(100000, nil, totals, tenPercent, nil)
	summary.TotalCompletedAndStored = 25000

	result := ValidatePayApplication(items, summary, totals)

	if result.IsValid || !result.Has(RuleCalculationMismatch) {
		t.Fatalf("expected calculation mismatch error, got %+v", result)
	}
	for _, e := range result.Errors {
		if e.Rule == RuleCalculationMismatch && e.Field != "calculation_mismatch" {
			t.Errorf("field = %q, want calculation_mismatch", e.Field)
		}
	}
}

func TestValidate_NegativePaymentDue(t *testing.T) {
	items := []LineItemInput{{ItemNumber: "1", ScheduledValue: 100000, WorkCompletedPrevious: 20000}}
	previous := []PayApplication{
		{ApplicationNumber: 1, Summary: G702Summary{TotalEarnedLessRetainage: 18500}},
	}

	result, summary := validate(100000, items, previous)

	if summary.CurrentPaymentDue != -500 {
		t.Fatalf("line8 = %v, want -500", summary.CurrentPaymentDue)
	}
	if !result.IsValid {
		t.Errorf("negative payment due must not block: %+v", result.Errors)
	}
	if !result.Has(RuleNegativePaymentDue) {
		t.Error("expected negative payment due warning")
	}
}

func TestValidate_NegativePaymentDueTolerance(t *testing.T) {
	summary := G702Summary{CurrentPaymentDue: -0.01}
	result := ValidatePayApplication(nil, summary, G703Totals{})
	if result.Has(RuleNegativePaymentDue) {
		t.Error("-0.01 is within tolerance and should not warn")
	}
}

func TestValidate_NegativeInputs(t *testing.T) {
	items := []LineItemInput{
		{ItemNumber: "1", ScheduledValue: 50000, WorkCompletedPrevious: 5000, WorkCompletedThisPeriod: -100},
		{ItemNumber: "2", ScheduledValue: 50000, MaterialsStored: -1},
	}

	result, _ := validate(100000, items, nil)

	if result.IsValid {
		t.Fatal("negative inputs must block submission")
	}
	fields := map[string]string{}
	for _, e := range result.Errors {
		if e.Rule == RuleNegativeInput {
			fields[e.LineItem] = e.Field
		}
	}
	if fields["1"] != "work_completed_this_period" || fields["2"] != "materials_stored" {
		t.Errorf("negative input errors = %+v", fields)
	}
}

func TestValidate_CollectsEveryFinding(t *testing.T) {
	items := []LineItemInput{
		{ItemNumber: "1", ScheduledValue: 1000, WorkCompletedThisPeriod: 2000},
		{ItemNumber: "2", ScheduledValue: 1000, MaterialsStored: -5},
	}

	result, _ := validate(5000, items, nil)

	for _, rule := range []Rule{RuleScheduleMismatch, RuleOverbilled, RuleNegativeInput} {
		if !result.Has(rule) {
			t.Errorf("expected a %s finding in %+v", rule, result)
		}
	}
}
