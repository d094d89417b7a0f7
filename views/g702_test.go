package views

import (
	"context"
	"strings"
	"testing"

	"github.com/th3mailmann/bildpro/billing"
	"github.com/th3mailmann/bildpro/services"
	"github.com/th3mailmann/bildpro/testhelpers"
)

func renderSummary(t *testing.T, view services.PayAppView) string {
	t.Helper()
	var sb strings.Builder
	if err := G702Summary(view).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return sb.String()
}

func TestG702Summary_Lines(t *testing.T) {
	view := services.PayAppView{
		Application: billing.PayApplication{
			ApplicationNumber: 3,
			Status:            billing.StatusSubmitted,
			Summary: billing.G702Summary{
				OriginalContractSum:      1200000,
				ContractSumToDate:        1218500,
				TotalCompletedAndStored:  245000,
				TotalRetainage:           24500,
				TotalEarnedLessRetainage: 220500,
				LessPreviousCertificates: 150000,
				CurrentPaymentDue:        70500,
			},
		},
		Validation: billing.ValidationResult{IsValid: true},
		Retainage:  billing.RetainageReconciliation{Reconciled: true},
	}

	body := renderSummary(t, view)
	testhelpers.AssertHTMLContains(t, body,
		`data-status="submitted"`,
		"Application #3",
		"SUBMITTED",
		"1. Original Contract Sum",
		"$1,200,000.00",
		`<tr class="bold highlight"><th>8. CURRENT PAYMENT DUE (Line 6 - 7)</th><td>$70,500.00</td></tr>`,
		`<tr class="indent"><th>a. On Completed Work</th>`,
	)
	if strings.Contains(body, "validation-errors") {
		t.Error("valid application should not render an error list")
	}
	if strings.Contains(body, "retainage-drift") {
		t.Error("reconciled retainage should not render a drift note")
	}
}

func TestG702Summary_ValidationAndEscaping(t *testing.T) {
	view := services.PayAppView{
		Application: billing.PayApplication{ApplicationNumber: 1, Status: billing.StatusDraft},
		Validation: billing.ValidationResult{
			Errors: []billing.ValidationIssue{
				{Rule: billing.RuleNegativeInput, LineItem: "<b>4</b>", Message: "Line item <b>4</b> has a negative value"},
			},
			Warnings: []billing.ValidationIssue{
				{Rule: billing.RuleOverbilled, LineItem: "2", Message: "Line item 2 billed exceeds scheduled value"},
			},
		},
		Retainage: billing.RetainageReconciliation{Aggregate: 100, PerItemSum: 100.02},
	}

	body := renderSummary(t, view)
	testhelpers.AssertHTMLContains(t, body,
		`<ul class="validation-errors">`,
		`data-rule="negative_input"`,
		"&lt;b&gt;4&lt;/b&gt;",
		`<ul class="validation-warnings">`,
		`data-rule="overbilled"`,
		"retainage-drift",
		"$100.02",
	)
	if strings.Contains(body, "<b>4</b>") {
		t.Error("line item text was not escaped")
	}
}

func TestG702SummaryData_Lines(t *testing.T) {
	view := services.PayAppView{
		Application: billing.PayApplication{
			ApplicationNumber: 2,
			Status:            billing.StatusPaid,
			Summary:           billing.G702Summary{RetainageOnCompleted: 1500},
		},
		Retainage: billing.RetainageReconciliation{Reconciled: true},
	}

	data := G702SummaryData(view)
	if data.StatusLabel != "PAID" || data.RetainageDrift {
		t.Errorf("header = %q drift=%v, want PAID without drift", data.StatusLabel, data.RetainageDrift)
	}
	if len(data.Lines) != 12 {
		t.Fatalf("got %d lines, want 12", len(data.Lines))
	}
	if heading := data.Lines[4]; heading.Label != "5. Retainage:" || heading.Value != "" || heading.Class != "" {
		t.Errorf("retainage heading = %+v, want a blank unstyled row", heading)
	}
	if line5a := data.Lines[5]; line5a.Value != "$1,500.00" || line5a.Class != "indent" {
		t.Errorf("line 5a = %+v", line5a)
	}
	if len(data.Errors) != 0 || len(data.Warnings) != 0 {
		t.Errorf("findings = %+v / %+v, want none", data.Errors, data.Warnings)
	}
}
