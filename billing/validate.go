package billing

import "fmt"

// Rule identifies which check produced a validation issue.
type Rule string

const (
	RuleScheduleMismatch    Rule = "schedule_mismatch"
	RuleOverbilled          Rule = "overbilled"
	RuleCalculationMismatch Rule = "calculation_mismatch"
	RuleNegativePaymentDue  Rule = "negative_payment_due"
	RuleNegativeInput       Rule = "negative_input"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type ValidationIssue struct {
	Rule        Rule     `json:"rule"`
	Severity    Severity `json:"severity"`
	Field       string   `json:"field"`
	LineItem    string   `json:"line_item,omitempty"`
	Message     string   `json:"message"`
	CanOverride bool     `json:"can_override,omitempty"`
}

// ValidationResult is valid when there are no errors. Warnings never block
// submission.
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// Has reports whether any error or warning came from rule r.
func (r ValidationResult) Has(rule Rule) bool {
	for _, issue := range r.Errors {
		if issue.Rule == rule {
			return true
		}
	}
	for _, issue := range r.Warnings {
		if issue.Rule == rule {
			return true
		}
	}
	return false
}

// ValidatePayApplication runs every check and collects all findings; it
// never stops at the first problem.
func ValidatePayApplication(items []LineItemInput, summary G702Summary, totals G703Totals) ValidationResult {
	result := ValidationResult{
		Errors:   []ValidationIssue{},
		Warnings: []ValidationIssue{},
	}

	sovTotal := totals.ScheduledValue
	if !WithinTolerance(sovTotal, summary.ContractSumToDate) {
		result.Errors = append(result.Errors, ValidationIssue{
			Rule:     RuleScheduleMismatch,
			Severity: SeverityError,
			Field:    "schedule_of_values",
			Message: fmt.Sprintf("Your Schedule of Values total (%s) does not match the contract sum (%s). Add change orders to the SOV or adjust line items.",
				FormatUSD(sovTotal), FormatUSD(summary.ContractSumToDate)),
		})
	}

	for _, item := range items {
		total := TotalCompletedAndStored(item.WorkCompletedPrevious, item.WorkCompletedThisPeriod, item.MaterialsStored)
		if exceeds(total, item.ScheduledValue) {
			result.Warnings = append(result.Warnings, ValidationIssue{
				Rule:     RuleOverbilled,
				Severity: SeverityWarning,
				Field:    "line_item",
				LineItem: item.ItemNumber,
				Message: fmt.Sprintf("Line item %s billed (%s) exceeds scheduled value (%s).",
					item.ItemNumber, FormatUSD(total), FormatUSD(item.ScheduledValue)),
				CanOverride: true,
			})
		}
	}

	if !WithinTolerance(summary.TotalCompletedAndStored, totals.TotalCompletedAndStored) {
		result.Errors = append(result.Errors, ValidationIssue{
			Rule:     RuleCalculationMismatch,
			Severity: SeverityError,
			Field:    "calculation_mismatch",
			Message:  "Internal calculation error: G702 Line 4 does not match G703 total. Please contact support.",
		})
	}

	if summary.CurrentPaymentDue < 0 && !WithinTolerance(summary.CurrentPaymentDue, 0) {
		result.Warnings = append(result.Warnings, ValidationIssue{
			Rule:     RuleNegativePaymentDue,
			Severity: SeverityWarning,
			Field:    "current_payment_due",
			Message: fmt.Sprintf("Current payment due is negative (%s). This may indicate overbilling in a previous period. Please review.",
				FormatUSD(summary.CurrentPaymentDue)),
			CanOverride: true,
		})
	}

	for _, item := range items {
		if item.WorkCompletedThisPeriod < 0 {
			result.Errors = append(result.Errors, ValidationIssue{
				Rule:     RuleNegativeInput,
				Severity: SeverityError,
				Field:    "work_completed_this_period",
				LineItem: item.ItemNumber,
				Message:  fmt.Sprintf("Line item %s has a negative value for work completed this period.", item.ItemNumber),
			})
		}
		if item.MaterialsStored < 0 {
			result.Errors = append(result.Errors, ValidationIssue{
				Rule:     RuleNegativeInput,
				Severity: SeverityError,
				Field:    "materials_stored",
				LineItem: item.ItemNumber,
				Message:  fmt.Sprintf("Line item %s has a negative value for materials stored.", item.ItemNumber),
			})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
