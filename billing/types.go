// Package billing implements the AIA G702/G703 pay application math: line
// item rollups, the nine-line G702 summary, carry-forward between periods,
// validation, and the frozen snapshot model for submitted applications.
package billing

import "time"

type PayAppStatus string

const (
	StatusDraft     PayAppStatus = "draft"
	StatusSubmitted PayAppStatus = "submitted"
	StatusPaid      PayAppStatus = "paid"
)

type ChangeOrderStatus string

const (
	ChangeOrderPending  ChangeOrderStatus = "pending"
	ChangeOrderApproved ChangeOrderStatus = "approved"
	ChangeOrderRejected ChangeOrderStatus = "rejected"
)

// RetainageRates holds the fractions withheld on completed work and on
// stored materials (0.10 means 10%).
type RetainageRates struct {
	Work   float64 `json:"work"`
	Stored float64 `json:"stored"`
}

// Project holds the contract terms and the parties printed on the G702.
type Project struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	ProjectNumber       string         `json:"project_number"`
	Address             string         `json:"address"`
	OwnerName           string         `json:"owner_name"`
	ArchitectName       string         `json:"architect_name"`
	GCName              string         `json:"gc_name"`
	GCContactEmail      string         `json:"gc_contact_email"`
	OriginalContractSum float64        `json:"original_contract_sum"`
	ContractDate        time.Time      `json:"contract_date"`
	Retainage           RetainageRates `json:"retainage"`
	BillingDay          int            `json:"billing_day"`
	Status              string         `json:"status"`
}

// ScheduleOfValuesItem is one row of the contract breakdown (column C source).
type ScheduleOfValuesItem struct {
	ID                string  `json:"id"`
	ItemNumber        string  `json:"item_number"`
	Description       string  `json:"description"`
	ScheduledValue    float64 `json:"scheduled_value"`
	SortOrder         int     `json:"sort_order"`
	IsFromChangeOrder bool    `json:"is_from_change_order"`
	ChangeOrderID     string  `json:"change_order_id,omitempty"`
}

// ChangeOrder adjusts the contract sum once approved (G702 line 2).
type ChangeOrder struct {
	ID           string            `json:"id"`
	Number       int               `json:"co_number"`
	Description  string            `json:"description"`
	Amount       float64           `json:"amount"`
	Status       ChangeOrderStatus `json:"status"`
	DateApproved time.Time         `json:"date_approved,omitzero"`
}

// LineItemInput carries the user-entered and carried-forward columns of a
// G703 row: C, D, E and F.
type LineItemInput struct {
	SOVItemID               string  `json:"sov_item_id"`
	ItemNumber              string  `json:"item_number"`
	Description             string  `json:"description"`
	ScheduledValue          float64 `json:"scheduled_value"`
	WorkCompletedPrevious   float64 `json:"work_completed_previous"`
	WorkCompletedThisPeriod float64 `json:"work_completed_this_period"`
	MaterialsStored         float64 `json:"materials_stored"`
}

// LineItemCalc holds the derived G703 columns G, H and I plus retainage.
type LineItemCalc struct {
	TotalCompletedAndStored float64 `json:"total_completed_and_stored"`
	PercentComplete         float64 `json:"percent_complete"`
	BalanceToFinish         float64 `json:"balance_to_finish"`
	Retainage               float64 `json:"retainage"`
}

// LineItem is a complete G703 row: the inputs and the derived columns.
type LineItem struct {
	LineItemInput
	LineItemCalc
}

// G703Totals is the grand total row of the continuation sheet.
type G703Totals struct {
	ScheduledValue          float64 `json:"scheduled_value"`
	WorkCompletedPrevious   float64 `json:"work_completed_previous"`
	WorkCompletedThisPeriod float64 `json:"work_completed_this_period"`
	MaterialsStored         float64 `json:"materials_stored"`
	TotalCompletedAndStored float64 `json:"total_completed_and_stored"`
	BalanceToFinish         float64 `json:"balance_to_finish"`
}

// G702Summary is the nine-line Application and Certificate for Payment.
type G702Summary struct {
	OriginalContractSum      float64 `json:"line1_original_contract_sum"`
	NetChangeOrders          float64 `json:"line2_net_change_orders"`
	ContractSumToDate        float64 `json:"line3_contract_sum_to_date"`
	TotalCompletedAndStored  float64 `json:"line4_total_completed_and_stored"`
	RetainageOnCompleted     float64 `json:"line5a_retainage_on_completed"`
	RetainageOnStored        float64 `json:"line5b_retainage_on_stored"`
	TotalRetainage           float64 `json:"line5c_total_retainage"`
	TotalEarnedLessRetainage float64 `json:"line6_total_earned_less_retainage"`
	LessPreviousCertificates float64 `json:"line7_less_previous_certificates"`
	CurrentPaymentDue        float64 `json:"line8_current_payment_due"`
	BalanceToFinish          float64 `json:"line9_balance_to_finish_plus_retainage"`
}

// PayApplication is the header record of one billing period. For submitted
// and paid applications the Summary is the frozen snapshot.
type PayApplication struct {
	ID                string       `json:"id"`
	ApplicationNumber int          `json:"application_number"`
	PeriodFrom        time.Time    `json:"period_from"`
	PeriodTo          time.Time    `json:"period_to"`
	Status            PayAppStatus `json:"status"`
	Summary           G702Summary  `json:"summary"`
	SubmittedAt       time.Time    `json:"submitted_at,omitzero"`
	PaidAt            time.Time    `json:"paid_at,omitzero"`

	// Retainage and ChangeOrderIDs are the terms lines 2 and 5 were
	// computed with. Project is the form header as of submission and is
	// nil on drafts and on records frozen before headers were kept.
	Retainage      RetainageRates `json:"retainage_rates"`
	ChangeOrderIDs []string       `json:"change_order_ids"`
	Project        *Project       `json:"project_header,omitempty"`
}

// BilledApplication pairs an application header with its stored line items.
type BilledApplication struct {
	PayApplication
	LineItems []LineItem `json:"line_items"`
}
