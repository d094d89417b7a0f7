package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/billing"
)

// ProjectLedger is everything the billing engine needs for one project,
// read in one pass so that carry-forward and line 7 see the same history.
type ProjectLedger struct {
	Project          billing.Project
	ScheduleOfValues []billing.ScheduleOfValuesItem
	ChangeOrders     []billing.ChangeOrder
	// History is ordered by application number.
	History []billing.BilledApplication
}

// LoadProjectLedger reads a project with its SOV, change orders and every
// pay application including line items.
func LoadProjectLedger(app core.App, projectID string) (*ProjectLedger, error) {
	projectRec, err := app.FindRecordById("projects", projectID)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}

	ledger := &ProjectLedger{Project: projectFromRecord(projectRec)}
	params := dbx.Params{"pid": projectID}

	sovRecs, err := app.FindRecordsByFilter("schedule_of_values", "project = {:pid}", "sort_order", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("load schedule of values: %w", err)
	}
	for _, r := range sovRecs {
		ledger.ScheduleOfValues = append(ledger.ScheduleOfValues, sovItemFromRecord(r))
	}

	coRecs, err := app.FindRecordsByFilter("change_orders", "project = {:pid}", "co_number", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("load change orders: %w", err)
	}
	for _, r := range coRecs {
		ledger.ChangeOrders = append(ledger.ChangeOrders, changeOrderFromRecord(r))
	}

	appRecs, err := app.FindRecordsByFilter("pay_applications", "project = {:pid}", "application_number", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("load pay applications: %w", err)
	}
	for _, r := range appRecs {
		lines, err := loadLineItems(app, r.Id)
		if err != nil {
			return nil, err
		}
		ledger.History = append(ledger.History, billing.BilledApplication{
			PayApplication: payApplicationFromRecord(r),
			LineItems:      lines,
		})
	}

	return ledger, nil
}

func loadLineItems(app core.App, payAppID string) ([]billing.LineItem, error) {
	recs, err := app.FindRecordsByFilter("pay_app_line_items", "pay_application = {:id}", "sort_order", 0, 0, dbx.Params{"id": payAppID})
	if err != nil {
		return nil, fmt.Errorf("load line items for %s: %w", payAppID, err)
	}
	lines := make([]billing.LineItem, 0, len(recs))
	for _, r := range recs {
		lines = append(lines, lineItemFromRecord(r))
	}
	return lines, nil
}

// Applications returns every application header.
func (l *ProjectLedger) Applications() []billing.PayApplication {
	return billing.Headers(l.History)
}

// Frozen returns the submitted and paid applications.
func (l *ProjectLedger) Frozen() []billing.BilledApplication {
	var frozen []billing.BilledApplication
	for _, app := range l.History {
		if app.Status != billing.StatusDraft {
			frozen = append(frozen, app)
		}
	}
	return frozen
}

// Draft returns the project's open draft, if any.
func (l *ProjectLedger) Draft() (billing.BilledApplication, bool) {
	for _, app := range l.History {
		if app.Status == billing.StatusDraft {
			return app, true
		}
	}
	return billing.BilledApplication{}, false
}

// Find returns the application with the given record id.
func (l *ProjectLedger) Find(payAppID string) (billing.BilledApplication, bool) {
	i := slices.IndexFunc(l.History, func(a billing.BilledApplication) bool { return a.ID == payAppID })
	if i < 0 {
		return billing.BilledApplication{}, false
	}
	return l.History[i], true
}

// ContractSumToDate is the original contract plus approved change orders.
func (l *ProjectLedger) ContractSumToDate() float64 {
	return billing.RoundCurrency(l.Project.OriginalContractSum + billing.NetChangeOrders(l.ChangeOrders))
}

// BilledToDate is column G of the latest submitted or paid application.
func (l *ProjectLedger) BilledToDate() float64 {
	latest, ok := billing.LatestApplication(l.Frozen())
	if !ok {
		return 0
	}
	return latest.Summary.TotalCompletedAndStored
}

// ── Record mapping ───────────────────────────────────────────────────────

func dateOf(r *core.Record, field string) time.Time {
	dt := r.GetDateTime(field)
	if dt.IsZero() {
		return time.Time{}
	}
	return dt.Time()
}

func projectFromRecord(r *core.Record) billing.Project {
	return billing.Project{
		ID:                  r.Id,
		Name:                r.GetString("name"),
		ProjectNumber:       r.GetString("project_number"),
		Address:             r.GetString("address"),
		OwnerName:           r.GetString("owner_name"),
		ArchitectName:       r.GetString("architect_name"),
		GCName:              r.GetString("gc_name"),
		GCContactEmail:      r.GetString("gc_contact_email"),
		OriginalContractSum: r.GetFloat("original_contract_sum"),
		ContractDate:        dateOf(r, "contract_date"),
		Retainage: billing.RetainageRates{
			Work:   r.GetFloat("retainage_work_rate"),
			Stored: r.GetFloat("retainage_stored_rate"),
		},
		BillingDay: r.GetInt("billing_day"),
		Status:     r.GetString("status"),
	}
}

func sovItemFromRecord(r *core.Record) billing.ScheduleOfValuesItem {
	return billing.ScheduleOfValuesItem{
		ID:                r.Id,
		ItemNumber:        r.GetString("item_number"),
		Description:       r.GetString("description"),
		ScheduledValue:    r.GetFloat("scheduled_value"),
		SortOrder:         r.GetInt("sort_order"),
		IsFromChangeOrder: r.GetBool("is_from_change_order"),
		ChangeOrderID:     r.GetString("change_order"),
	}
}

func changeOrderFromRecord(r *core.Record) billing.ChangeOrder {
	return billing.ChangeOrder{
		ID:           r.Id,
		Number:       r.GetInt("co_number"),
		Description:  r.GetString("description"),
		Amount:       r.GetFloat("amount"),
		Status:       billing.ChangeOrderStatus(r.GetString("status")),
		DateApproved: dateOf(r, "date_approved"),
	}
}

func payApplicationFromRecord(r *core.Record) billing.PayApplication {
	app := billing.PayApplication{
		ID:                r.Id,
		ApplicationNumber: r.GetInt("application_number"),
		PeriodFrom:        dateOf(r, "period_from"),
		PeriodTo:          dateOf(r, "period_to"),
		Status:            billing.PayAppStatus(r.GetString("status")),
		Summary: billing.G702Summary{
			OriginalContractSum:      r.GetFloat("original_contract_sum"),
			NetChangeOrders:          r.GetFloat("net_change_orders"),
			ContractSumToDate:        r.GetFloat("contract_sum_to_date"),
			TotalCompletedAndStored:  r.GetFloat("total_completed_and_stored"),
			RetainageOnCompleted:     r.GetFloat("retainage_on_completed"),
			RetainageOnStored:        r.GetFloat("retainage_on_stored"),
			TotalRetainage:           r.GetFloat("total_retainage"),
			TotalEarnedLessRetainage: r.GetFloat("total_earned_less_retainage"),
			LessPreviousCertificates: r.GetFloat("less_previous_certificates"),
			CurrentPaymentDue:        r.GetFloat("current_payment_due"),
			BalanceToFinish:          r.GetFloat("balance_to_finish"),
		},
		SubmittedAt: dateOf(r, "submitted_at"),
		PaidAt:      dateOf(r, "paid_at"),
		Retainage: billing.RetainageRates{
			Work:   r.GetFloat("retainage_work_rate"),
			Stored: r.GetFloat("retainage_stored_rate"),
		},
	}
	if !jsonField(r, "change_order_ids", &app.ChangeOrderIDs) {
		app.ChangeOrderIDs = nil
	}
	var header billing.Project
	if jsonField(r, "project_header", &header) {
		app.Project = &header
	}
	return app
}

// jsonField decodes a JSON column into dst. It reports false for an empty
// or null column, and for one that does not decode.
func jsonField(r *core.Record, field string, dst any) bool {
	raw := strings.TrimSpace(r.GetString(field))
	if raw == "" || raw == "null" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Warn("ledger: unreadable json column", "collection", r.Collection().Name, "record", r.Id, "field", field, "error", err)
		return false
	}
	return true
}

func lineItemFromRecord(r *core.Record) billing.LineItem {
	return billing.LineItem{
		LineItemInput: billing.LineItemInput{
			SOVItemID:               r.GetString("sov_item"),
			ItemNumber:              r.GetString("item_number"),
			Description:             r.GetString("description"),
			ScheduledValue:          r.GetFloat("scheduled_value"),
			WorkCompletedPrevious:   r.GetFloat("work_completed_previous"),
			WorkCompletedThisPeriod: r.GetFloat("work_completed_this_period"),
			MaterialsStored:         r.GetFloat("materials_stored"),
		},
		LineItemCalc: billing.LineItemCalc{
			TotalCompletedAndStored: r.GetFloat("total_completed_and_stored"),
			PercentComplete:         r.GetFloat("percent_complete"),
			BalanceToFinish:         r.GetFloat("balance_to_finish"),
			Retainage:               r.GetFloat("retainage"),
		},
	}
}

func setSummary(r *core.Record, s billing.G702Summary) {
	r.Set("original_contract_sum", s.OriginalContractSum)
	r.Set("net_change_orders", s.NetChangeOrders)
	r.Set("contract_sum_to_date", s.ContractSumToDate)
	r.Set("total_completed_and_stored", s.TotalCompletedAndStored)
	r.Set("retainage_on_completed", s.RetainageOnCompleted)
	r.Set("retainage_on_stored", s.RetainageOnStored)
	r.Set("total_retainage", s.TotalRetainage)
	r.Set("total_earned_less_retainage", s.TotalEarnedLessRetainage)
	r.Set("less_previous_certificates", s.LessPreviousCertificates)
	r.Set("current_payment_due", s.CurrentPaymentDue)
	r.Set("balance_to_finish", s.BalanceToFinish)
}

func setLineItem(r *core.Record, payAppID string, sortOrder int, item billing.LineItem) {
	r.Set("pay_application", payAppID)
	r.Set("sov_item", item.SOVItemID)
	r.Set("sort_order", sortOrder)
	r.Set("item_number", item.ItemNumber)
	r.Set("description", item.Description)
	r.Set("scheduled_value", item.ScheduledValue)
	r.Set("work_completed_previous", item.WorkCompletedPrevious)
	r.Set("work_completed_this_period", item.WorkCompletedThisPeriod)
	r.Set("materials_stored", item.MaterialsStored)
	r.Set("total_completed_and_stored", item.TotalCompletedAndStored)
	r.Set("percent_complete", item.PercentComplete)
	r.Set("balance_to_finish", item.BalanceToFinish)
	r.Set("retainage", item.Retainage)
}
