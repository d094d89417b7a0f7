package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/billing"
	"github.com/th3mailmann/bildpro/metrics"
)

// Editable line item columns.
const (
	FieldWorkCompletedThisPeriod = "work_completed_this_period"
	FieldMaterialsStored         = "materials_stored"
)

// PayAppView is a pay application ready to render. For drafts every figure
// is computed from live project state; for submitted and paid applications
// the figures are the stored snapshot.
type PayAppView struct {
	Project      billing.Project                 `json:"project"`
	Application  billing.PayApplication          `json:"application"`
	LineItems    []billing.LineItem              `json:"line_items"`
	Totals       billing.G703Totals              `json:"totals"`
	Validation   billing.ValidationResult        `json:"validation"`
	Retainage    billing.RetainageReconciliation `json:"retainage"`
	ChangeOrders []billing.ChangeOrder           `json:"change_orders"`
}

func newDraftView(ledger *ProjectLedger, c billing.Computation) PayAppView {
	return PayAppView{
		Project:      ledger.Project,
		Application:  draftHeader(c),
		LineItems:    c.LineItems,
		Totals:       c.Totals,
		Validation:   c.Validation,
		Retainage:    billing.ReconcileRetainage(c.LineItems, c.Summary),
		ChangeOrders: approvedChangeOrders(ledger.ChangeOrders),
	}
}

// newSnapshotView shows a frozen application with the project header,
// retainage rates and change orders it was submitted under.
func newSnapshotView(ledger *ProjectLedger, s billing.Snapshot) PayAppView {
	lines := s.LineItems()
	return PayAppView{
		Project:      s.Project(ledger.Project),
		Application:  s.Application(),
		LineItems:    lines,
		Totals:       s.Totals(),
		Validation:   s.Validate(),
		Retainage:    billing.ReconcileRetainage(lines, s.Summary()),
		ChangeOrders: s.ChangeOrders(ledger.ChangeOrders),
	}
}

func approvedChangeOrders(cos []billing.ChangeOrder) []billing.ChangeOrder {
	approved := []billing.ChangeOrder{}
	for _, co := range cos {
		if co.Status == billing.ChangeOrderApproved {
			approved = append(approved, co)
		}
	}
	return approved
}

// ProposeDraft builds the next application for a project without saving
// it: the next number, the default period, and column D carried forward
// from the latest submitted application.
func ProposeDraft(ledger *ProjectLedger, now time.Time) (*billing.Draft, error) {
	if _, ok := ledger.Draft(); ok {
		return nil, fmt.Errorf("project %s: %w", ledger.Project.ID, ErrDraftPending)
	}
	if len(ledger.ScheduleOfValues) == 0 {
		return nil, fmt.Errorf("project %s: %w", ledger.Project.ID, ErrEmptySchedule)
	}

	apps := ledger.Applications()
	number := billing.NextApplicationNumber(apps)
	from, to := billing.DefaultPeriod(apps, ledger.Project.ContractDate, ledger.Project.BillingDay, now)
	lines := billing.CarryForward(ledger.Frozen(), ledger.ScheduleOfValues)

	return billing.NewDraft(ledger.Project, number, from, to, lines), nil
}

// rebuildDraft recreates a stored draft against the current SOV, keeping
// the entered this-period and stored amounts for items that still exist.
func rebuildDraft(ledger *ProjectLedger, stored billing.BilledApplication) *billing.Draft {
	var prior []billing.BilledApplication
	for _, app := range ledger.Frozen() {
		if app.ApplicationNumber < stored.ApplicationNumber {
			prior = append(prior, app)
		}
	}

	lines := billing.CarryForward(prior, ledger.ScheduleOfValues)
	entered := make(map[string]billing.LineItem, len(stored.LineItems))
	for _, item := range stored.LineItems {
		entered[item.SOVItemID] = item
	}
	for i := range lines {
		if item, ok := entered[lines[i].SOVItemID]; ok {
			lines[i].WorkCompletedThisPeriod = item.WorkCompletedThisPeriod
			lines[i].MaterialsStored = item.MaterialsStored
		}
	}

	draft := billing.NewDraft(ledger.Project, stored.ApplicationNumber, stored.PeriodFrom, stored.PeriodTo, lines)
	draft.ID = stored.ID
	return draft
}

func computeDraft(ledger *ProjectLedger, draft *billing.Draft) billing.Computation {
	return draft.Compute(ledger.ChangeOrders, billing.Headers(ledger.Frozen()))
}

// PreviewDraft computes the next application without saving anything.
func PreviewDraft(app core.App, projectID string, now time.Time) (PayAppView, error) {
	ledger, err := LoadProjectLedger(app, projectID)
	if err != nil {
		return PayAppView{}, err
	}
	draft, err := ProposeDraft(ledger, now)
	if err != nil {
		return PayAppView{}, err
	}
	return newDraftView(ledger, computeDraft(ledger, draft)), nil
}

// CreateDraft saves the next application for a project as a draft.
func CreateDraft(app core.App, projectID string, now time.Time) (PayAppView, error) {
	var view PayAppView
	err := app.RunInTransaction(func(txApp core.App) error {
		ledger, err := LoadProjectLedger(txApp, projectID)
		if err != nil {
			return err
		}
		draft, err := ProposeDraft(ledger, now)
		if err != nil {
			return err
		}

		c := computeDraft(ledger, draft)
		rec, err := saveApplication(txApp, projectID, nil, draftHeader(c), c.LineItems)
		if err != nil {
			return err
		}

		c.ID = rec.Id
		view = newDraftView(ledger, c)
		slog.Info("billing: draft created", "project", projectID, "application", c.ApplicationNumber)
		return nil
	})
	return view, err
}

// LoadPayApplication returns a draft recomputed from live inputs, or the
// stored snapshot of a submitted or paid application.
func LoadPayApplication(app core.App, projectID, payAppID string) (PayAppView, error) {
	ledger, err := LoadProjectLedger(app, projectID)
	if err != nil {
		return PayAppView{}, err
	}
	stored, ok := ledger.Find(payAppID)
	if !ok {
		return PayAppView{}, fmt.Errorf("pay application %s: %w", payAppID, ErrNotFound)
	}

	if stored.Status == billing.StatusDraft {
		return newDraftView(ledger, computeDraft(ledger, rebuildDraft(ledger, stored))), nil
	}

	snap, err := billing.RestoreSnapshot(stored.PayApplication, stored.LineItems)
	if err != nil {
		return PayAppView{}, err
	}
	return newSnapshotView(ledger, snap), nil
}

// UpdateDraftLineItem sets this-period work or stored materials on one
// draft line item and saves the recomputed draft.
func UpdateDraftLineItem(app core.App, projectID, payAppID, sovItemID, field string, amount float64) (PayAppView, error) {
	return editDraft(app, projectID, payAppID, func(d *billing.Draft) error {
		switch field {
		case FieldWorkCompletedThisPeriod:
			return d.SetWorkCompletedThisPeriod(sovItemID, amount)
		case FieldMaterialsStored:
			return d.SetMaterialsStored(sovItemID, amount)
		}
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	})
}

// MarkLineItemComplete bills the remaining balance of one line item.
func MarkLineItemComplete(app core.App, projectID, payAppID, sovItemID string) (PayAppView, error) {
	return editDraft(app, projectID, payAppID, func(d *billing.Draft) error {
		return d.MarkComplete(sovItemID)
	})
}

// BillRemaining bills the remaining balance of every line item.
func BillRemaining(app core.App, projectID, payAppID string) (PayAppView, error) {
	return editDraft(app, projectID, payAppID, func(d *billing.Draft) error {
		d.BillRemaining()
		return nil
	})
}

func editDraft(app core.App, projectID, payAppID string, edit func(*billing.Draft) error) (PayAppView, error) {
	var view PayAppView
	err := app.RunInTransaction(func(txApp core.App) error {
		ledger, rec, stored, err := loadForUpdate(txApp, projectID, payAppID)
		if err != nil {
			return err
		}
		if stored.Status != billing.StatusDraft {
			return fmt.Errorf("edit application #%d (%s): %w", stored.ApplicationNumber, stored.Status, billing.ErrNotDraft)
		}

		draft := rebuildDraft(ledger, stored)
		if err := edit(draft); err != nil {
			return err
		}

		c := computeDraft(ledger, draft)
		if _, err := saveApplication(txApp, projectID, rec, draftHeader(c), c.LineItems); err != nil {
			return err
		}
		view = newDraftView(ledger, c)
		return nil
	})
	return view, err
}

// SubmitPayApplication recomputes a draft, validates it and freezes it.
// When validation has errors nothing is saved; the returned view carries
// the findings and the error wraps ErrValidationFailed.
func SubmitPayApplication(app core.App, projectID, payAppID string, now time.Time) (PayAppView, error) {
	var view PayAppView
	err := app.RunInTransaction(func(txApp core.App) error {
		ledger, rec, stored, err := loadForUpdate(txApp, projectID, payAppID)
		if err != nil {
			return err
		}
		if err := billing.Transition(stored.Status, billing.StatusSubmitted); err != nil {
			metrics.ObserveTransition(billing.StatusSubmitted, err)
			return err
		}

		c := computeDraft(ledger, rebuildDraft(ledger, stored))
		logValidation(projectID, c.ApplicationNumber, c.Validation)
		metrics.ObserveValidation(c.Validation)

		snap, err := billing.Freeze(c, now)
		metrics.ObserveTransition(billing.StatusSubmitted, err)
		if err != nil {
			view = newDraftView(ledger, c)
			return err
		}

		frozen := snap.Application()
		if _, err := saveApplication(txApp, projectID, rec, frozen, snap.LineItems()); err != nil {
			return err
		}

		view = newSnapshotView(ledger, snap)
		slog.Info("billing: application submitted",
			"project", projectID,
			"application", frozen.ApplicationNumber,
			"current_payment_due", frozen.Summary.CurrentPaymentDue,
		)
		return nil
	})
	return view, err
}

// MarkPayApplicationPaid moves a submitted application to paid. The stored
// figures are not touched.
func MarkPayApplicationPaid(app core.App, projectID, payAppID string, now time.Time) (PayAppView, error) {
	var view PayAppView
	err := app.RunInTransaction(func(txApp core.App) error {
		ledger, rec, stored, err := loadForUpdate(txApp, projectID, payAppID)
		if err != nil {
			return err
		}
		if stored.Status == billing.StatusDraft {
			err := billing.Transition(stored.Status, billing.StatusPaid)
			metrics.ObserveTransition(billing.StatusPaid, err)
			return err
		}

		snap, err := billing.RestoreSnapshot(stored.PayApplication, stored.LineItems)
		if err != nil {
			return err
		}
		paid, err := snap.MarkPaid(now)
		metrics.ObserveTransition(billing.StatusPaid, err)
		if err != nil {
			return err
		}

		rec.Set("status", string(billing.StatusPaid))
		rec.Set("paid_at", now)
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("save paid status: %w", err)
		}

		view = newSnapshotView(ledger, paid)
		return nil
	})
	return view, err
}

// DeleteDraft removes a draft application and its line items. Submitted
// and paid applications cannot be deleted.
func DeleteDraft(app core.App, projectID, payAppID string) error {
	return app.RunInTransaction(func(txApp core.App) error {
		_, rec, stored, err := loadForUpdate(txApp, projectID, payAppID)
		if err != nil {
			return err
		}
		if stored.Status != billing.StatusDraft {
			return fmt.Errorf("delete application #%d: %w", stored.ApplicationNumber, billing.ErrNotDraft)
		}
		return txApp.Delete(rec)
	})
}

func loadForUpdate(txApp core.App, projectID, payAppID string) (*ProjectLedger, *core.Record, billing.BilledApplication, error) {
	ledger, err := LoadProjectLedger(txApp, projectID)
	if err != nil {
		return nil, nil, billing.BilledApplication{}, err
	}
	stored, ok := ledger.Find(payAppID)
	if !ok {
		return nil, nil, billing.BilledApplication{}, fmt.Errorf("pay application %s: %w", payAppID, ErrNotFound)
	}
	rec, err := txApp.FindRecordById("pay_applications", payAppID)
	if err != nil {
		return nil, nil, billing.BilledApplication{}, fmt.Errorf("pay application %s: %w", payAppID, ErrNotFound)
	}
	return ledger, rec, stored, nil
}

func draftHeader(c billing.Computation) billing.PayApplication {
	return billing.PayApplication{
		ID:                c.ID,
		ApplicationNumber: c.ApplicationNumber,
		PeriodFrom:        c.PeriodFrom,
		PeriodTo:          c.PeriodTo,
		Status:            billing.StatusDraft,
		Summary:           c.Summary,
		Retainage:         c.Rates,
		ChangeOrderIDs:    c.ChangeOrderIDs,
	}
}

// saveApplication writes the header and replaces all line items. rec is
// nil for a new application. Callers run it inside a transaction so the
// header and its line items are stored together.
func saveApplication(txApp core.App, projectID string, rec *core.Record, header billing.PayApplication, lines []billing.LineItem) (*core.Record, error) {
	if rec == nil {
		col, err := txApp.FindCollectionByNameOrId("pay_applications")
		if err != nil {
			return nil, fmt.Errorf("find pay_applications collection: %w", err)
		}
		rec = core.NewRecord(col)
		rec.Set("project", projectID)
	}
	rec.Set("application_number", header.ApplicationNumber)
	rec.Set("period_from", header.PeriodFrom)
	rec.Set("period_to", header.PeriodTo)
	rec.Set("status", string(header.Status))
	rec.Set("submitted_at", header.SubmittedAt)
	setSummary(rec, header.Summary)
	rec.Set("retainage_work_rate", header.Retainage.Work)
	rec.Set("retainage_stored_rate", header.Retainage.Stored)
	rec.Set("change_order_ids", header.ChangeOrderIDs)
	if header.Project != nil {
		rec.Set("project_header", header.Project)
	}
	if err := txApp.Save(rec); err != nil {
		return nil, fmt.Errorf("save pay application #%d: %w", header.ApplicationNumber, err)
	}

	existing, err := txApp.FindRecordsByFilter("pay_app_line_items", "pay_application = {:id}", "", 0, 0, dbx.Params{"id": rec.Id})
	if err != nil {
		return nil, fmt.Errorf("load existing line items: %w", err)
	}
	for _, old := range existing {
		if err := txApp.Delete(old); err != nil {
			return nil, fmt.Errorf("delete line item %s: %w", old.Id, err)
		}
	}

	lineCol, err := txApp.FindCollectionByNameOrId("pay_app_line_items")
	if err != nil {
		return nil, fmt.Errorf("find pay_app_line_items collection: %w", err)
	}
	for i, item := range lines {
		r := core.NewRecord(lineCol)
		setLineItem(r, rec.Id, i+1, item)
		if err := txApp.Save(r); err != nil {
			return nil, fmt.Errorf("save line item %s: %w", item.ItemNumber, err)
		}
	}
	return rec, nil
}

// logValidation logs calculation mismatches at error level since they point
// at a defect in the pipeline, not at user input.
func logValidation(projectID string, number int, r billing.ValidationResult) {
	for _, issue := range r.Errors {
		attrs := []any{"project", projectID, "application", number, "rule", issue.Rule, "field", issue.Field, "line_item", issue.LineItem}
		if issue.Rule == billing.RuleCalculationMismatch {
			slog.Error("billing: "+issue.Message, attrs...)
			continue
		}
		slog.Warn("billing: "+issue.Message, attrs...)
	}
	for _, issue := range r.Warnings {
		slog.Info("billing: "+issue.Message, "project", projectID, "application", number, "rule", issue.Rule, "line_item", issue.LineItem)
	}
}
