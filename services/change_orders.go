package services

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/billing"
)

// ChangeOrderInput is a new change order. A zero Number takes the next
// number for the project.
type ChangeOrderInput struct {
	Number      int     `json:"co_number"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

func (in ChangeOrderInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Number, validation.Min(0)),
		validation.Field(&in.Description, validation.Required, validation.Length(1, 500)),
		validation.Field(&in.Amount, validation.Required),
	)
}

// CreateChangeOrder adds a pending change order to a project.
func CreateChangeOrder(app core.App, projectID string, in ChangeOrderInput) (billing.ChangeOrder, error) {
	if err := in.Validate(); err != nil {
		return billing.ChangeOrder{}, err
	}

	var created billing.ChangeOrder
	err := app.RunInTransaction(func(txApp core.App) error {
		if _, err := txApp.FindRecordById("projects", projectID); err != nil {
			return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
		}

		number := in.Number
		if number == 0 {
			existing, err := txApp.FindRecordsByFilter("change_orders", "project = {:pid}", "", 0, 0, dbx.Params{"pid": projectID})
			if err != nil {
				return fmt.Errorf("load change orders: %w", err)
			}
			cos := make([]billing.ChangeOrder, len(existing))
			for i, r := range existing {
				cos[i] = changeOrderFromRecord(r)
			}
			number = billing.NextChangeOrderNumber(cos)
		}

		col, err := txApp.FindCollectionByNameOrId("change_orders")
		if err != nil {
			return fmt.Errorf("find change_orders collection: %w", err)
		}
		rec := core.NewRecord(col)
		rec.Set("project", projectID)
		rec.Set("co_number", number)
		rec.Set("description", in.Description)
		rec.Set("amount", billing.RoundCurrency(in.Amount))
		rec.Set("status", string(billing.ChangeOrderPending))
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("save change order #%d: %w", number, err)
		}

		created = changeOrderFromRecord(rec)
		return nil
	})
	return created, err
}

// ApproveChangeOrder approves a pending change order. With addToSOV the
// amount is also added as a new schedule of values line so the SOV keeps
// matching the contract sum.
func ApproveChangeOrder(app core.App, projectID, coID string, approvedOn time.Time, addToSOV bool) (billing.ChangeOrder, error) {
	var approved billing.ChangeOrder
	err := app.RunInTransaction(func(txApp core.App) error {
		rec, err := findChangeOrder(txApp, projectID, coID)
		if err != nil {
			return err
		}

		approved, err = billing.ApproveChangeOrder(changeOrderFromRecord(rec), approvedOn)
		if err != nil {
			return err
		}
		rec.Set("status", string(approved.Status))
		rec.Set("date_approved", approved.DateApproved)
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("save change order #%d: %w", approved.Number, err)
		}

		if !addToSOV {
			return nil
		}

		sovRecs, err := txApp.FindRecordsByFilter("schedule_of_values", "project = {:pid}", "", 0, 0, dbx.Params{"pid": projectID})
		if err != nil {
			return fmt.Errorf("load schedule of values: %w", err)
		}
		maxSort := 0
		for _, r := range sovRecs {
			maxSort = max(maxSort, r.GetInt("sort_order"))
		}

		item := billing.ScheduleItemForChangeOrder(approved, maxSort+1)
		col, err := txApp.FindCollectionByNameOrId("schedule_of_values")
		if err != nil {
			return fmt.Errorf("find schedule_of_values collection: %w", err)
		}
		sovRec := core.NewRecord(col)
		sovRec.Set("project", projectID)
		sovRec.Set("item_number", item.ItemNumber)
		sovRec.Set("description", item.Description)
		sovRec.Set("scheduled_value", item.ScheduledValue)
		sovRec.Set("sort_order", item.SortOrder)
		sovRec.Set("is_from_change_order", true)
		sovRec.Set("change_order", item.ChangeOrderID)
		if err := txApp.Save(sovRec); err != nil {
			return fmt.Errorf("save SOV line for change order #%d: %w", approved.Number, err)
		}

		slog.Info("billing: change order added to schedule of values", "project", projectID, "change_order", approved.Number)
		return nil
	})
	return approved, err
}

// RejectChangeOrder rejects a pending change order. Rejection is final.
func RejectChangeOrder(app core.App, projectID, coID string) (billing.ChangeOrder, error) {
	var rejected billing.ChangeOrder
	err := app.RunInTransaction(func(txApp core.App) error {
		rec, err := findChangeOrder(txApp, projectID, coID)
		if err != nil {
			return err
		}
		rejected, err = billing.RejectChangeOrder(changeOrderFromRecord(rec))
		if err != nil {
			return err
		}
		rec.Set("status", string(rejected.Status))
		return txApp.Save(rec)
	})
	return rejected, err
}

func findChangeOrder(app core.App, projectID, coID string) (*core.Record, error) {
	rec, err := app.FindRecordById("change_orders", coID)
	if err != nil || rec.GetString("project") != projectID {
		return nil, fmt.Errorf("change order %s: %w", coID, ErrNotFound)
	}
	return rec, nil
}
