package collections

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type sovDef struct {
	itemNumber  string
	description string
	value       float64
}

type changeOrderDef struct {
	number      int
	description string
	amount      float64
	status      string
	addToSOV    bool
}

// ── Demo data ────────────────────────────────────────────────────────────

var demoSOV = []sovDef{
	{"01", "General Conditions", 96000},
	{"02", "Sitework", 148000},
	{"03", "Concrete", 215000},
	{"04", "Masonry", 122000},
	{"05", "Structural Steel", 184000},
	{"06", "Carpentry & Millwork", 87000},
	{"07", "Roofing & Waterproofing", 93000},
	{"08", "Mechanical", 141000},
	{"09", "Electrical", 114000},
}

var demoChangeOrders = []changeOrderDef{
	{1, "Added storm drain at north lot", 18500, "approved", true},
	{2, "Upgrade lobby finishes", 9750, "pending", false},
}

// Seed inserts a demo project with a schedule of values and two change
// orders. It returns early if any project already exists.
func Seed(app core.App) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	existing, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	slog.Info("seed: projects collection is empty, inserting demo project")

	sovCol, err := app.FindCollectionByNameOrId("schedule_of_values")
	if err != nil {
		return fmt.Errorf("seed: could not find schedule_of_values collection: %w", err)
	}
	coCol, err := app.FindCollectionByNameOrId("change_orders")
	if err != nil {
		return fmt.Errorf("seed: could not find change_orders collection: %w", err)
	}

	return app.RunInTransaction(func(txApp core.App) error {
		project := core.NewRecord(projectsCol)
		project.Set("name", "Riverside Medical Office Building")
		project.Set("project_number", "RMOB-2026-014")
		project.Set("address", "2200 Riverside Dr, Sacramento, CA")
		project.Set("owner_name", "Riverside Health Partners")
		project.Set("architect_name", "Lindqvist Architecture")
		project.Set("gc_name", "Delta Ridge Construction")
		project.Set("gc_contact_email", "billing@deltaridge.example")
		project.Set("original_contract_sum", 1200000)
		project.Set("contract_date", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
		project.Set("retainage_work_rate", 0.10)
		project.Set("retainage_stored_rate", 0.10)
		project.Set("billing_day", 25)
		project.Set("status", "active")
		if err := txApp.Save(project); err != nil {
			return fmt.Errorf("seed: save project: %w", err)
		}

		for i, d := range demoSOV {
			r := core.NewRecord(sovCol)
			r.Set("project", project.Id)
			r.Set("item_number", d.itemNumber)
			r.Set("description", d.description)
			r.Set("scheduled_value", d.value)
			r.Set("sort_order", i+1)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: save SOV item %s: %w", d.itemNumber, err)
			}
		}

		sortOrder := len(demoSOV)
		for _, d := range demoChangeOrders {
			co := core.NewRecord(coCol)
			co.Set("project", project.Id)
			co.Set("co_number", d.number)
			co.Set("description", d.description)
			co.Set("amount", d.amount)
			co.Set("status", d.status)
			if d.status == "approved" {
				co.Set("date_approved", time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC))
			}
			if err := txApp.Save(co); err != nil {
				return fmt.Errorf("seed: save change order #%d: %w", d.number, err)
			}

			if !d.addToSOV {
				continue
			}
			sortOrder++
			r := core.NewRecord(sovCol)
			r.Set("project", project.Id)
			r.Set("item_number", fmt.Sprintf("CO-%d", d.number))
			r.Set("description", d.description)
			r.Set("scheduled_value", d.amount)
			r.Set("sort_order", sortOrder)
			r.Set("is_from_change_order", true)
			r.Set("change_order", co.Id)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: save SOV line for change order #%d: %w", d.number, err)
			}
		}

		slog.Info("seed: demo project created", "project", project.Id)
		return nil
	})
}
