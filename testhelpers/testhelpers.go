// Package testhelpers provides utilities for testing the PocketBase-backed
// billing services and handlers.
package testhelpers

import (
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	if err := collections.Setup(app); err != nil {
		t.Fatalf("failed to set up collections: %v", err)
	}

	return app
}

// CreateTestProject creates an active project billing on the 25th with 10%
// retainage on work and stored materials.
func CreateTestProject(t *testing.T, app core.App, name string, contractSum float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("original_contract_sum", contractSum)
	record.Set("contract_date", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	record.Set("retainage_work_rate", 0.10)
	record.Set("retainage_stored_rate", 0.10)
	record.Set("billing_day", 25)
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestSOVItem adds a schedule of values line to a project.
func CreateTestSOVItem(t *testing.T, app core.App, projectID, itemNumber, description string, value float64, sortOrder int) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("schedule_of_values")
	if err != nil {
		t.Fatalf("failed to find schedule_of_values collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("item_number", itemNumber)
	record.Set("description", description)
	record.Set("scheduled_value", value)
	record.Set("sort_order", sortOrder)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test SOV item: %v", err)
	}

	return record
}

// CreateTestChangeOrder creates a change order with the given status.
func CreateTestChangeOrder(t *testing.T, app core.App, projectID string, number int, amount float64, status string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("change_orders")
	if err != nil {
		t.Fatalf("failed to find change_orders collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("co_number", number)
	record.Set("description", "Test change order")
	record.Set("amount", amount)
	record.Set("status", status)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test change order: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
