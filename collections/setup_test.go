package collections_test

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/collections"
	"github.com/th3mailmann/bildpro/testhelpers"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"projects",
	"change_orders",
	"schedule_of_values",
	"pay_applications",
	"pay_app_line_items",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	before := map[string]string{}
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		before[name] = col.Id
	}

	if err := collections.Setup(app); err != nil {
		t.Fatalf("second Setup() error: %v", err)
	}

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Fatalf("collection %q missing after second Setup(): %v", name, err)
		}
		if col.Id != before[name] {
			t.Errorf("collection %q was recreated: id %s -> %s", name, before[name], col.Id)
		}
	}
}

func TestSetup_AddsMissingFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, err := app.FindCollectionByNameOrId("pay_applications")
	if err != nil {
		t.Fatalf("pay_applications not found: %v", err)
	}
	col.Fields.RemoveByName("project_header")
	col.Fields.RemoveByName("change_order_ids")
	if err := app.Save(col); err != nil {
		t.Fatalf("drop fields: %v", err)
	}

	if err := collections.Setup(app); err != nil {
		t.Fatalf("Setup() error: %v", err)
	}

	col, err = app.FindCollectionByNameOrId("pay_applications")
	if err != nil {
		t.Fatalf("pay_applications not found: %v", err)
	}
	assertFields(t, col, "project_header", "change_order_ids")
}

func assertFields(t *testing.T, col *core.Collection, names ...string) {
	t.Helper()
	for _, name := range names {
		if col.Fields.GetByName(name) == nil {
			t.Errorf("collection %q is missing field %q", col.Name, name)
		}
	}
}

func TestSetup_PayApplicationsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, err := app.FindCollectionByNameOrId("pay_applications")
	if err != nil {
		t.Fatalf("pay_applications not found: %v", err)
	}

	assertFields(t, col,
		"project", "application_number", "period_from", "period_to", "status",
		"original_contract_sum", "net_change_orders", "contract_sum_to_date",
		"total_completed_and_stored", "retainage_on_completed", "retainage_on_stored",
		"total_retainage", "total_earned_less_retainage", "less_previous_certificates",
		"current_payment_due", "balance_to_finish", "submitted_at", "paid_at",
		"retainage_work_rate", "retainage_stored_rate", "change_order_ids", "project_header",
	)

	status, ok := col.Fields.GetByName("status").(*core.SelectField)
	if !ok {
		t.Fatal("status is not a select field")
	}
	if len(status.Values) != 3 {
		t.Errorf("status values = %v, want draft/submitted/paid", status.Values)
	}
}

func TestSetup_LineItemsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, err := app.FindCollectionByNameOrId("pay_app_line_items")
	if err != nil {
		t.Fatalf("pay_app_line_items not found: %v", err)
	}

	assertFields(t, col,
		"pay_application", "sov_item", "item_number", "description", "scheduled_value",
		"work_completed_previous", "work_completed_this_period", "materials_stored",
		"total_completed_and_stored", "percent_complete", "balance_to_finish", "retainage",
	)

	rel, ok := col.Fields.GetByName("pay_application").(*core.RelationField)
	if !ok {
		t.Fatal("pay_application is not a relation field")
	}
	if !rel.CascadeDelete {
		t.Error("line items should be deleted with their pay application")
	}
}

func TestSetup_ProjectsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("projects not found: %v", err)
	}

	assertFields(t, col,
		"name", "original_contract_sum", "contract_date", "retainage_work_rate",
		"retainage_stored_rate", "billing_day", "status",
	)
}

func TestSetup_RejectsDuplicateApplicationNumber(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Dup", 1000)

	col, _ := app.FindCollectionByNameOrId("pay_applications")
	first := core.NewRecord(col)
	first.Set("project", proj.Id)
	first.Set("application_number", 1)
	first.Set("status", "draft")
	if err := app.Save(first); err != nil {
		t.Fatalf("save first application: %v", err)
	}

	second := core.NewRecord(col)
	second.Set("project", proj.Id)
	second.Set("application_number", 1)
	second.Set("status", "draft")
	if err := app.Save(second); err == nil {
		t.Error("expected unique index to reject a second application #1")
	}
}

func TestSetup_RejectsBillingDayOutOfRange(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("projects")

	record := core.NewRecord(col)
	record.Set("name", "Bad billing day")
	record.Set("billing_day", 31)
	record.Set("status", "active")
	if err := app.Save(record); err == nil {
		t.Error("expected billing_day 31 to be rejected")
	}
}

func TestSetup_ProjectCascadeDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Cascade", 1000)
	testhelpers.CreateTestSOVItem(t, app, proj.Id, "1", "Work", 1000, 1)
	testhelpers.CreateTestChangeOrder(t, app, proj.Id, 1, 100, "pending")

	if err := app.Delete(proj); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	for _, name := range []string{"schedule_of_values", "change_orders"} {
		records, err := app.FindAllRecords(name)
		if err != nil {
			t.Fatalf("query %s: %v", name, err)
		}
		if len(records) != 0 {
			t.Errorf("%s has %d records after project delete, want 0", name, len(records))
		}
	}
}
