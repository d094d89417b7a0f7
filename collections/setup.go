package collections

import (
	"fmt"
	"log/slog"

	"github.com/pocketbase/pocketbase/core"
)

// Setup creates the billing collections if they do not exist: projects,
// change_orders, schedule_of_values, pay_applications and
// pay_app_line_items.
func Setup(app core.App) error {
	projects, err := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "project_number"})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.TextField{Name: "owner_name"})
		c.Fields.Add(&core.TextField{Name: "architect_name"})
		c.Fields.Add(&core.TextField{Name: "gc_name"})
		c.Fields.Add(&core.EmailField{Name: "gc_contact_email"})
		c.Fields.Add(&core.NumberField{Name: "original_contract_sum", Min: ptr(0)})
		c.Fields.Add(&core.DateField{Name: "contract_date"})
		c.Fields.Add(&core.NumberField{Name: "retainage_work_rate", Min: ptr(0), Max: ptr(1)})
		c.Fields.Add(&core.NumberField{Name: "retainage_stored_rate", Min: ptr(0), Max: ptr(1)})
		c.Fields.Add(&core.NumberField{Name: "billing_day", Required: true, OnlyInt: true, Min: ptr(1), Max: ptr(28)})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "completed", "archived"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
	if err != nil {
		return err
	}

	changeOrders, err := ensureCollection(app, "change_orders", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "co_number", Required: true, OnlyInt: true, Min: ptr(1)})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.NumberField{Name: "amount"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"pending", "approved", "rejected"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.DateField{Name: "date_approved"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_change_orders_project_number", true, "project, co_number", "")
	})
	if err != nil {
		return err
	}

	sov, err := ensureCollection(app, "schedule_of_values", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "item_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.NumberField{Name: "scheduled_value"})
		c.Fields.Add(&core.NumberField{Name: "sort_order", OnlyInt: true})
		c.Fields.Add(&core.BoolField{Name: "is_from_change_order"})
		c.Fields.Add(&core.RelationField{
			Name:         "change_order",
			CollectionId: changeOrders.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
	if err != nil {
		return err
	}

	payApps, err := ensureCollection(app, "pay_applications", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "application_number", Required: true, OnlyInt: true, Min: ptr(1)})
		c.Fields.Add(&core.DateField{Name: "period_from"})
		c.Fields.Add(&core.DateField{Name: "period_to"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "submitted", "paid"},
			MaxSelect: 1,
		})
		for _, name := range summaryFields {
			c.Fields.Add(&core.NumberField{Name: name})
		}
		c.Fields.Add(&core.DateField{Name: "submitted_at"})
		c.Fields.Add(&core.DateField{Name: "paid_at"})
		// Terms fixed at submission.
		c.Fields.Add(&core.NumberField{Name: "retainage_work_rate", Min: ptr(0), Max: ptr(1)})
		c.Fields.Add(&core.NumberField{Name: "retainage_stored_rate", Min: ptr(0), Max: ptr(1)})
		c.Fields.Add(&core.JSONField{Name: "change_order_ids"})
		c.Fields.Add(&core.JSONField{Name: "project_header"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_pay_applications_project_number", true, "project, application_number", "")
	})
	if err != nil {
		return err
	}

	_, err = ensureCollection(app, "pay_app_line_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "pay_application",
			Required:      true,
			CollectionId:  payApps.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "sov_item",
			CollectionId: sov.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "item_number"})
		c.Fields.Add(&core.TextField{Name: "description"})
		for _, name := range lineItemFields {
			c.Fields.Add(&core.NumberField{Name: name})
		}
	})
	return err
}

// summaryFields are the G702 snapshot columns stored on pay_applications.
var summaryFields = []string{
	"original_contract_sum",
	"net_change_orders",
	"contract_sum_to_date",
	"total_completed_and_stored",
	"retainage_on_completed",
	"retainage_on_stored",
	"total_retainage",
	"total_earned_less_retainage",
	"less_previous_certificates",
	"current_payment_due",
	"balance_to_finish",
}

// lineItemFields are the G703 columns stored on pay_app_line_items.
var lineItemFields = []string{
	"scheduled_value",
	"work_completed_previous",
	"work_completed_this_period",
	"materials_stored",
	"total_completed_and_stored",
	"percent_complete",
	"balance_to_finish",
	"retainage",
}

func ptr(v float64) *float64 {
	return &v
}

// ensureCollection returns the named collection, creating it with the
// fields added by addFields when it does not exist yet. An existing
// collection gets any fields it is missing; indexes are left alone.
func ensureCollection(app core.App, name string, addFields func(*core.Collection)) (*core.Collection, error) {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		return existing, addMissingFields(app, existing, addFields)
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("collections: create %q: %w", name, err)
	}

	slog.Info("collections: created", "collection", name, "id", collection.Id)
	return collection, nil
}

func addMissingFields(app core.App, existing *core.Collection, addFields func(*core.Collection)) error {
	want := core.NewBaseCollection(existing.Name)
	addFields(want)

	var added []string
	for _, f := range want.Fields {
		if existing.Fields.GetByName(f.GetName()) == nil {
			existing.Fields.Add(f)
			added = append(added, f.GetName())
		}
	}
	if len(added) == 0 {
		slog.Debug("collections: already exists, skipping creation", "collection", existing.Name)
		return nil
	}

	if err := app.Save(existing); err != nil {
		return fmt.Errorf("collections: add fields to %q: %w", existing.Name, err)
	}
	slog.Info("collections: added fields", "collection", existing.Name, "fields", added)
	return nil
}
