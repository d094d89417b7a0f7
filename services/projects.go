package services

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/billing"
)

// SOVItemInput is one schedule of values line on a new project.
type SOVItemInput struct {
	ItemNumber     string  `json:"item_number"`
	Description    string  `json:"description"`
	ScheduledValue float64 `json:"scheduled_value"`
}

func (in SOVItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ItemNumber, validation.Required, validation.Length(1, 20)),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.ScheduledValue, validation.Min(0.0)),
	)
}

// ProjectInput creates a project together with its schedule of values.
type ProjectInput struct {
	Name                string         `json:"name"`
	ProjectNumber       string         `json:"project_number"`
	Address             string         `json:"address"`
	OwnerName           string         `json:"owner_name"`
	ArchitectName       string         `json:"architect_name"`
	GCName              string         `json:"gc_name"`
	GCContactEmail      string         `json:"gc_contact_email"`
	OriginalContractSum float64        `json:"original_contract_sum"`
	ContractDate        time.Time      `json:"contract_date"`
	RetainageWorkRate   float64        `json:"retainage_work_rate"`
	RetainageStoredRate float64        `json:"retainage_stored_rate"`
	BillingDay          int            `json:"billing_day"`
	ScheduleOfValues    []SOVItemInput `json:"schedule_of_values"`
}

func (in ProjectInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.GCContactEmail, is.EmailFormat),
		validation.Field(&in.OriginalContractSum, validation.Min(0.0)),
		validation.Field(&in.RetainageWorkRate, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&in.RetainageStoredRate, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&in.BillingDay, validation.Required, validation.Min(1), validation.Max(28)),
		validation.Field(&in.ScheduleOfValues),
	)
}

// CreateProject saves a project and its schedule of values together.
func CreateProject(app core.App, in ProjectInput) (billing.Project, error) {
	if err := in.Validate(); err != nil {
		return billing.Project{}, err
	}

	var project billing.Project
	err := app.RunInTransaction(func(txApp core.App) error {
		col, err := txApp.FindCollectionByNameOrId("projects")
		if err != nil {
			return fmt.Errorf("find projects collection: %w", err)
		}
		rec := core.NewRecord(col)
		rec.Set("name", in.Name)
		rec.Set("project_number", in.ProjectNumber)
		rec.Set("address", in.Address)
		rec.Set("owner_name", in.OwnerName)
		rec.Set("architect_name", in.ArchitectName)
		rec.Set("gc_name", in.GCName)
		rec.Set("gc_contact_email", in.GCContactEmail)
		rec.Set("original_contract_sum", billing.RoundCurrency(in.OriginalContractSum))
		rec.Set("contract_date", in.ContractDate)
		rec.Set("retainage_work_rate", in.RetainageWorkRate)
		rec.Set("retainage_stored_rate", in.RetainageStoredRate)
		rec.Set("billing_day", in.BillingDay)
		rec.Set("status", "active")
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("save project: %w", err)
		}

		sovCol, err := txApp.FindCollectionByNameOrId("schedule_of_values")
		if err != nil {
			return fmt.Errorf("find schedule_of_values collection: %w", err)
		}
		for i, item := range in.ScheduleOfValues {
			r := core.NewRecord(sovCol)
			r.Set("project", rec.Id)
			r.Set("item_number", item.ItemNumber)
			r.Set("description", item.Description)
			r.Set("scheduled_value", billing.RoundCurrency(item.ScheduledValue))
			r.Set("sort_order", i+1)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("save SOV item %s: %w", item.ItemNumber, err)
			}
		}

		project = projectFromRecord(rec)
		return nil
	})
	return project, err
}
