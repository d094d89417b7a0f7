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

// ProjectOverview summarizes a project's billing position.
type ProjectOverview struct {
	Project             billing.Project          `json:"project"`
	ContractSumToDate   float64                  `json:"contract_sum_to_date"`
	ScheduleTotal       float64                  `json:"schedule_total"`
	NetChangeOrders     float64                  `json:"net_change_orders"`
	PendingChangeOrders float64                  `json:"pending_change_orders"`
	BilledToDate        float64                  `json:"billed_to_date"`
	PercentComplete     float64                  `json:"percent_complete"`
	NextBillingDate     time.Time                `json:"next_billing_date"`
	DaysUntilBilling    int                      `json:"days_until_billing"`
	Applications        []billing.PayApplication `json:"applications"`
	ChangeOrders        []billing.ChangeOrder    `json:"change_orders"`
}

// LoadProjectOverview reads a project's ledger and derives its overview.
func LoadProjectOverview(app core.App, projectID string, now time.Time) (ProjectOverview, error) {
	ledger, err := LoadProjectLedger(app, projectID)
	if err != nil {
		return ProjectOverview{}, err
	}

	contractSum := ledger.ContractSumToDate()
	billed := ledger.BilledToDate()
	return ProjectOverview{
		Project:             ledger.Project,
		ContractSumToDate:   contractSum,
		ScheduleTotal:       billing.ScheduleOfValuesTotal(ledger.ScheduleOfValues),
		NetChangeOrders:     billing.NetChangeOrders(ledger.ChangeOrders),
		PendingChangeOrders: billing.PendingChangeOrders(ledger.ChangeOrders),
		BilledToDate:        billed,
		PercentComplete:     billing.ProjectPercentComplete(billed, contractSum),
		NextBillingDate:     billing.NextBillingDate(ledger.Project.BillingDay, now),
		DaysUntilBilling:    billing.DaysUntilBilling(ledger.Project.BillingDay, now),
		Applications:        ledger.Applications(),
		ChangeOrders:        ledger.ChangeOrders,
	}, nil
}

// Dashboard rolls up billing across every project. Drafts are recomputed
// from live inputs, so their retainage follows change orders and SOV edits
// made since they were last saved.
func Dashboard(app core.App, now time.Time) (billing.DashboardStats, error) {
	active, err := app.FindRecordsByFilter("projects", "status = {:status}", "", 0, 0, dbx.Params{"status": "active"})
	if err != nil {
		return billing.DashboardStats{}, fmt.Errorf("load active projects: %w", err)
	}

	recs, err := app.FindAllRecords("pay_applications")
	if err != nil {
		return billing.DashboardStats{}, fmt.Errorf("load pay applications: %w", err)
	}
	apps := make([]billing.PayApplication, len(recs))
	for i, r := range recs {
		apps[i] = payApplicationFromRecord(r)
		if apps[i].Status != billing.StatusDraft {
			continue
		}
		if apps[i], err = currentDraft(app, r.GetString("project"), r.Id); err != nil {
			return billing.DashboardStats{}, err
		}
	}

	return billing.ComputeDashboardStats(len(active), apps, now), nil
}

// currentDraft recomputes a stored draft against its project's live state.
func currentDraft(app core.App, projectID, payAppID string) (billing.PayApplication, error) {
	ledger, err := LoadProjectLedger(app, projectID)
	if err != nil {
		return billing.PayApplication{}, err
	}
	stored, ok := ledger.Find(payAppID)
	if !ok {
		return billing.PayApplication{}, fmt.Errorf("pay application %s: %w", payAppID, ErrNotFound)
	}
	return draftHeader(computeDraft(ledger, rebuildDraft(ledger, stored))), nil
}

// VerifyProjectHistory checks line 7 of every submitted and paid
// application against the line 6 values before it.
func VerifyProjectHistory(app core.App, projectID string) ([]billing.ChainBreak, error) {
	ledger, err := LoadProjectLedger(app, projectID)
	if err != nil {
		return nil, err
	}

	breaks := billing.VerifyHistory(billing.Headers(ledger.Frozen()))
	for _, b := range breaks {
		slog.Error("billing: previous certificates do not match history",
			"project", projectID,
			"application", b.ApplicationNumber,
			"expected", b.Expected,
			"actual", b.Actual,
		)
	}
	metrics.ObserveChainBreaks(len(breaks))
	return breaks, nil
}

// VerifyAllProjects runs VerifyProjectHistory for every project and
// returns the breaks keyed by project id. Projects with a clean history
// are left out.
func VerifyAllProjects(app core.App) (map[string][]billing.ChainBreak, error) {
	projects, err := app.FindAllRecords("projects")
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	result := make(map[string][]billing.ChainBreak)
	for _, p := range projects {
		breaks, err := VerifyProjectHistory(app, p.Id)
		if err != nil {
			return nil, err
		}
		if len(breaks) > 0 {
			result[p.Id] = breaks
		}
	}
	return result, nil
}
