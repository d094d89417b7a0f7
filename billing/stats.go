package billing

import "time"

// ProjectPercentComplete is total billed to date over the contract sum to
// date, as a fraction.
func ProjectPercentComplete(totalCompleted, contractSumToDate float64) float64 {
	return PercentComplete(totalCompleted, contractSumToDate)
}

type DashboardStats struct {
	ActiveProjects  int     `json:"active_projects"`
	BilledThisMonth float64 `json:"billed_this_month"`
	Outstanding     float64 `json:"outstanding"`
	RetainageHeld   float64 `json:"retainage_held"`
}

// ComputeDashboardStats rolls up applications across projects. Billed this
// month counts applications submitted in now's calendar month; outstanding
// counts submitted but unpaid applications; retainage held counts every
// application not yet paid.
func ComputeDashboardStats(activeProjects int, apps []PayApplication, now time.Time) DashboardStats {
	stats := DashboardStats{ActiveProjects: activeProjects}
	for _, app := range apps {
		if !app.SubmittedAt.IsZero() {
			submitted := app.SubmittedAt.In(now.Location())
			if submitted.Year() == now.Year() && submitted.Month() == now.Month() {
				stats.BilledThisMonth += app.Summary.CurrentPaymentDue
			}
		}
		if app.Status == StatusSubmitted {
			stats.Outstanding += app.Summary.CurrentPaymentDue
		}
		if app.Status != StatusPaid {
			stats.RetainageHeld += app.Summary.TotalRetainage
		}
	}
	stats.BilledThisMonth = RoundCurrency(stats.BilledThisMonth)
	stats.Outstanding = RoundCurrency(stats.Outstanding)
	stats.RetainageHeld = RoundCurrency(stats.RetainageHeld)
	return stats
}
