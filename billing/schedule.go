package billing

import (
	"math"
	"time"
)

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextBillingDate is this month's billing day if it is still ahead of now,
// otherwise next month's.
func NextBillingDate(billingDay int, now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), billingDay, 0, 0, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 1, 0)
	}
	return candidate
}

// DaysUntilBilling counts whole or partial days until the next billing date.
func DaysUntilBilling(billingDay int, now time.Time) int {
	next := NextBillingDate(billingDay, now)
	return int(math.Ceil(next.Sub(now).Hours() / 24))
}

// DefaultPeriod proposes the period for a new application. It starts the
// day after the latest application's period end, or on the contract date
// for the first application, and ends on the billing day of the current
// month, rolling to next month when that would precede the start.
func DefaultPeriod(history []PayApplication, contractDate time.Time, billingDay int, now time.Time) (from, to time.Time) {
	from = dateOnly(contractDate)

	var latest *PayApplication
	for i := range history {
		if latest == nil || history[i].ApplicationNumber > latest.ApplicationNumber {
			latest = &history[i]
		}
	}
	if latest != nil && !latest.PeriodTo.IsZero() {
		from = dateOnly(latest.PeriodTo).AddDate(0, 0, 1)
	}
	if from.IsZero() {
		from = dateOnly(now)
	}

	to = time.Date(now.Year(), now.Month(), billingDay, 0, 0, 0, 0, now.Location())
	if to.Before(from) {
		to = to.AddDate(0, 1, 0)
	}
	return from, to
}
