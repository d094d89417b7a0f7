package billing

import "slices"

// NextApplicationNumber is one past the highest existing number, or 1.
func NextApplicationNumber(history []PayApplication) int {
	maxNumber := 0
	for _, app := range history {
		if app.ApplicationNumber > maxNumber {
			maxNumber = app.ApplicationNumber
		}
	}
	return maxNumber + 1
}

// PreviousApplications keeps only applications numbered below number.
func PreviousApplications(history []PayApplication, number int) []PayApplication {
	var previous []PayApplication
	for _, app := range history {
		if app.ApplicationNumber < number {
			previous = append(previous, app)
		}
	}
	return previous
}

// Headers drops line item detail from billed applications.
func Headers(history []BilledApplication) []PayApplication {
	apps := make([]PayApplication, len(history))
	for i, app := range history {
		apps[i] = app.PayApplication
	}
	return apps
}

// ChainBreak describes an application whose line 7 does not equal the sum
// of line 6 across the applications before it.
type ChainBreak struct {
	ApplicationNumber int     `json:"application_number"`
	Expected          float64 `json:"expected"`
	Actual            float64 `json:"actual"`
}

// VerifyHistory walks applications in number order and checks that each
// line 7 equals the running total of earlier line 6 values.
func VerifyHistory(history []PayApplication) []ChainBreak {
	ordered := slices.Clone(history)
	slices.SortFunc(ordered, func(a, b PayApplication) int {
		return a.ApplicationNumber - b.ApplicationNumber
	})

	var breaks []ChainBreak
	var running float64
	for _, app := range ordered {
		expected := RoundCurrency(running)
		actual := RoundCurrency(app.Summary.LessPreviousCertificates)
		if expected != actual {
			breaks = append(breaks, ChainBreak{
				ApplicationNumber: app.ApplicationNumber,
				Expected:          expected,
				Actual:            actual,
			})
		}
		running += app.Summary.TotalEarnedLessRetainage
	}
	return breaks
}

// RetainageReconciliation compares the aggregate retainage on G702 line 5c
// against the sum of per-item retainage on the continuation sheet.
type RetainageReconciliation struct {
	Aggregate  float64 `json:"aggregate"`
	PerItemSum float64 `json:"per_item_sum"`
	Difference float64 `json:"difference"`
	Reconciled bool    `json:"reconciled"`
}

// ReconcileRetainage reports divergence between the two retainage figures.
// The aggregate stays authoritative; per-item retainage rounds each row
// separately, so a few cents of drift can appear across many items.
func ReconcileRetainage(items []LineItem, summary G702Summary) RetainageReconciliation {
	var perItem float64
	for _, item := range items {
		perItem += item.Retainage
	}
	perItem = RoundCurrency(perItem)

	return RetainageReconciliation{
		Aggregate:  summary.TotalRetainage,
		PerItemSum: perItem,
		Difference: RoundCurrency(summary.TotalRetainage - perItem),
		Reconciled: WithinTolerance(summary.TotalRetainage, perItem),
	}
}
