package billing

// CalculateG703Totals sums the continuation sheet columns. Column G and I
// totals are summed from per-item rounded values, then rounded once more.
func CalculateG703Totals(items []LineItemInput) G703Totals {
	var totals G703Totals
	for _, item := range items {
		total := TotalCompletedAndStored(item.WorkCompletedPrevious, item.WorkCompletedThisPeriod, item.MaterialsStored)

		totals.ScheduledValue += item.ScheduledValue
		totals.WorkCompletedPrevious += item.WorkCompletedPrevious
		totals.WorkCompletedThisPeriod += item.WorkCompletedThisPeriod
		totals.MaterialsStored += item.MaterialsStored
		totals.TotalCompletedAndStored += total
		totals.BalanceToFinish += BalanceToFinish(item.ScheduledValue, total)
	}

	totals.ScheduledValue = RoundCurrency(totals.ScheduledValue)
	totals.WorkCompletedPrevious = RoundCurrency(totals.WorkCompletedPrevious)
	totals.WorkCompletedThisPeriod = RoundCurrency(totals.WorkCompletedThisPeriod)
	totals.MaterialsStored = RoundCurrency(totals.MaterialsStored)
	totals.TotalCompletedAndStored = RoundCurrency(totals.TotalCompletedAndStored)
	totals.BalanceToFinish = RoundCurrency(totals.BalanceToFinish)
	return totals
}

// ScheduleOfValuesTotal sums scheduled values across the SOV.
func ScheduleOfValuesTotal(sov []ScheduleOfValuesItem) float64 {
	var sum float64
	for _, item := range sov {
		sum += item.ScheduledValue
	}
	return RoundCurrency(sum)
}
