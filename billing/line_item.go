package billing

// TotalCompletedAndStored is column G: D + E + F.
func TotalCompletedAndStored(previous, thisPeriod, stored float64) float64 {
	return RoundCurrency(previous + thisPeriod + stored)
}

// PercentComplete is column H, G / C as a fraction. A zero scheduled value
// yields 0. Overbilled items report more than 1.
func PercentComplete(totalCompleted, scheduledValue float64) float64 {
	if scheduledValue == 0 {
		return 0
	}
	return RoundPercentage(totalCompleted / scheduledValue)
}

// BalanceToFinish is column I: C - G. Negative when overbilled.
func BalanceToFinish(scheduledValue, totalCompleted float64) float64 {
	return RoundCurrency(scheduledValue - totalCompleted)
}

// LineItemRetainage withholds the work rate on D + E and the stored rate on F.
func LineItemRetainage(previous, thisPeriod, stored float64, rates RetainageRates) float64 {
	workRetainage := (previous + thisPeriod) * rates.Work
	storedRetainage := stored * rates.Stored
	return RoundCurrency(workRetainage + storedRetainage)
}

// RemainingBalance is what is left to bill this period on an item given what
// was billed before and what is stored: C - D - F.
func RemainingBalance(scheduledValue, previous, stored float64) float64 {
	return RoundCurrency(scheduledValue - previous - stored)
}

// CalculateLineItem derives columns G, H and I and the row retainage.
func CalculateLineItem(in LineItemInput, rates RetainageRates) LineItemCalc {
	total := TotalCompletedAndStored(in.WorkCompletedPrevious, in.WorkCompletedThisPeriod, in.MaterialsStored)
	return LineItemCalc{
		TotalCompletedAndStored: total,
		PercentComplete:         PercentComplete(total, in.ScheduledValue),
		BalanceToFinish:         BalanceToFinish(in.ScheduledValue, total),
		Retainage:               LineItemRetainage(in.WorkCompletedPrevious, in.WorkCompletedThisPeriod, in.MaterialsStored, rates),
	}
}

// BuildLineItems derives G, H, I and retainage for every input row.
func BuildLineItems(inputs []LineItemInput, rates RetainageRates) []LineItem {
	items := make([]LineItem, len(inputs))
	for i, in := range inputs {
		items[i] = LineItem{LineItemInput: in, LineItemCalc: CalculateLineItem(in, rates)}
	}
	return items
}

// Inputs strips derived columns from line items.
func Inputs(items []LineItem) []LineItemInput {
	inputs := make([]LineItemInput, len(items))
	for i, item := range items {
		inputs[i] = item.LineItemInput
	}
	return inputs
}
