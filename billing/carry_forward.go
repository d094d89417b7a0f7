package billing

// LatestApplication returns the application with the highest number.
func LatestApplication(history []BilledApplication) (BilledApplication, bool) {
	var latest BilledApplication
	found := false
	for _, app := range history {
		if !found || app.ApplicationNumber > latest.ApplicationNumber {
			latest = app
			found = true
		}
	}
	return latest, found
}

// CarryForward seeds a new application's line items from the current SOV.
// Column D comes from the latest prior application's column G for the same
// SOV item id; items the prior application did not bill start at 0. This
// period and stored materials always start at 0.
func CarryForward(history []BilledApplication, sov []ScheduleOfValuesItem) []LineItemInput {
	previousTotals := make(map[string]float64)
	if latest, ok := LatestApplication(history); ok {
		for _, item := range latest.LineItems {
			previousTotals[item.SOVItemID] = item.TotalCompletedAndStored
		}
	}

	inputs := make([]LineItemInput, len(sov))
	for i, item := range sov {
		inputs[i] = LineItemInput{
			SOVItemID:             item.ID,
			ItemNumber:            item.ItemNumber,
			Description:           item.Description,
			ScheduledValue:        item.ScheduledValue,
			WorkCompletedPrevious: previousTotals[item.ID],
		}
	}
	return inputs
}
