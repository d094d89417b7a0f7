package billing

// LessPreviousCertificates is G702 line 7: the sum of line 6 across the
// given prior applications.
func LessPreviousCertificates(previous []PayApplication) float64 {
	var sum float64
	for _, app := range previous {
		sum += app.Summary.TotalEarnedLessRetainage
	}
	return RoundCurrency(sum)
}

// CalculateG702Summary computes the nine G702 lines in order. previous must
// hold only applications numbered below the one being computed.
func CalculateG702Summary(originalContractSum float64, changeOrders []ChangeOrder, totals G703Totals, rates RetainageRates, previous []PayApplication) G702Summary {
	var s G702Summary

	s.OriginalContractSum = RoundCurrency(originalContractSum)
	s.NetChangeOrders = NetChangeOrders(changeOrders)
	s.ContractSumToDate = RoundCurrency(s.OriginalContractSum + s.NetChangeOrders)

	s.TotalCompletedAndStored = RoundCurrency(totals.TotalCompletedAndStored)

	completedWork := totals.WorkCompletedPrevious + totals.WorkCompletedThisPeriod
	s.RetainageOnCompleted = RoundCurrency(completedWork * rates.Work)
	s.RetainageOnStored = RoundCurrency(totals.MaterialsStored * rates.Stored)
	s.TotalRetainage = RoundCurrency(s.RetainageOnCompleted + s.RetainageOnStored)

	s.TotalEarnedLessRetainage = RoundCurrency(s.TotalCompletedAndStored - s.TotalRetainage)
	s.LessPreviousCertificates = LessPreviousCertificates(previous)
	s.CurrentPaymentDue = RoundCurrency(s.TotalEarnedLessRetainage - s.LessPreviousCertificates)

	s.BalanceToFinish = RoundCurrency(s.ContractSumToDate - s.TotalCompletedAndStored + s.TotalRetainage)
	return s
}

// SummaryLine is one printable row of the G702 form.
type SummaryLine struct {
	Label     string
	Value     float64
	HasValue  bool
	Bold      bool
	Highlight bool
	Indent    bool
}

// Lines lays the summary out the way the G702 form prints it.
func (s G702Summary) Lines() []SummaryLine {
	return []SummaryLine{
		{Label: "1. Original Contract Sum", Value: s.OriginalContractSum, HasValue: true},
		{Label: "2. Net Change by Change Orders", Value: s.NetChangeOrders, HasValue: true},
		{Label: "3. Contract Sum to Date (Line 1 + 2)", Value: s.ContractSumToDate, HasValue: true, Bold: true},
		{Label: "4. Total Completed & Stored to Date (Column G on G703)", Value: s.TotalCompletedAndStored, HasValue: true},
		{Label: "5. Retainage:"},
		{Label: "a. On Completed Work", Value: s.RetainageOnCompleted, HasValue: true, Indent: true},
		{Label: "b. On Stored Materials", Value: s.RetainageOnStored, HasValue: true, Indent: true},
		{Label: "Total Retainage (5a + 5b)", Value: s.TotalRetainage, HasValue: true, Indent: true},
		{Label: "6. Total Earned Less Retainage (Line 4 - 5c)", Value: s.TotalEarnedLessRetainage, HasValue: true, Bold: true},
		{Label: "7. Less Previous Certificates for Payment", Value: s.LessPreviousCertificates, HasValue: true},
		{Label: "8. CURRENT PAYMENT DUE (Line 6 - 7)", Value: s.CurrentPaymentDue, HasValue: true, Bold: true, Highlight: true},
		{Label: "9. Balance to Finish Including Retainage", Value: s.BalanceToFinish, HasValue: true},
	}
}
