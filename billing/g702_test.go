package billing

import (
	"reflect"
	"testing"
	"time"
)

func scenarioProject() Project {
	return Project{
		ID:                  "proj1",
		Name:                "Riverside Clinic",
		OriginalContractSum: 100000,
		Retainage:           tenPercent,
		BillingDay:          25,
	}
}

func scenarioSOV() []ScheduleOfValuesItem {
	return []ScheduleOfValuesItem{
		{ID: "sov1", ItemNumber: "1", Description: "General Conditions", ScheduledValue: 100000, SortOrder: 1},
	}
}

// firstApplication runs Scenario A: $20,000 of progress against a $100,000
// contract with 10% retainage.
func firstApplication(t *testing.T) Computation {
	t.Helper()
	draft := NewDraft(scenarioProject(), 1,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 25, 0, 0, 0, 0, time.UTC),
		CarryForward(nil, scenarioSOV()))
	if err := draft.SetWorkCompletedThisPeriod("sov1", 20000); err != nil {
		t.Fatalf("SetWorkCompletedThisPeriod: %v", err)
	}
	return draft.Compute(nil, nil)
}

func TestCalculateG702Summary_FirstApplication(t *testing.T) {
	c := firstApplication(t)

	want := G702Summary{
		OriginalContractSum:      100000,
		NetChangeOrders:          0,
		ContractSumToDate:        100000,
		TotalCompletedAndStored:  20000,
		RetainageOnCompleted:     2000,
		RetainageOnStored:        0,
		TotalRetainage:           2000,
		TotalEarnedLessRetainage: 18000,
		LessPreviousCertificates: 0,
		CurrentPaymentDue:        18000,
		BalanceToFinish:          82000,
	}
	if c.Summary != want {
		t.Errorf("summary = %+v\nwant %+v", c.Summary, want)
	}
	if !c.Validation.IsValid {
		t.Errorf("expected valid application, got errors %+v", c.Validation.Errors)
	}
}

func TestCalculateG702Summary_SecondApplication(t *testing.T) {
	first, err := Freeze(firstApplication(t), time.Date(2026, 9, 26, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	history := []BilledApplication{{PayApplication: first.Application(), LineItems: first.LineItems()}}

	draft := NewDraft(scenarioProject(), 2,
		time.Date(2026, 9, 26, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC),
		CarryForward(history, scenarioSOV()))
	if err := draft.SetWorkCompletedThisPeriod("sov1", 30000); err != nil {
		t.Fatalf("SetWorkCompletedThisPeriod: %v", err)
	}
	c := draft.Compute(nil, Headers(history))

	line := c.LineItems[0]
	if line.WorkCompletedPrevious != 20000 || line.WorkCompletedThisPeriod != 30000 || line.TotalCompletedAndStored != 50000 {
		t.Errorf("line item D/E/G = %v/%v/%v, want 20000/30000/50000",
			line.WorkCompletedPrevious, line.WorkCompletedThisPeriod, line.TotalCompletedAndStored)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"line4", c.Summary.TotalCompletedAndStored, 50000},
		{"line5a", c.Summary.RetainageOnCompleted, 5000},
		{"line6", c.Summary.TotalEarnedLessRetainage, 45000},
		{"line7", c.Summary.LessPreviousCertificates, 18000},
		{"line8", c.Summary.CurrentPaymentDue, 27000},
		{"line9", c.Summary.BalanceToFinish, 55000},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s = %v, want %v", ch.name, ch.got, ch.want)
		}
	}
}

func TestCalculateG702Summary_ChangeOrdersAndStoredRate(t *testing.T) {
	cos := []ChangeOrder{
		{Number: 1, Amount: 10000, Status: ChangeOrderApproved},
		{Number: 2, Amount: 5000, Status: ChangeOrderPending},
	}
	totals := G703Totals{
		ScheduledValue:          110000,
		WorkCompletedPrevious:   10000,
		WorkCompletedThisPeriod: 15000,
		MaterialsStored:         4000,
		TotalCompletedAndStored: 29000,
		BalanceToFinish:         81000,
	}
	rates := RetainageRates{Work: 0.10, Stored: 0.05}

	got := CalculateG702Summary(100000, cos, totals, rates, nil)

	if got.NetChangeOrders != 10000 || got.ContractSumToDate != 110000 {
		t.Errorf("lines 2/3 = %v/%v, want 10000/110000", got.NetChangeOrders, got.ContractSumToDate)
	}
	if got.RetainageOnCompleted != 2500 || got.RetainageOnStored != 200 || got.TotalRetainage != 2700 {
		t.Errorf("line 5 = %v/%v/%v, want 2500/200/2700", got.RetainageOnCompleted, got.RetainageOnStored, got.TotalRetainage)
	}
	if got.BalanceToFinish != 83700 {
		t.Errorf("line9 = %v, want 83700", got.BalanceToFinish)
	}
}

func TestCalculateG702Summary_ZeroContract(t *testing.T) {
	got := CalculateG702Summary(0, nil, G703Totals{}, tenPercent, nil)
	if got != (G702Summary{}) {
		t.Errorf("CalculateG702Summary with zero inputs = %+v, want zero summary", got)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	sov := []ScheduleOfValuesItem{
		{ID: "a", ItemNumber: "1", ScheduledValue: 33333.33},
		{ID: "b", ItemNumber: "2", ScheduledValue: 66666.67},
	}
	draft := NewDraft(scenarioProject(), 1, time.Time{}, time.Time{}, CarryForward(nil, sov))
	_ = draft.SetWorkCompletedThisPeriod("a", 1234.56)
	_ = draft.SetMaterialsStored("b", 789.01)

	first := draft.Compute(nil, nil)
	second := draft.Compute(nil, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compute is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestLessPreviousCertificates(t *testing.T) {
	prior := []PayApplication{
		{ApplicationNumber: 1, Summary: G702Summary{TotalEarnedLessRetainage: 18000}},
		{ApplicationNumber: 2, Summary: G702Summary{TotalEarnedLessRetainage: 45000}},
	}
	if got := LessPreviousCertificates(prior); got != 63000 {
		t.Errorf("LessPreviousCertificates() = %v, want 63000", got)
	}
}

func TestSummaryLines(t *testing.T) {
	s := G702Summary{CurrentPaymentDue: 27000}
	var highlighted int
	for _, l := range s.Lines() {
		if l.Highlight {
			highlighted++
			if l.Value != 27000 {
				t.Errorf("highlighted line value = %v, want 27000", l.Value)
			}
		}
	}
	if highlighted != 1 {
		t.Errorf("highlighted lines = %d, want 1", highlighted)
	}
}
