package billing

import "testing"

func TestCarryForward_NoHistory(t *testing.T) {
	got := CarryForward(nil, scenarioSOV())
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].WorkCompletedPrevious != 0 || got[0].WorkCompletedThisPeriod != 0 || got[0].MaterialsStored != 0 {
		t.Errorf("first application should start at zero, got %+v", got[0])
	}
	if got[0].ScheduledValue != 100000 || got[0].SOVItemID != "sov1" {
		t.Errorf("SOV fields not copied: %+v", got[0])
	}
}

func TestCarryForward_UsesLatestApplicationByID(t *testing.T) {
	history := []BilledApplication{
		{
			PayApplication: PayApplication{ApplicationNumber: 2},
			LineItems: []LineItem{
				{LineItemInput: LineItemInput{SOVItemID: "a", ItemNumber: "1"}, LineItemCalc: LineItemCalc{TotalCompletedAndStored: 20000}},
				{LineItemInput: LineItemInput{SOVItemID: "b", ItemNumber: "2"}, LineItemCalc: LineItemCalc{TotalCompletedAndStored: 5000}},
			},
		},
		{
			PayApplication: PayApplication{ApplicationNumber: 1},
			LineItems: []LineItem{
				{LineItemInput: LineItemInput{SOVItemID: "a"}, LineItemCalc: LineItemCalc{TotalCompletedAndStored: 8000}},
			},
		},
	}
	sov := []ScheduleOfValuesItem{
		{ID: "a", ItemNumber: "1A", ScheduledValue: 50000},
		{ID: "b", ItemNumber: "2", ScheduledValue: 30000},
		{ID: "c", ItemNumber: "CO-1", ScheduledValue: 12500, IsFromChangeOrder: true},
	}

	got := CarryForward(history, sov)

	want := map[string]float64{"a": 20000, "b": 5000, "c": 0}
	for _, in := range got {
		if in.WorkCompletedPrevious != want[in.SOVItemID] {
			t.Errorf("item %s previous = %v, want %v", in.SOVItemID, in.WorkCompletedPrevious, want[in.SOVItemID])
		}
		if in.WorkCompletedThisPeriod != 0 || in.MaterialsStored != 0 {
			t.Errorf("item %s should start the period at zero: %+v", in.SOVItemID, in)
		}
	}
	if got[0].ItemNumber != "1A" {
		t.Errorf("item number should come from the current SOV, got %q", got[0].ItemNumber)
	}
}

func TestLatestApplication(t *testing.T) {
	if _, ok := LatestApplication(nil); ok {
		t.Error("LatestApplication(nil) should report no application")
	}
	history := []BilledApplication{
		{PayApplication: PayApplication{ApplicationNumber: 3}},
		{PayApplication: PayApplication{ApplicationNumber: 7}},
		{PayApplication: PayApplication{ApplicationNumber: 5}},
	}
	latest, ok := LatestApplication(history)
	if !ok || latest.ApplicationNumber != 7 {
		t.Errorf("LatestApplication() = %d, %v, want 7, true", latest.ApplicationNumber, ok)
	}
}
