package billing

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextBillingDate(t *testing.T) {
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		billingDay int
		now        time.Time
		expect     time.Time
	}{
		{"later this month", 25, now, day(2026, 10, 25)},
		{"already passed", 15, now, day(2026, 11, 15)},
		{"billing day is today", 17, now, day(2026, 11, 17)},
		{"year rollover", 5, time.Date(2026, 12, 20, 9, 0, 0, 0, time.UTC), day(2027, 1, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextBillingDate(tt.billingDay, tt.now)
			if !got.Equal(tt.expect) {
				t.Errorf("NextBillingDate(%d, %v) = %v, want %v", tt.billingDay, tt.now, got, tt.expect)
			}
		})
	}
}

func TestDaysUntilBilling(t *testing.T) {
	tests := []struct {
		billingDay int
		now        time.Time
		expect     int
	}{
		{25, time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC), 8},
		{25, day(2026, 10, 17), 8},
		{18, time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		got := DaysUntilBilling(tt.billingDay, tt.now)
		if got != tt.expect {
			t.Errorf("DaysUntilBilling(%d, %v) = %d, want %d", tt.billingDay, tt.now, got, tt.expect)
		}
	}
}

func TestDefaultPeriod(t *testing.T) {
	contract := day(2026, 3, 1)

	from, to := DefaultPeriod(nil, contract, 25, day(2026, 10, 17))
	if !from.Equal(contract) || !to.Equal(day(2026, 10, 25)) {
		t.Errorf("first period = %v..%v, want 2026-03-01..2026-10-25", from, to)
	}

	history := []PayApplication{
		{ApplicationNumber: 1, PeriodTo: day(2026, 9, 25)},
		{ApplicationNumber: 2, PeriodTo: day(2026, 10, 25)},
	}
	from, to = DefaultPeriod(history, contract, 25, day(2026, 10, 27))
	if !from.Equal(day(2026, 10, 26)) || !to.Equal(day(2026, 11, 25)) {
		t.Errorf("next period = %v..%v, want 2026-10-26..2026-11-25", from, to)
	}
}
