package billing

import (
	"math"
	"testing"
)

var tenPercent = RetainageRates{Work: 0.10, Stored: 0.10}

func TestCalculateLineItem(t *testing.T) {
	tests := []struct {
		name   string
		input  LineItemInput
		rates  RetainageRates
		expect LineItemCalc
	}{
		{
			name:   "first period",
			input:  LineItemInput{ScheduledValue: 100000, WorkCompletedThisPeriod: 20000},
			rates:  tenPercent,
			expect: LineItemCalc{TotalCompletedAndStored: 20000, PercentComplete: 0.2, BalanceToFinish: 80000, Retainage: 2000},
		},
		{
			name:   "carried forward",
			input:  LineItemInput{ScheduledValue: 100000, WorkCompletedPrevious: 20000, WorkCompletedThisPeriod: 30000},
			rates:  tenPercent,
			expect: LineItemCalc{TotalCompletedAndStored: 50000, PercentComplete: 0.5, BalanceToFinish: 50000, Retainage: 5000},
		},
		{
			name:   "separate stored rate",
			input:  LineItemInput{ScheduledValue: 10000, WorkCompletedPrevious: 1000, WorkCompletedThisPeriod: 500, MaterialsStored: 2000},
			rates:  RetainageRates{Work: 0.10, Stored: 0.05},
			expect: LineItemCalc{TotalCompletedAndStored: 3500, PercentComplete: 0.35, BalanceToFinish: 6500, Retainage: 250},
		},
		{
			name:   "overbilled",
			input:  LineItemInput{ScheduledValue: 10000, WorkCompletedThisPeriod: 10500},
			rates:  tenPercent,
			expect: LineItemCalc{TotalCompletedAndStored: 10500, PercentComplete: 1.05, BalanceToFinish: -500, Retainage: 1050},
		},
		{
			name:   "zero scheduled value",
			input:  LineItemInput{ScheduledValue: 0, WorkCompletedThisPeriod: 250},
			rates:  tenPercent,
			expect: LineItemCalc{TotalCompletedAndStored: 250, PercentComplete: 0, BalanceToFinish: -250, Retainage: 25},
		},
		{
			name:   "percent rounds to basis points",
			input:  LineItemInput{ScheduledValue: 3, WorkCompletedThisPeriod: 1},
			rates:  RetainageRates{},
			expect: LineItemCalc{TotalCompletedAndStored: 1, PercentComplete: 0.3333, BalanceToFinish: 2, Retainage: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateLineItem(tt.input, tt.rates)
			if got != tt.expect {
				t.Errorf("CalculateLineItem(%+v) = %+v, want %+v", tt.input, got, tt.expect)
			}
		})
	}
}

func TestPercentCompleteNeverNaN(t *testing.T) {
	got := PercentComplete(0, 0)
	if math.IsNaN(got) || math.IsInf(got, 0) || got != 0 {
		t.Errorf("PercentComplete(0, 0) = %v, want 0", got)
	}
}

func TestTotalCompletedAndStoredIsExactSum(t *testing.T) {
	inputs := []struct{ d, e, f float64 }{
		{0.1, 0.2, 0.3},
		{1234.56, 789.01, 0.99},
		{33.33, 33.33, 33.34},
	}
	for _, in := range inputs {
		got := TotalCompletedAndStored(in.d, in.e, in.f)
		if !WithinTolerance(got, in.d+in.e+in.f) || got != RoundCurrency(got) {
			t.Errorf("TotalCompletedAndStored(%v, %v, %v) = %v", in.d, in.e, in.f, got)
		}
	}
}

func TestRemainingBalance(t *testing.T) {
	tests := []struct {
		scheduled, previous, stored float64
		expect                      float64
	}{
		{100000, 20000, 5000, 75000},
		{10000, 10000, 0, 0},
		{10000, 10500, 0, -500},
	}

	for _, tt := range tests {
		got := RemainingBalance(tt.scheduled, tt.previous, tt.stored)
		if got != tt.expect {
			t.Errorf("RemainingBalance(%v, %v, %v) = %v, want %v", tt.scheduled, tt.previous, tt.stored, got, tt.expect)
		}
	}
}
