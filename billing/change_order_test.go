package billing

import (
	"errors"
	"testing"
	"time"
)

func TestNetChangeOrders(t *testing.T) {
	cos := []ChangeOrder{
		{Number: 1, Amount: 12500, Status: ChangeOrderApproved},
		{Number: 2, Amount: -2500.25, Status: ChangeOrderApproved},
		{Number: 3, Amount: 8000, Status: ChangeOrderPending},
		{Number: 4, Amount: 99999, Status: ChangeOrderRejected},
	}

	if got := NetChangeOrders(cos); got != 9999.75 {
		t.Errorf("NetChangeOrders() = %v, want 9999.75", got)
	}
	if got := PendingChangeOrders(cos); got != 8000 {
		t.Errorf("PendingChangeOrders() = %v, want 8000", got)
	}
	if got := NetChangeOrders(nil); got != 0 {
		t.Errorf("NetChangeOrders(nil) = %v, want 0", got)
	}
}

func TestApproveChangeOrder(t *testing.T) {
	approvedOn := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	co := ChangeOrder{Number: 1, Amount: 5000, Status: ChangeOrderPending}

	got, err := ApproveChangeOrder(co, approvedOn)
	if err != nil {
		t.Fatalf("ApproveChangeOrder: %v", err)
	}
	if got.Status != ChangeOrderApproved || !got.DateApproved.Equal(approvedOn) {
		t.Errorf("ApproveChangeOrder() = %+v", got)
	}

	if _, err := ApproveChangeOrder(got, approvedOn); !errors.Is(err, ErrChangeOrderDecided) {
		t.Errorf("approving twice: err = %v, want ErrChangeOrderDecided", err)
	}

	rejected, err := RejectChangeOrder(ChangeOrder{Number: 2, Status: ChangeOrderPending})
	if err != nil {
		t.Fatalf("RejectChangeOrder: %v", err)
	}
	if _, err := ApproveChangeOrder(rejected, approvedOn); !errors.Is(err, ErrChangeOrderDecided) {
		t.Errorf("approving rejected: err = %v, want ErrChangeOrderDecided", err)
	}
}

func TestScheduleItemForChangeOrder(t *testing.T) {
	co := ChangeOrder{ID: "co1", Number: 3, Description: "Added storm drain", Amount: 12500}
	item := ScheduleItemForChangeOrder(co, 7)

	if item.ItemNumber != "CO-3" || item.ScheduledValue != 12500 || item.SortOrder != 7 {
		t.Errorf("ScheduleItemForChangeOrder() = %+v", item)
	}
	if !item.IsFromChangeOrder || item.ChangeOrderID != "co1" {
		t.Errorf("expected change order linkage, got %+v", item)
	}
}

func TestNextChangeOrderNumber(t *testing.T) {
	if got := NextChangeOrderNumber(nil); got != 1 {
		t.Errorf("NextChangeOrderNumber(nil) = %d, want 1", got)
	}
	if got := NextChangeOrderNumber([]ChangeOrder{{Number: 1}, {Number: 4}, {Number: 2}}); got != 5 {
		t.Errorf("NextChangeOrderNumber() = %d, want 5", got)
	}
}
