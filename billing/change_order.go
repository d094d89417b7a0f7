package billing

import (
	"errors"
	"fmt"
	"time"
)

// ErrChangeOrderDecided is returned when approving or rejecting a change
// order that is no longer pending.
var ErrChangeOrderDecided = errors.New("change order already decided")

// NetChangeOrders sums approved change orders (G702 line 2). Pending and
// rejected change orders do not count.
func NetChangeOrders(changeOrders []ChangeOrder) float64 {
	return sumByStatus(changeOrders, ChangeOrderApproved)
}

// CountedChangeOrderIDs returns the ids of the change orders that
// NetChangeOrders includes. The result is never nil.
func CountedChangeOrderIDs(changeOrders []ChangeOrder) []string {
	ids := []string{}
	for _, co := range changeOrders {
		if co.Status == ChangeOrderApproved {
			ids = append(ids, co.ID)
		}
	}
	return ids
}

// PendingChangeOrders sums change orders still awaiting a decision.
func PendingChangeOrders(changeOrders []ChangeOrder) float64 {
	return sumByStatus(changeOrders, ChangeOrderPending)
}

func sumByStatus(changeOrders []ChangeOrder, status ChangeOrderStatus) float64 {
	var sum float64
	for _, co := range changeOrders {
		if co.Status == status {
			sum += co.Amount
		}
	}
	return RoundCurrency(sum)
}

// ApproveChangeOrder moves a pending change order to approved.
func ApproveChangeOrder(co ChangeOrder, approvedOn time.Time) (ChangeOrder, error) {
	if co.Status != ChangeOrderPending {
		return co, fmt.Errorf("approve change order #%d (%s): %w", co.Number, co.Status, ErrChangeOrderDecided)
	}
	co.Status = ChangeOrderApproved
	co.DateApproved = approvedOn
	return co, nil
}

// RejectChangeOrder moves a pending change order to rejected.
func RejectChangeOrder(co ChangeOrder) (ChangeOrder, error) {
	if co.Status != ChangeOrderPending {
		return co, fmt.Errorf("reject change order #%d (%s): %w", co.Number, co.Status, ErrChangeOrderDecided)
	}
	co.Status = ChangeOrderRejected
	return co, nil
}

// ScheduleItemForChangeOrder builds the SOV line that carries an approved
// change order's amount onto the continuation sheet.
func ScheduleItemForChangeOrder(co ChangeOrder, sortOrder int) ScheduleOfValuesItem {
	return ScheduleOfValuesItem{
		ItemNumber:        fmt.Sprintf("CO-%d", co.Number),
		Description:       co.Description,
		ScheduledValue:    RoundCurrency(co.Amount),
		SortOrder:         sortOrder,
		IsFromChangeOrder: true,
		ChangeOrderID:     co.ID,
	}
}

// NextChangeOrderNumber is one past the highest existing number, or 1.
func NextChangeOrderNumber(changeOrders []ChangeOrder) int {
	maxNumber := 0
	for _, co := range changeOrders {
		if co.Number > maxNumber {
			maxNumber = co.Number
		}
	}
	return maxNumber + 1
}
