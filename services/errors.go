package services

import (
	"errors"

	"github.com/th3mailmann/bildpro/billing"
)

var (
	// ErrNotFound is returned when a project, pay application or change
	// order does not exist or belongs to another project.
	ErrNotFound = errors.New("not found")
	// ErrDraftPending is returned when creating an application while the
	// project still has an open draft.
	ErrDraftPending = errors.New("project already has a draft pay application")
	// ErrEmptySchedule is returned when a project has no SOV items to bill.
	ErrEmptySchedule = errors.New("project has no schedule of values")
	// ErrUnknownField is returned for line item edits to a non-editable column.
	ErrUnknownField = errors.New("line item field is not editable")
)

// Re-exported so callers of this package can match without importing billing.
var (
	ErrNotDraft           = billing.ErrNotDraft
	ErrValidationFailed   = billing.ErrValidationFailed
	ErrInvalidTransition  = billing.ErrInvalidTransition
	ErrUnknownLineItem    = billing.ErrUnknownLineItem
	ErrChangeOrderDecided = billing.ErrChangeOrderDecided
	ErrNothingToBill      = billing.ErrNothingToBill
)
