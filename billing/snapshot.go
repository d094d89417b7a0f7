package billing

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrNotDraft is returned when editing an application that has left draft.
	ErrNotDraft = errors.New("pay application is not a draft")
	// ErrValidationFailed is returned by Freeze when validation has errors.
	ErrValidationFailed = errors.New("pay application failed validation")
	// ErrInvalidTransition is returned for status changes outside
	// draft -> submitted -> paid.
	ErrInvalidTransition = errors.New("invalid pay application status transition")
	// ErrUnknownLineItem is returned when a draft has no row for an SOV item.
	ErrUnknownLineItem = errors.New("line item not found")
	// ErrNotFrozen is returned when restoring a draft as a snapshot.
	ErrNotFrozen = errors.New("pay application is still a draft")
	// ErrNothingToBill is returned when marking complete an item whose
	// remaining balance is already zero or below.
	ErrNothingToBill = errors.New("line item has no remaining balance")
)

// Transition checks a status change against draft -> submitted -> paid.
func Transition(from, to PayAppStatus) error {
	switch {
	case from == StatusDraft && to == StatusSubmitted:
		return nil
	case from == StatusSubmitted && to == StatusPaid:
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Draft is an editable pay application. Every Compute call derives all
// figures from scratch, so a draft can be recomputed on each keystroke.
type Draft struct {
	ID                  string
	ApplicationNumber   int
	PeriodFrom          time.Time
	PeriodTo            time.Time
	OriginalContractSum float64
	Rates               RetainageRates

	project Project
	lines   []LineItemInput
}

func NewDraft(project Project, number int, periodFrom, periodTo time.Time, lines []LineItemInput) *Draft {
	return &Draft{
		ApplicationNumber:   number,
		PeriodFrom:          periodFrom,
		PeriodTo:            periodTo,
		OriginalContractSum: project.OriginalContractSum,
		Rates:               project.Retainage,
		project:             project,
		lines:               slices.Clone(lines),
	}
}

// Lines returns a copy of the draft's input rows.
func (d *Draft) Lines() []LineItemInput {
	return slices.Clone(d.lines)
}

func (d *Draft) line(sovItemID string) (*LineItemInput, error) {
	for i := range d.lines {
		if d.lines[i].SOVItemID == sovItemID {
			return &d.lines[i], nil
		}
	}
	return nil, fmt.Errorf("sov item %s: %w", sovItemID, ErrUnknownLineItem)
}

// SetWorkCompletedThisPeriod sets column E. Negative amounts are accepted
// here and reported by validation.
func (d *Draft) SetWorkCompletedThisPeriod(sovItemID string, amount float64) error {
	l, err := d.line(sovItemID)
	if err != nil {
		return err
	}
	l.WorkCompletedThisPeriod = RoundCurrency(amount)
	return nil
}

// SetMaterialsStored sets column F.
func (d *Draft) SetMaterialsStored(sovItemID string, amount float64) error {
	l, err := d.line(sovItemID)
	if err != nil {
		return err
	}
	l.MaterialsStored = RoundCurrency(amount)
	return nil
}

// MarkComplete bills whatever remains on one item this period. An item
// with nothing left to bill returns ErrNothingToBill and is left as is.
func (d *Draft) MarkComplete(sovItemID string) error {
	l, err := d.line(sovItemID)
	if err != nil {
		return err
	}
	remaining := RemainingBalance(l.ScheduledValue, l.WorkCompletedPrevious, l.MaterialsStored)
	if remaining < 0.01 {
		return fmt.Errorf("sov item %s (balance %.2f): %w", sovItemID, remaining, ErrNothingToBill)
	}
	l.WorkCompletedThisPeriod = remaining
	return nil
}

// BillRemaining bills the remaining balance of every item, never below zero.
func (d *Draft) BillRemaining() {
	for i := range d.lines {
		l := &d.lines[i]
		l.WorkCompletedThisPeriod = max(0, RemainingBalance(l.ScheduledValue, l.WorkCompletedPrevious, l.MaterialsStored))
	}
}

// Computation is the full result of running a draft through the pipeline.
type Computation struct {
	ID                string           `json:"id,omitempty"`
	ApplicationNumber int              `json:"application_number"`
	PeriodFrom        time.Time        `json:"period_from"`
	PeriodTo          time.Time        `json:"period_to"`
	LineItems         []LineItem       `json:"line_items"`
	Totals            G703Totals       `json:"totals"`
	Summary           G702Summary      `json:"summary"`
	Validation        ValidationResult `json:"validation"`
	Rates             RetainageRates   `json:"retainage_rates"`
	ChangeOrderIDs    []string         `json:"change_order_ids"`

	// Project is the header the draft was computed for.
	Project Project `json:"-"`
}

// Compute derives line items, G703 totals, the G702 summary and validation.
// history may contain any applications; only those numbered below the draft
// feed line 7.
func (d *Draft) Compute(changeOrders []ChangeOrder, history []PayApplication) Computation {
	items := BuildLineItems(d.lines, d.Rates)
	totals := CalculateG703Totals(d.lines)
	previous := PreviousApplications(history, d.ApplicationNumber)
	summary := CalculateG702Summary(d.OriginalContractSum, changeOrders, totals, d.Rates, previous)

	return Computation{
		ID:                d.ID,
		ApplicationNumber: d.ApplicationNumber,
		PeriodFrom:        d.PeriodFrom,
		PeriodTo:          d.PeriodTo,
		LineItems:         items,
		Totals:            totals,
		Summary:           summary,
		Validation:        ValidatePayApplication(d.lines, summary, totals),
		Rates:             d.Rates,
		ChangeOrderIDs:    CountedChangeOrderIDs(changeOrders),
		Project:           d.project,
	}
}

// Snapshot is a submitted or paid application. Its figures cannot be
// changed; accessors hand out copies.
type Snapshot struct {
	app    PayApplication
	lines  []LineItem
	totals G703Totals
}

// Freeze turns a valid computation into a submitted snapshot.
func Freeze(c Computation, submittedAt time.Time) (Snapshot, error) {
	if !c.Validation.IsValid {
		return Snapshot{}, fmt.Errorf("freeze application #%d: %w (%d errors)", c.ApplicationNumber, ErrValidationFailed, len(c.Validation.Errors))
	}

	project := c.Project
	project.Retainage = c.Rates
	return Snapshot{
		app: PayApplication{
			ID:                c.ID,
			ApplicationNumber: c.ApplicationNumber,
			PeriodFrom:        c.PeriodFrom,
			PeriodTo:          c.PeriodTo,
			Status:            StatusSubmitted,
			Summary:           c.Summary,
			SubmittedAt:       submittedAt,
			Retainage:         c.Rates,
			ChangeOrderIDs:    slices.Clone(c.ChangeOrderIDs),
			Project:           &project,
		},
		lines:  slices.Clone(c.LineItems),
		totals: c.Totals,
	}, nil
}

// RestoreSnapshot rebuilds a snapshot from stored values without
// recomputing the summary. Drafts cannot be restored as snapshots.
func RestoreSnapshot(app PayApplication, lines []LineItem) (Snapshot, error) {
	if app.Status == StatusDraft {
		return Snapshot{}, fmt.Errorf("restore application #%d: %w", app.ApplicationNumber, ErrNotFrozen)
	}
	return Snapshot{
		app:    app,
		lines:  slices.Clone(lines),
		totals: CalculateG703Totals(Inputs(lines)),
	}, nil
}

func (s Snapshot) Application() PayApplication { return s.app }
func (s Snapshot) Summary() G702Summary        { return s.app.Summary }
func (s Snapshot) Totals() G703Totals          { return s.totals }
func (s Snapshot) Status() PayAppStatus        { return s.app.Status }
func (s Snapshot) LineItems() []LineItem       { return slices.Clone(s.lines) }

// Project returns the form header as of submission, carrying the frozen
// retainage rates. Records frozen before headers were kept fall back to
// current.
func (s Snapshot) Project(current Project) Project {
	if s.app.Project == nil {
		return current
	}
	p := *s.app.Project
	p.Retainage = s.app.Retainage
	return p
}

// ChangeOrders picks from all the change orders that line 2 counted when
// the application was frozen. Without stored ids it falls back to those
// approved on or before the submission date.
func (s Snapshot) ChangeOrders(all []ChangeOrder) []ChangeOrder {
	counted := []ChangeOrder{}
	for _, co := range all {
		if co.Status != ChangeOrderApproved {
			continue
		}
		if s.app.ChangeOrderIDs != nil {
			if slices.Contains(s.app.ChangeOrderIDs, co.ID) {
				counted = append(counted, co)
			}
			continue
		}
		if !co.DateApproved.After(s.app.SubmittedAt) {
			counted = append(counted, co)
		}
	}
	return counted
}

// MarkPaid returns a copy of the snapshot with status paid. The summary is
// untouched.
func (s Snapshot) MarkPaid(paidAt time.Time) (Snapshot, error) {
	if err := Transition(s.app.Status, StatusPaid); err != nil {
		return s, err
	}
	paid := s
	paid.app.Status = StatusPaid
	paid.app.PaidAt = paidAt
	paid.lines = slices.Clone(s.lines)
	return paid, nil
}

// Validate re-checks the frozen figures. Nothing is recomputed.
func (s Snapshot) Validate() ValidationResult {
	return ValidatePayApplication(Inputs(s.lines), s.app.Summary, s.totals)
}
