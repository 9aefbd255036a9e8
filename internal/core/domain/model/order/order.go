package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrDuplicateProductLine is returned when two lines of the same order
	// reference the same product.
	ErrDuplicateProductLine = errors.New("order holds at most one line per product")
)

// Order is the aggregate root for a customer order moving through the
// fulfillment pipeline.
//
// Order maintains these invariants:
//   - it has a valid unique identifier and a non-empty customer reference
//   - it has at least one line, with at most one line per product
//   - ExpectedNextDeadline is non-nil iff the status is pipeline-active
//   - status, updatedAt, and the deadline are mutated exclusively through
//     Advance, which appends exactly one history entry per transition and
//     validates the transition against the status table
//
// Stage workers load an order, check its status as an idempotency guard, and
// call Advance along the intended path. Because Advance is the single writer,
// the history ledger is always a faithful record of the order's lifecycle.
type Order struct {
	id                   kernel.UUID
	customerName         string
	status               Status
	createdAt            time.Time
	updatedAt            time.Time
	expectedNextDeadline *time.Time
	lines                []*Line

	// history holds every transition; uncommittedHistory holds the suffix
	// appended since construction or restore, which is what repositories
	// persist on Update.
	history            []HistoryEntry
	uncommittedHistory []HistoryEntry

	isConstructed bool
}

// NewOrder creates an order in PENDING status with its creation history entry
// and an initial expected-next deadline, all stamped with the same clock
// reading. initialDeadlineOffset bounds how long the order may sit before the
// processing stage picks it up; the stale sweeper fails orders whose deadline
// passes without progress.
func NewOrder(id kernel.UUID, customerName string, lines []*Line, initialDeadlineOffset time.Duration) (*Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if customerName == "" {
		return nil, errs.NewValueIsRequiredError("customerName")
	}
	if len(lines) == 0 {
		return nil, errs.NewValueIsRequiredError("lines")
	}
	if initialDeadlineOffset <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("initialDeadlineOffset is invalid",
			fmt.Errorf("%s is not greater than 0", initialDeadlineOffset))
	}
	if err := validateUniqueProducts(lines); err != nil {
		return nil, err
	}
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	deadline := now.Add(initialDeadlineOffset)

	entry, err := NewHistoryEntry(nil, Pending, now, "Order created.")
	if err != nil {
		return nil, err
	}

	return &Order{
		id:                   id,
		customerName:         customerName,
		status:               Pending,
		createdAt:            now,
		updatedAt:            now,
		expectedNextDeadline: &deadline,
		lines:                lines,
		history:              []HistoryEntry{entry},
		uncommittedHistory:   []HistoryEntry{entry},
		isConstructed:        true,
	}, nil
}

// RestoreOrder reconstructs an order from persistence. The restored aggregate
// has no uncommitted history; only entries appended by subsequent Advance
// calls are persisted on the next repository Update.
func RestoreOrder(
	id kernel.UUID,
	customerName string,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
	expectedNextDeadline *time.Time,
	lines []*Line,
	history []HistoryEntry,
) (*Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if customerName == "" {
		return nil, errs.NewValueIsRequiredError("customerName")
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}
	if err := validateDeadlineInvariant(status, expectedNextDeadline); err != nil {
		return nil, err
	}
	if err := validateUniqueProducts(lines); err != nil {
		return nil, err
	}

	return &Order{
		id:                   id,
		customerName:         customerName,
		status:               status,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
		expectedNextDeadline: expectedNextDeadline,
		lines:                lines,
		history:              history,
		uncommittedHistory:   nil,
		isConstructed:        true,
	}, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerName returns the customer reference captured at creation.
func (o *Order) CustomerName() string {
	return o.customerName
}

// Status returns the current pipeline status.
func (o *Order) Status() Status {
	return o.status
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the timestamp of the last transition.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// ExpectedNextDeadline returns the timestamp by which the next pipeline stage
// is expected to have acted, or nil when no step is pending (terminal states).
func (o *Order) ExpectedNextDeadline() *time.Time {
	if o.expectedNextDeadline == nil {
		return nil
	}
	deadline := *o.expectedNextDeadline
	return &deadline
}

// Lines returns the order lines.
func (o *Order) Lines() []*Line {
	lines := make([]*Line, len(o.lines))
	copy(lines, o.lines)
	return lines
}

// History returns the full transition ledger, ordered by timestamp ascending.
func (o *Order) History() []HistoryEntry {
	history := make([]HistoryEntry, len(o.history))
	copy(history, o.history)
	return history
}

// UncommittedHistory returns the history entries appended since the aggregate
// was constructed or restored. Repositories persist exactly these on Update.
func (o *Order) UncommittedHistory() []HistoryEntry {
	entries := make([]HistoryEntry, len(o.uncommittedHistory))
	copy(entries, o.uncommittedHistory)
	return entries
}

// ClearUncommittedHistory marks the pending history entries as persisted.
// Called by repositories after the entries have been written; the full
// history remains available through History.
func (o *Order) ClearUncommittedHistory() {
	o.uncommittedHistory = nil
}

// IsStale reports whether the order's expected-next deadline has passed
// without the expected stage having acted.
func (o *Order) IsStale(asOf time.Time) bool {
	return o.status.IsPipelineActive() &&
		o.expectedNextDeadline != nil &&
		o.expectedNextDeadline.Before(asOf)
}

// Advance transitions the order to newStatus, stamps updatedAt, replaces the
// expected-next deadline, and appends exactly one history entry recording the
// transition. It is the single writer of status, updatedAt, and the deadline.
//
// nextDeadlineOffset must be positive when newStatus is pipeline-active (a
// next stage is expected, so a deadline is required) and zero when newStatus
// is terminal (the deadline is cleared). The transition itself is validated
// against the shared status table.
func (o *Order) Advance(newStatus Status, notes string, nextDeadlineOffset time.Duration) error {
	if err := o.Validate(); err != nil {
		return err
	}

	next, err := o.status.TransitionTo(newStatus)
	if err != nil {
		return err
	}

	if next.IsPipelineActive() && nextDeadlineOffset <= 0 {
		return errs.NewValueIsRequiredErrorWithCause("nextDeadlineOffset",
			fmt.Errorf("%s is pipeline-active and requires a deadline", next))
	}
	if !next.IsPipelineActive() && nextDeadlineOffset != 0 {
		return errs.NewValueIsInvalidErrorWithCause("nextDeadlineOffset",
			fmt.Errorf("%s is terminal and cannot carry a deadline", next))
	}

	now := time.Now().UTC()
	from := o.status

	entry, err := NewHistoryEntry(&from, next, now, notes)
	if err != nil {
		return err
	}

	o.status = next
	o.updatedAt = now
	if nextDeadlineOffset > 0 {
		deadline := now.Add(nextDeadlineOffset)
		o.expectedNextDeadline = &deadline
	} else {
		o.expectedNextDeadline = nil
	}

	o.history = append(o.history, entry)
	o.uncommittedHistory = append(o.uncommittedHistory, entry)
	return nil
}

func validateUniqueProducts(lines []*Line) error {
	seen := make(map[kernel.UUID]struct{}, len(lines))
	for _, line := range lines {
		if line == nil {
			return ErrLineIsNotConstructed
		}
		if _, ok := seen[line.ProductID()]; ok {
			return ErrDuplicateProductLine
		}
		seen[line.ProductID()] = struct{}{}
	}
	return nil
}

func validateDeadlineInvariant(status Status, deadline *time.Time) error {
	if status.IsPipelineActive() && deadline == nil {
		return errs.NewValueIsRequiredErrorWithCause("expectedNextDeadline",
			fmt.Errorf("%s is pipeline-active and requires a deadline", status))
	}
	if !status.IsPipelineActive() && deadline != nil {
		return errs.NewValueIsInvalidErrorWithCause("expectedNextDeadline",
			fmt.Errorf("%s is terminal and cannot carry a deadline", status))
	}
	return nil
}
