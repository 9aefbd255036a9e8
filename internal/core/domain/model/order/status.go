package order

import (
	"fmt"
	"slices"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of an order in the fulfillment
// pipeline. It implements a state machine with a single transition table
// shared by all pipeline stages.
//
// State transitions:
//
//	PENDING ──> PROCESSING ──> PACKAGING ──> SHIPPED ──> DELIVERED
//	   │             │             │            │
//	   └─────────────┴──────┬──────┴────────────┘
//	                        v
//	                FAILED / CANCELED
//
// DELIVERED, FAILED, and CANCELED are terminal absorbing states; FAILED and
// CANCELED are reachable from any non-terminal state.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order is first created.
	// Orders in this status are waiting for the processing stage.
	Pending

	// Processing indicates validation and inventory allocation are underway.
	Processing

	// Packaging indicates inventory has been allocated and the order is
	// being packaged for shipment.
	Packaging

	// Shipped indicates the order has left the warehouse.
	Shipped

	// Delivered indicates the order reached the customer. Terminal.
	Delivered

	// Failed indicates the order could not be fulfilled, e.g. due to
	// insufficient stock or staleness. Terminal.
	Failed

	// Canceled indicates the order was canceled. Terminal.
	Canceled
)

// getStatusStrings returns a map of Status values to their string
// representations. The strings double as the persistence format.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Pending:    "PENDING",
		Processing: "PROCESSING",
		Packaging:  "PACKAGING",
		Shipped:    "SHIPPED",
		Delivered:  "DELIVERED",
		Failed:     "FAILED",
		Canceled:   "CANCELED",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:    "PENDING",
		Processing: "PROCESSING",
		Packaging:  "PACKAGING",
		Shipped:    "SHIPPED",
		Delivered:  "DELIVERED",
		Failed:     "FAILED",
		Canceled:   "CANCELED",
	}
}

// getTransitionTable returns the single source of truth for valid status
// transitions. Stage workers never encode transitions themselves; they call
// Order.Advance, which validates against this table.
func getTransitionTable() map[Status][]Status {
	return map[Status][]Status{
		Pending:    {Processing, Failed, Canceled},
		Processing: {Packaging, Failed, Canceled},
		Packaging:  {Shipped, Failed, Canceled},
		Shipped:    {Delivered, Failed, Canceled},
		Delivered:  {},
		Failed:     {},
		Canceled:   {},
	}
}

// StatusFromString parses a Status from its persistence representation.
// Returns an error for unknown strings.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%q is not a valid status", s),
	)
}

// Validate checks if the Status value is valid.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%d is not a valid status", s),
		)
	}
	return nil
}

// String returns the persistence name of the status, e.g. "PENDING".
// Implements fmt.Stringer and is safe to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether the status is an absorbing state with no
// outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Failed || s == Canceled
}

// IsPipelineActive reports whether the status is a non-terminal state with a
// pending pipeline step. Orders in a pipeline-active status carry an
// expected-next deadline; terminal orders never do.
func (s Status) IsPipelineActive() bool {
	switch s {
	case Pending, Processing, Packaging, Shipped:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the transition table allows moving from the
// current status to next.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(getTransitionTable()[s], next)
}

// TransitionTo validates the transition against the table and returns the new
// status, or an error when the transition is not allowed.
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(next) {
		return Unknown, errs.NewValueIsInvalidErrorWithCause(
			"status transition is invalid",
			fmt.Errorf("cannot transition from %s to %s", s, next),
		)
	}
	return next, nil
}
