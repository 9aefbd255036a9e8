package order

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrHistoryEntryIsNotConstructed is returned when a HistoryEntry was not
// created through one of its constructor functions.
var ErrHistoryEntryIsNotConstructed = errors.New(
	"HistoryEntry must be created via NewHistoryEntry or RestoreHistoryEntry",
)

// HistoryEntry is an append-only audit record of a single status transition.
// Entries are immutable: once recorded they are never updated or deleted, so
// an order's history is always sufficient to audit what happened to it.
//
// FromStatus is nil only for the very first entry, written when the order is
// created and enters PENDING.
type HistoryEntry struct {
	fromStatus *Status
	toStatus   Status
	timestamp  time.Time
	notes      string

	guard guard.ConstructorGuard
}

// NewHistoryEntry creates a history entry for a transition happening now.
// fromStatus may be nil for the creation entry; toStatus must be valid.
func NewHistoryEntry(fromStatus *Status, toStatus Status, timestamp time.Time, notes string) (HistoryEntry, error) {
	if fromStatus != nil {
		if err := fromStatus.Validate(); err != nil {
			return HistoryEntry{}, err
		}
	}
	if err := toStatus.Validate(); err != nil {
		return HistoryEntry{}, err
	}
	if timestamp.IsZero() {
		return HistoryEntry{}, errs.NewValueIsRequiredError("timestamp")
	}

	return HistoryEntry{
		fromStatus: fromStatus,
		toStatus:   toStatus,
		timestamp:  timestamp,
		notes:      notes,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// RestoreHistoryEntry reconstructs a history entry from persistence.
func RestoreHistoryEntry(fromStatus *Status, toStatus Status, timestamp time.Time, notes string) (HistoryEntry, error) {
	return NewHistoryEntry(fromStatus, toStatus, timestamp, notes)
}

// Validate ensures the entry was created through a constructor.
func (h HistoryEntry) Validate() error {
	return h.guard.Validate(ErrHistoryEntryIsNotConstructed)
}

// FromStatus returns the status the order left, or nil for the creation entry.
func (h HistoryEntry) FromStatus() *Status {
	if h.fromStatus == nil {
		return nil
	}
	from := *h.fromStatus
	return &from
}

// ToStatus returns the status the order entered.
func (h HistoryEntry) ToStatus() Status {
	return h.toStatus
}

// Timestamp returns when the transition was recorded.
func (h HistoryEntry) Timestamp() time.Time {
	return h.timestamp
}

// Notes returns the free-text annotation recorded with the transition.
func (h HistoryEntry) Notes() string {
	return h.notes
}
