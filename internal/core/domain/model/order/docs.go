// Package order provides the Order aggregate for the fulfillment pipeline.
//
// The package includes:
//   - Order: the aggregate root holding lines, the transition history
//     ledger, and the expected-next deadline used for stale detection
//   - Status: a state machine with one shared transition table
//     (PENDING -> PROCESSING -> PACKAGING -> SHIPPED -> DELIVERED, with
//     FAILED and CANCELED reachable from any non-terminal state)
//   - Line: a product reference with quantity and an immutable
//     price-at-purchase snapshot
//   - HistoryEntry: an append-only audit record of one transition
//
// Key business rules:
//   - status, updatedAt, and the deadline change only through Order.Advance,
//     which appends exactly one history entry per transition
//   - the expected-next deadline is set iff the status is pipeline-active;
//     terminal orders never carry a deadline
//   - an order has at most one line per product, and line prices are frozen
//     at creation time
package order
