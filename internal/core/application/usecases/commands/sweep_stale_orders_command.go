package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrSweepStaleOrdersCommandIsNotConstructed = errors.New(
	"SweepStaleOrdersCommand must be created via NewSweepStaleOrdersCommand constructor",
)

// SweepStaleOrdersCommand represents a request to fail every order whose
// expected-next deadline has passed without progress. Carries no parameters;
// the sweep always covers all stalled orders.
type SweepStaleOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewSweepStaleOrdersCommand creates a command to sweep stale orders.
func NewSweepStaleOrdersCommand() SweepStaleOrdersCommand {
	return SweepStaleOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c SweepStaleOrdersCommand) Validate() error {
	return c.guard.Validate(ErrSweepStaleOrdersCommandIsNotConstructed)
}
