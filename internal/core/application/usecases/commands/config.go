package commands

import (
	"fmt"
	"time"

	"fulfillment/internal/pkg/errs"
)

// Config carries the pipeline timing knobs: the simulated latency window of
// each stage and the deadline offsets derived from them. All values are
// injected at construction so tests can run the pipeline with near-zero
// delays.
type Config struct {
	// ProcessingDelayMin/Max bound the simulated validation and packaging
	// latency of the processing stage.
	ProcessingDelayMin time.Duration
	ProcessingDelayMax time.Duration

	// ShippingDelayMin/Max bound the simulated carrier hand-off latency of
	// the shipping stage.
	ShippingDelayMin time.Duration
	ShippingDelayMax time.Duration

	// DeliveryDelayMin/Max bound the simulated last-mile latency of the
	// delivery stage.
	DeliveryDelayMin time.Duration
	DeliveryDelayMax time.Duration

	// InitialDeadlineOffset is how long a freshly created order may sit in
	// PENDING before the stale sweeper considers it stalled.
	InitialDeadlineOffset time.Duration
}

// NewDefaultConfig returns the production timing profile.
func NewDefaultConfig() Config {
	return Config{
		ProcessingDelayMin:    2 * time.Second,
		ProcessingDelayMax:    10 * time.Second,
		ShippingDelayMin:      5 * time.Second,
		ShippingDelayMax:      20 * time.Second,
		DeliveryDelayMin:      5 * time.Second,
		DeliveryDelayMax:      30 * time.Second,
		InitialDeadlineOffset: 30 * time.Second,
	}
}

// Validate checks that every delay window is well-formed and that the initial
// deadline offset is positive.
func (c Config) Validate() error {
	windows := []struct {
		name     string
		min, max time.Duration
	}{
		{"processing delay", c.ProcessingDelayMin, c.ProcessingDelayMax},
		{"shipping delay", c.ShippingDelayMin, c.ShippingDelayMax},
		{"delivery delay", c.DeliveryDelayMin, c.DeliveryDelayMax},
	}
	for _, w := range windows {
		if w.min < 0 {
			return errs.NewValueIsInvalidErrorWithCause(w.name,
				fmt.Errorf("minimum %s is negative", w.min))
		}
		if w.max < w.min {
			return errs.NewValueIsInvalidErrorWithCause(w.name,
				fmt.Errorf("maximum %s is below minimum %s", w.max, w.min))
		}
	}
	if c.InitialDeadlineOffset <= 0 {
		return errs.NewValueIsRequiredError("initialDeadlineOffset")
	}
	return nil
}

// ProcessingDeadlineOffset is the deadline a PROCESSING order carries: the
// allocation and packaging work must finish within 1.5x the worst-case stage
// latency before the sweeper treats the order as stalled.
func (c Config) ProcessingDeadlineOffset() time.Duration {
	return c.ProcessingDelayMax * 3 / 2
}

// PackagingDeadlineOffset is the deadline a PACKAGING order carries, sized to
// the shipping stage that is expected to pick it up next.
func (c Config) PackagingDeadlineOffset() time.Duration {
	return c.ShippingDelayMax * 3 / 2
}

// ShippedDeadlineOffset is the deadline a SHIPPED order carries, sized to the
// delivery stage that is expected to complete it.
func (c Config) ShippedDeadlineOffset() time.Duration {
	return c.DeliveryDelayMax * 3 / 2
}
