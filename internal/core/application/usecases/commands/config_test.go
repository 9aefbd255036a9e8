package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, commands.NewDefaultConfig().Validate())
	})

	t.Run("rejects negative minimum", func(t *testing.T) {
		cfg := commands.NewDefaultConfig()
		cfg.ProcessingDelayMin = -time.Second
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects maximum below minimum", func(t *testing.T) {
		cfg := commands.NewDefaultConfig()
		cfg.ShippingDelayMin = 10 * time.Second
		cfg.ShippingDelayMax = time.Second
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects missing initial deadline offset", func(t *testing.T) {
		cfg := commands.NewDefaultConfig()
		cfg.InitialDeadlineOffset = 0
		require.Error(t, cfg.Validate())
	})
}

func TestConfig_DeadlineOffsets(t *testing.T) {
	cfg := commands.Config{
		ProcessingDelayMax: 10 * time.Second,
		ShippingDelayMax:   20 * time.Second,
		DeliveryDelayMax:   30 * time.Second,
	}

	// Each deadline covers 1.5x the worst-case latency of the stage
	// expected to act next.
	require.Equal(t, 15*time.Second, cfg.ProcessingDeadlineOffset())
	require.Equal(t, 30*time.Second, cfg.PackagingDeadlineOffset())
	require.Equal(t, 45*time.Second, cfg.ShippedDeadlineOffset())
}
