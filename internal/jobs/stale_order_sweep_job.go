package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// StaleOrderSweepJob runs the pipeline watchdog on a fixed schedule. Every
// minute it fails orders whose expected-next deadline has passed without the
// responsible stage having acted.
type StaleOrderSweepJob struct {
	handler commands.SweepStaleOrdersCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewStaleOrderSweepJob creates the sweep job around its command handler.
func NewStaleOrderSweepJob(handler commands.SweepStaleOrdersCommandHandler, logger *slog.Logger) *StaleOrderSweepJob {
	return &StaleOrderSweepJob{
		handler: handler,
		cron:    cron.New(),
		logger:  logger.With("component", "stale_order_sweep_job"),
	}
}

// Start begins the sweep job, running once per minute.
func (j *StaleOrderSweepJob) Start() error {
	_, err := j.cron.AddFunc("@every 1m", func() {
		ctx := context.Background()
		cmd := commands.NewSweepStaleOrdersCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Stale order sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale order sweep job started (running every minute)")
	return nil
}

// Stop stops the sweep job.
func (j *StaleOrderSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale order sweep job stopped")
}
