package jobs

import (
	"context"
	"time"

	"toutaunclicla/pkg/logger"

	"github.com/go-faster/errors"
	"github.com/robfig/cron/v3"
)

type StaleOrderSweeper interface {
	SweepStalePending(ctx context.Context, olderThan time.Duration, batch int) (int, error)
}

type SweeperConfig struct {
	Schedule   string
	PendingTTL time.Duration
	Batch      int
	Timeout    time.Duration
}

// NewSweeper schedules the release of pending orders whose payment never
// completed. The returned scheduler is not started.
func NewSweeper(svc StaleOrderSweeper, cfg SweeperConfig) (*cron.Cron, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.Schedule, sweepJob(svc, cfg)); err != nil {
		return nil, errors.Wrapf(err, "schedule %q", cfg.Schedule)
	}

	return c, nil
}

func sweepJob(svc StaleOrderSweeper, cfg SweeperConfig) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		if _, err := svc.SweepStalePending(ctx, cfg.PendingTTL, cfg.Batch); err != nil {
			logger.Error("Stale order sweep failed", err)
		}
	}
}
