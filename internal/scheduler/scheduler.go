// Package scheduler triggers the coordinator's update cycle on a fixed
// interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/meteowatch/kindex-forecast/internal/domain"
)

// Refresher runs one update cycle on demand.
type Refresher interface {
	Refresh(ctx context.Context) (*domain.Snapshot, error)
}

// Scheduler invokes the refresher every interval. Failures are logged and
// left to the next tick; there is no backoff or immediate retry.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler. The timeout bounds each cycle end to end.
func New(refresher Refresher, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler
// without blocking.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if _, err := s.refresher.Refresh(ctx); err != nil {
			s.logger.Warn("scheduled refresh failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "interval", s.interval)
	return nil
}

// Stop cancels future ticks. An in-flight cycle is abandoned via its own
// timeout context.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
