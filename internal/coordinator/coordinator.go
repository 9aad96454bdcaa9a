// Package coordinator owns the fetch-parse-publish update cycle.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/meteowatch/kindex-forecast/internal/domain"
	"github.com/meteowatch/kindex-forecast/internal/observability"
)

// Fetcher retrieves the raw forecast widget markup.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Event is delivered to subscribers once per cycle: a freshly published
// snapshot on success, or the error that failed the cycle. The previous
// snapshot stays readable either way.
type Event struct {
	Snapshot *domain.Snapshot
	Err      error
}

// Coordinator runs one fetch per interval, extracts a reading per configured
// day offset, and publishes the assembled snapshot atomically to all
// subscribers. Concurrent refresh requests coalesce into the in-flight cycle
// instead of triggering a second fetch.
type Coordinator struct {
	fetcher Fetcher
	horizon int
	logger  *slog.Logger
	metrics *observability.Metrics

	group singleflight.Group

	mu       sync.RWMutex
	snapshot *domain.Snapshot
	subs     map[int]chan Event
	nextSub  int
}

// New creates a Coordinator for the given forecast horizon (number of day
// offsets, starting at 0 = today).
func New(fetcher Fetcher, horizon int, logger *slog.Logger, metrics *observability.Metrics) *Coordinator {
	return &Coordinator{
		fetcher: fetcher,
		horizon: horizon,
		logger:  logger,
		metrics: metrics,
		subs:    make(map[int]chan Event),
	}
}

// Refresh runs one update cycle and returns the published snapshot. Calls
// made while a cycle is already fetching or parsing join that cycle's result
// rather than starting another network request.
func (c *Coordinator) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.runCycle(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Snapshot), nil
}

// runCycle performs the fetch, the per-offset extraction, and the atomic
// publish. The reference date is captured once at cycle start so a cycle
// that straddles midnight stays internally consistent.
func (c *Coordinator) runCycle(ctx context.Context) (*domain.Snapshot, error) {
	start := time.Now()
	referenceDate := domain.Now()

	fetchStart := time.Now()
	markup, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.metrics.CyclesTotal.WithLabelValues("fetch_error").Inc()
		c.logger.Error("forecast fetch failed", "error", err)
		c.notify(Event{Err: err})
		return nil, err
	}
	c.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())

	readings := make([]domain.Reading, c.horizon)
	resolved := 0
	for offset := range readings {
		target := referenceDate.AddDate(0, 0, offset)
		r := domain.Extract(markup, target)
		readings[offset] = r

		switch r.Status {
		case domain.StatusOK:
			resolved++
			c.metrics.LastKIndex.WithLabelValues(strconv.Itoa(offset)).Set(float64(r.Value))
		case domain.StatusMissing:
			c.logger.Warn("forecast entry missing",
				"offset", offset, "date", target.Format("2006-01-02"))
			c.metrics.ParseFailures.WithLabelValues("missing").Inc()
		case domain.StatusInvalid:
			c.logger.Warn("forecast entry not numeric",
				"offset", offset, "date", target.Format("2006-01-02"))
			c.metrics.ParseFailures.WithLabelValues("invalid").Inc()
		}
	}

	outcome := "published"
	if resolved == 0 {
		// Degraded but still published: a sentinel-filled snapshot keeps
		// every consumer resolvable, a full outage does not.
		c.logger.Error("no forecast entries resolved", "horizon", c.horizon, "bytes", len(markup))
		outcome = "degraded"
	}

	snap := &domain.Snapshot{
		ReferenceDate: referenceDate,
		FetchedAt:     domain.Now(),
		Readings:      readings,
	}
	c.publish(snap)

	c.metrics.CyclesTotal.WithLabelValues(outcome).Inc()
	c.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("forecast published",
		"reference_date", referenceDate.Format("2006-01-02"),
		"resolved", resolved,
		"horizon", c.horizon,
	)
	return snap, nil
}

// publish swaps the visible snapshot and notifies subscribers in one step.
func (c *Coordinator) publish(snap *domain.Snapshot) {
	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()

	c.metrics.SnapshotTimestamp.Set(float64(snap.FetchedAt.Unix()))
	c.notify(Event{Snapshot: snap})
}

// Snapshot returns the latest published snapshot, or nil before the first
// completed cycle. The snapshot is immutable; callers must not modify it.
func (c *Coordinator) Snapshot() *domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Horizon returns the configured number of forecast day offsets.
func (c *Coordinator) Horizon() int {
	return c.horizon
}

// Subscribe registers a consumer for per-cycle events and returns the event
// channel with a cancel function. Events are delivered best-effort: a
// subscriber that falls behind misses intermediate events but can always
// read the latest state via Snapshot.
func (c *Coordinator) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Coordinator) notify(ev Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// CheckReadiness returns nil once a snapshot has been published, or an error
// describing why the service is not yet ready.
func (c *Coordinator) CheckReadiness(_ context.Context) error {
	if c.Snapshot() == nil {
		return errors.New("no forecast snapshot published yet")
	}
	return nil
}
