// Package retention runs the background eviction loop. It fires on a cron
// schedule, independent of request traffic, and deletes records older than
// the configured eviction window across all chats.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/basket/chatdigest/internal/otel"
)

// cronParser parses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow,
)

// Evicter is the store capability the scheduler drives.
type Evicter interface {
	EvictOlderThan(ctx context.Context, windowHours int) (int64, error)
}

// Config holds the dependencies for the retention scheduler.
type Config struct {
	Store       Evicter
	Logger      *slog.Logger
	Schedule    string // cron expression; defaults to hourly
	WindowHours int    // eviction window, independent of the summary window
	Metrics     *otel.Metrics
}

// Scheduler periodically evicts expired records. One failed round is logged
// and the loop continues to the next firing.
type Scheduler struct {
	store       Evicter
	logger      *slog.Logger
	schedule    cronlib.Schedule
	windowHours int
	metrics     *otel.Metrics

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler validates the cron expression and builds the scheduler.
func NewScheduler(cfg Config) (*Scheduler, error) {
	expr := cfg.Schedule
	if expr == "" {
		expr = "0 * * * *"
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse eviction schedule %q: %w", expr, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:       cfg.Store,
		logger:      logger,
		schedule:    schedule,
		windowHours: cfg.WindowHours,
		metrics:     cfg.Metrics,
	}, nil
}

// Start begins the eviction loop in a background goroutine. The loop fires
// once immediately, then at each scheduled time.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	s.logger.Info("retention scheduler started", "window_hours", s.windowHours)
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("retention scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.tick(ctx)

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.tick(ctx)
		}
	}
}

// tick runs one eviction round.
func (s *Scheduler) tick(ctx context.Context) {
	deleted, err := s.store.EvictOlderThan(ctx, s.windowHours)
	if err != nil {
		s.logger.Error("retention: eviction round failed", "error", err)
		return
	}
	if s.metrics != nil {
		s.metrics.MessagesEvicted.Add(ctx, deleted)
	}
	if deleted > 0 {
		s.logger.Info("retention: evicted expired messages", "deleted", deleted, "window_hours", s.windowHours)
	}
}
