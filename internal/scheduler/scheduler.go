// Package scheduler runs periodic moderation housekeeping.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// initialLookback is the window covered by the first run after startup.
const initialLookback = time.Hour

// ExpiryNotifier notifies users whose timed suspension ended in (from, to].
type ExpiryNotifier interface {
	NotifyExpired(ctx context.Context, from, to time.Time) (int, error)
}

// Service owns the cron runner.
type Service struct {
	cron     *cron.Cron
	schedule string
	notifier ExpiryNotifier
	now      func() time.Time
	timeout  time.Duration

	mu      sync.Mutex
	lastRun time.Time
}

// NewService creates a scheduler. schedule is a six-field cron expression
// (seconds first).
func NewService(schedule string, notifier ExpiryNotifier) *Service {
	return &Service{
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		schedule: schedule,
		notifier: notifier,
		now:      time.Now,
		timeout:  time.Minute,
	}
}

// Start registers the jobs and starts the runner.
func (s *Service) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunExpiryNotices(ctx); err != nil {
			slog.Error("suspension expiry notices failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule expiry notices %q: %w", s.schedule, err)
	}

	s.cron.Start()
	slog.Info("scheduler started", "expiry_notice_schedule", s.schedule)
	return nil
}

// Stop stops the runner and waits for a job in flight.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunExpiryNotices covers the window since the previous successful run. A
// failed run leaves the window open so the next run retries it.
func (s *Service) RunExpiryNotices(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	to := s.now()
	from := s.lastRun
	if from.IsZero() {
		from = to.Add(-initialLookback)
	}
	n, err := s.notifier.NotifyExpired(ctx, from, to)
	if err != nil {
		return 0, err
	}
	s.lastRun = to
	if n > 0 {
		slog.Info("sent suspension expiry notices", "count", n, "from", from, "to", to)
	}
	return n, nil
}
