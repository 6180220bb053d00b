// Package service holds the moderation engine's business logic: screening,
// report intake, adjudication and sanctions.
package service

import (
	"context"
	"log/slog"
	"time"

	"warden/internal/config"
	"warden/internal/models"
	"warden/internal/observability"
)

// ContentStore is the engine's view of the content it moderates.
type ContentStore interface {
	Exists(ctx context.Context, target models.ContentTarget) (bool, error)
	RecentBodiesByAuthor(ctx context.Context, authorID uint, since time.Time) ([]string, error)
	SetConcealed(ctx context.Context, target models.ContentTarget, concealed bool) error
	Delete(ctx context.Context, target models.ContentTarget) error
}

// Dispatcher delivers user notices and admin feed events. Delivery is best
// effort; callers log failures and carry on.
type Dispatcher interface {
	NotifyUser(ctx context.Context, userID uint, notice models.Notice) error
	PublishAdminEvent(ctx context.Context, event models.AdminEvent) error
}

type nopDispatcher struct{}

func (nopDispatcher) NotifyUser(context.Context, uint, models.Notice) error { return nil }
func (nopDispatcher) PublishAdminEvent(context.Context, models.AdminEvent) error { return nil }

func dispatcherOrNop(d Dispatcher) Dispatcher {
	if d == nil {
		return nopDispatcher{}
	}
	return d
}

// Policy holds the tunable moderation thresholds.
type Policy struct {
	ConcealThreshold   int
	PrivilegeSuspendAt int
	AccountSuspendAt   int
	DuplicateThreshold float64
	DuplicateWindow    time.Duration
	ClassifierTimeout  time.Duration
	SuspensionCacheTTL time.Duration
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		ConcealThreshold:   3,
		PrivilegeSuspendAt: 10,
		AccountSuspendAt:   20,
		DuplicateThreshold: 0.8,
		DuplicateWindow:    24 * time.Hour,
		ClassifierTimeout:  3 * time.Second,
		SuspensionCacheTTL: 5 * time.Minute,
	}
}

// withDefaults fills unset thresholds from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.ConcealThreshold <= 0 {
		p.ConcealThreshold = d.ConcealThreshold
	}
	if p.PrivilegeSuspendAt <= 0 {
		p.PrivilegeSuspendAt = d.PrivilegeSuspendAt
	}
	if p.AccountSuspendAt <= 0 {
		p.AccountSuspendAt = d.AccountSuspendAt
	}
	if p.DuplicateThreshold <= 0 {
		p.DuplicateThreshold = d.DuplicateThreshold
	}
	if p.DuplicateWindow <= 0 {
		p.DuplicateWindow = d.DuplicateWindow
	}
	if p.ClassifierTimeout <= 0 {
		p.ClassifierTimeout = d.ClassifierTimeout
	}
	return p
}

// PolicyFromConfig reads the thresholds from cfg.
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		ConcealThreshold:   cfg.ReportConcealThreshold,
		PrivilegeSuspendAt: cfg.ReportPrivilegeSuspendAt,
		AccountSuspendAt:   cfg.ReportAccountSuspendAt,
		DuplicateThreshold: cfg.DuplicateSimilarityThreshold,
		DuplicateWindow:    cfg.DuplicateWindow(),
		ClassifierTimeout:  cfg.ClassifierTimeout(),
		SuspensionCacheTTL: cfg.SuspensionCacheTTL(),
	}
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}

func notifyUser(ctx context.Context, d Dispatcher, userID uint, notice models.Notice) {
	if notice.SentAt.IsZero() {
		notice.SentAt = time.Now().UTC()
	}
	if err := d.NotifyUser(ctx, userID, notice); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "user notice failed",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("notice", notice.Type),
			slog.String("error", err.Error()),
		)
	}
}

func publishAdmin(ctx context.Context, d Dispatcher, eventType string, payload map[string]any) {
	event := models.AdminEvent{Type: eventType, Payload: payload, At: time.Now().UTC()}
	if err := d.PublishAdminEvent(ctx, event); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "admin event publish failed",
			slog.String("event", eventType),
			slog.String("error", err.Error()),
		)
	}
}
