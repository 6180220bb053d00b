package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"warden/internal/cache"
	"warden/internal/models"
	"warden/internal/observability"
	"warden/internal/repository"
)

// Suspension messages shown to sanctioned users.
const (
	MessagePermanentSuspension = "account permanently suspended"
	suspendedUntilFormat       = "account suspended until %s"
)

// SanctionService issues and evaluates penalties.
type SanctionService struct {
	penaltyRepo repository.PenaltyRepository
	events      Dispatcher
	clock       Clock
	cacheTTL    time.Duration
	audit       *observability.AuditLogger
}

// IssueInput describes a penalty to issue.
type IssueInput struct {
	UserID   uint
	Reason   string
	Type     models.PenaltyType
	IssuedBy uint
}

// NewSanctionService creates a SanctionService. cacheTTL bounds how long a
// computed status may be served from Redis; zero disables caching.
func NewSanctionService(penaltyRepo repository.PenaltyRepository, events Dispatcher, clock Clock, cacheTTL time.Duration) *SanctionService {
	return &SanctionService{
		penaltyRepo: penaltyRepo,
		events:      dispatcherOrNop(events),
		clock:       clockOrSystem(clock),
		cacheTTL:    cacheTTL,
		audit:       observability.NewAuditLogger(),
	}
}

// Issue records a new penalty.
func (s *SanctionService) Issue(ctx context.Context, in IssueInput) (*models.Penalty, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("user_id is required")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, models.NewValidationError("reason is required")
	}
	if err := in.Type.Validate(); err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	penalty := &models.Penalty{
		UserID:    in.UserID,
		Kind:      in.Type.Kind,
		Reason:    reason,
		IssuedBy:  in.IssuedBy,
		CreatedAt: now,
	}
	if in.Type.Kind == models.PenaltyTimed {
		expires := now.Add(in.Type.Duration)
		penalty.ExpiresAt = &expires
		penalty.DurationHours = int(in.Type.Duration / time.Hour)
	}

	if err := s.penaltyRepo.Create(ctx, penalty); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.SuspensionKey(in.UserID))

	observability.PenaltiesIssued.WithLabelValues(string(penalty.Kind)).Inc()
	s.audit.Record(ctx, "penalty_issued", in.IssuedBy, map[string]any{
		"user_id":    in.UserID,
		"penalty_id": penalty.ID,
		"kind":       in.Type.String(),
	})
	notifyUser(ctx, s.events, in.UserID, models.Notice{
		Type:    models.NoticePenaltyIssued,
		Message: penaltyNoticeMessage(penalty),
		Payload: map[string]any{"penalty_id": penalty.ID, "kind": penalty.Kind, "reason": penalty.Reason},
	})
	publishAdmin(ctx, s.events, models.EventPenaltyIssued, map[string]any{
		"user_id":    in.UserID,
		"penalty_id": penalty.ID,
		"kind":       penalty.Kind,
		"issued_by":  in.IssuedBy,
	})
	return penalty, nil
}

func penaltyNoticeMessage(p *models.Penalty) string {
	switch p.Kind {
	case models.PenaltyPermanent:
		return MessagePermanentSuspension
	case models.PenaltyTimed:
		return suspendedUntil(*p.ExpiresAt)
	default:
		return "you have received a warning: " + p.Reason
	}
}

func suspendedUntil(t time.Time) string {
	return fmt.Sprintf(suspendedUntilFormat, t.UTC().Format("2006-01-02 15:04 MST"))
}

// CheckStatus derives the user's current suspension status.
func (s *SanctionService) CheckStatus(ctx context.Context, userID uint) (models.SuspensionStatus, error) {
	var status models.SuspensionStatus
	err := cache.Aside(ctx, cache.SuspensionKey(userID), &status,
		func() time.Duration { return s.statusTTL(status) },
		func() error {
			var err error
			status, err = s.computeStatus(ctx, userID)
			return err
		})
	if err != nil {
		return models.SuspensionStatus{}, err
	}
	// A cached timed suspension may have lapsed between write and read.
	if status.IsSuspended && !status.Permanent && status.SuspendedUntil != nil && !status.SuspendedUntil.After(s.clock()) {
		cache.Invalidate(ctx, cache.SuspensionKey(userID))
		return s.computeStatus(ctx, userID)
	}
	return status, nil
}

// statusTTL never lets a cached timed suspension outlive its expiry.
func (s *SanctionService) statusTTL(status models.SuspensionStatus) time.Duration {
	ttl := s.cacheTTL
	if status.SuspendedUntil != nil {
		if remaining := status.SuspendedUntil.Sub(s.clock()); remaining < ttl {
			ttl = remaining
		}
	}
	return ttl
}

func (s *SanctionService) computeStatus(ctx context.Context, userID uint) (models.SuspensionStatus, error) {
	now := s.clock().UTC()
	active, err := s.penaltyRepo.ListActive(ctx, userID, now)
	if err != nil {
		return models.SuspensionStatus{}, err
	}
	return StatusFromPenalties(active, now), nil
}

// StatusFromPenalties picks the governing penalty: any permanent penalty wins,
// otherwise the timed penalty expiring last.
func StatusFromPenalties(penalties []models.Penalty, now time.Time) models.SuspensionStatus {
	var latest *time.Time
	for i := range penalties {
		p := penalties[i]
		if !p.SuspendsAt(now) {
			continue
		}
		if p.Kind == models.PenaltyPermanent {
			return models.SuspensionStatus{
				IsSuspended: true,
				Permanent:   true,
				Message:     MessagePermanentSuspension,
			}
		}
		if latest == nil || p.ExpiresAt.After(*latest) {
			latest = p.ExpiresAt
		}
	}
	if latest == nil {
		return models.SuspensionStatus{}
	}
	until := latest.UTC()
	return models.SuspensionStatus{
		IsSuspended:    true,
		SuspendedUntil: &until,
		Message:        suspendedUntil(until),
	}
}

// EnsureActive returns an ACCOUNT_SUSPENDED error when the user is suspended.
func (s *SanctionService) EnsureActive(ctx context.Context, userID uint) error {
	status, err := s.CheckStatus(ctx, userID)
	if err != nil {
		return err
	}
	if status.IsSuspended {
		return models.NewSuspendedError(status.Message)
	}
	return nil
}

// Revoke lifts every active timed or permanent penalty. Warnings are kept.
func (s *SanctionService) Revoke(ctx context.Context, userID, adminID uint) (bool, error) {
	deleted, err := s.penaltyRepo.DeleteActive(ctx, userID, s.clock().UTC())
	if err != nil {
		return false, err
	}
	cache.Invalidate(ctx, cache.SuspensionKey(userID))
	if deleted == 0 {
		return false, nil
	}

	s.audit.Record(ctx, "penalty_revoked", adminID, map[string]any{"user_id": userID, "revoked": deleted})
	notifyUser(ctx, s.events, userID, models.Notice{
		Type:    models.NoticePenaltyRevoked,
		Message: "your suspension has been lifted",
	})
	publishAdmin(ctx, s.events, models.EventPenaltyRevoked, map[string]any{"user_id": userID, "admin_id": adminID})
	return true, nil
}

// History returns every penalty the user received, newest first.
func (s *SanctionService) History(ctx context.Context, userID uint) ([]models.Penalty, error) {
	return s.penaltyRepo.ListByUser(ctx, userID)
}

// NotifyExpired tells users whose timed suspension ended in (from, to] that
// their account is active again. It returns the number of users notified.
func (s *SanctionService) NotifyExpired(ctx context.Context, from, to time.Time) (int, error) {
	expired, err := s.penaltyRepo.ListExpiredBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}

	notified := 0
	seen := make(map[uint]struct{}, len(expired))
	for _, p := range expired {
		if _, dup := seen[p.UserID]; dup {
			continue
		}
		seen[p.UserID] = struct{}{}

		status, err := s.CheckStatus(ctx, p.UserID)
		if err != nil {
			observability.LogAsyncOperationError(ctx, "suspension_expiry_check", err, map[string]any{"user_id": p.UserID})
			continue
		}
		if status.IsSuspended {
			continue
		}
		notifyUser(ctx, s.events, p.UserID, models.Notice{
			Type:    models.NoticeSuspensionExpired,
			Message: "your suspension has ended",
			Payload: map[string]any{"penalty_id": p.ID},
		})
		notified++
	}
	return notified, nil
}
