package service

import (
	"context"
	"log/slog"

	"warden/internal/models"
	"warden/internal/observability"
	"warden/internal/repository"
)

const (
	defaultQueueLimit = 20
	maxQueueLimit     = 100
	userDetailReports = 200
)

// ReportQueuePage is one page of the admin review queue.
type ReportQueuePage struct {
	Groups []*models.ReportGroup `json:"groups"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// ReportGroupDetail is the admin view of one reported target.
type ReportGroupDetail struct {
	Group   *models.ReportGroup `json:"group"`
	Reports []models.Report     `json:"reports"`
	Content *models.Content     `json:"content,omitempty"`
}

// UserModerationDetail aggregates a user's moderation record for admins.
type UserModerationDetail struct {
	UserID       uint                    `json:"user_id"`
	Trust        models.TrustStanding    `json:"trust"`
	Status       models.SuspensionStatus `json:"status"`
	Penalties    []models.Penalty        `json:"penalties"`
	ReportsFiled []models.Report         `json:"reports_filed"`
	Warnings     []string                `json:"warnings,omitempty"`
}

// ModerationService provides the admin review surface.
type ModerationService struct {
	reportRepo  repository.ReportRepository
	trustRepo   repository.TrustRepository
	contentRepo repository.ContentRepository
	sanctions   *SanctionService
	events      Dispatcher
	audit       *observability.AuditLogger
}

// NewModerationService returns a new ModerationService.
func NewModerationService(
	reportRepo repository.ReportRepository,
	trustRepo repository.TrustRepository,
	contentRepo repository.ContentRepository,
	sanctions *SanctionService,
	events Dispatcher,
) *ModerationService {
	return &ModerationService{
		reportRepo:  reportRepo,
		trustRepo:   trustRepo,
		contentRepo: contentRepo,
		sanctions:   sanctions,
		events:      dispatcherOrNop(events),
		audit:       observability.NewAuditLogger(),
	}
}

// ListReportQueue returns pending report groups, most reported first.
func (s *ModerationService) ListReportQueue(ctx context.Context, limit, offset int) (*ReportQueuePage, error) {
	if limit <= 0 {
		limit = defaultQueueLimit
	}
	if limit > maxQueueLimit {
		limit = maxQueueLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.reportRepo.ListPendingGroups(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &ReportQueuePage{
		Groups: make([]*models.ReportGroup, 0, len(rows)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, row := range rows {
		pending, err := s.reportRepo.PendingByTarget(ctx, row.Target())
		if err != nil {
			return nil, err
		}
		group := models.GroupReports(row.Target(), pending)
		// Resolved between the two queries.
		if group.Count == 0 {
			continue
		}
		page.Groups = append(page.Groups, group)
	}
	return page, nil
}

// GetReportGroupDetail returns the pending aggregate, the full report history
// and the stored content for target.
func (s *ModerationService) GetReportGroupDetail(ctx context.Context, target models.ContentTarget) (*ReportGroupDetail, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	reports, err := s.reportRepo.ListByTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	detail := &ReportGroupDetail{
		Group:   models.GroupReports(target, reports),
		Reports: reports,
	}
	content, err := s.contentRepo.Get(ctx, target)
	switch {
	case err == nil:
		detail.Content = content
	case models.HasCode(err, models.CodeNotFound):
		if len(reports) == 0 {
			return nil, models.NewNotFoundError("Report group", target.String())
		}
	default:
		return nil, err
	}
	return detail, nil
}

// GetUserDetail returns the user's moderation record. Sections that fail to
// load are reported as warnings instead of failing the whole view.
func (s *ModerationService) GetUserDetail(ctx context.Context, userID uint) (*UserModerationDetail, error) {
	if userID == 0 {
		return nil, models.NewValidationError("user id is required")
	}
	detail := &UserModerationDetail{
		UserID:       userID,
		Trust:        models.TrustStanding{UserID: userID},
		Penalties:    []models.Penalty{},
		ReportsFiled: []models.Report{},
	}

	if standing, err := s.trustRepo.Get(ctx, userID); err != nil {
		slog.WarnContext(ctx, "failed to load trust standing for user", "user_id", userID, "err", err)
		detail.Warnings = append(detail.Warnings, "Partial data: Trust standing could not be loaded.")
	} else {
		detail.Trust = *standing
	}

	if status, err := s.sanctions.CheckStatus(ctx, userID); err != nil {
		slog.WarnContext(ctx, "failed to load suspension status for user", "user_id", userID, "err", err)
		detail.Warnings = append(detail.Warnings, "Partial data: Suspension status could not be loaded.")
	} else {
		detail.Status = status
	}

	if penalties, err := s.sanctions.History(ctx, userID); err != nil {
		slog.WarnContext(ctx, "failed to load penalties for user", "user_id", userID, "err", err)
		detail.Warnings = append(detail.Warnings, "Partial data: Penalty history could not be loaded.")
	} else if penalties != nil {
		detail.Penalties = penalties
	}

	if reports, err := s.reportRepo.ListByReporter(ctx, userID, userDetailReports); err != nil {
		slog.WarnContext(ctx, "failed to load reports filed by user", "user_id", userID, "err", err)
		detail.Warnings = append(detail.Warnings, "Partial data: Filed reports could not be loaded.")
	} else if reports != nil {
		detail.ReportsFiled = reports
	}

	return detail, nil
}

// RestoreContent lifts concealment. Pending reports stay in the queue.
func (s *ModerationService) RestoreContent(ctx context.Context, target models.ContentTarget, adminID uint) error {
	if err := target.Validate(); err != nil {
		return err
	}
	content, err := s.contentRepo.Get(ctx, target)
	if err != nil {
		return err
	}
	if err := s.contentRepo.SetConcealed(ctx, target, false); err != nil {
		return err
	}

	s.audit.Record(ctx, "content_restored", adminID, map[string]any{"target": target.String()})
	publishAdmin(ctx, s.events, models.EventContentRestored, map[string]any{"target": target, "admin_id": adminID})
	if content.Concealed {
		notifyUser(ctx, s.events, content.AuthorID, models.Notice{
			Type:    models.NoticeContentConcealed,
			Message: "your content has been restored",
			Payload: map[string]any{"target": target, "concealed": false},
		})
	}
	return nil
}

// DeleteContent removes content and every report about it.
func (s *ModerationService) DeleteContent(ctx context.Context, target models.ContentTarget, adminID uint) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := s.contentRepo.Delete(ctx, target); err != nil {
		return err
	}
	s.audit.Record(ctx, "content_deleted", adminID, map[string]any{"target": target.String()})
	publishAdmin(ctx, s.events, models.EventContentDeleted, map[string]any{"target": target, "admin_id": adminID})
	return nil
}
