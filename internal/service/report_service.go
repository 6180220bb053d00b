package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"warden/internal/models"
	"warden/internal/observability"
	"warden/internal/repository"
)

// Trust-gate messages.
const (
	MessageReportingPrivilegeSuspended = "reporting privilege suspended"
	MessageReportingAccountSuspended   = "account suspended from reporting"
)

const maxReportDetailLen = 1000

// StatusChecker is the sanction gate consulted before accepting user actions.
type StatusChecker interface {
	EnsureActive(ctx context.Context, userID uint) error
}

// ReportService accepts user reports and conceals heavily reported content.
type ReportService struct {
	reportRepo repository.ReportRepository
	trustRepo  repository.TrustRepository
	content    ContentStore
	sanctions  StatusChecker
	events     Dispatcher
	policy     Policy
	audit      *observability.AuditLogger
}

// FileReportInput is one report submission.
type FileReportInput struct {
	ReporterID uint
	Target     models.ContentTarget
	Reason     models.ReportReason
	Detail     string
}

// FileReportResult describes what filing did.
type FileReportResult struct {
	Report          *models.Report `json:"report,omitempty"`
	AlreadyReported bool           `json:"already_reported"`
	PendingCount    int            `json:"pending_count"`
	Concealed       bool           `json:"concealed"`
}

// NewReportService creates a ReportService.
func NewReportService(
	reportRepo repository.ReportRepository,
	trustRepo repository.TrustRepository,
	content ContentStore,
	sanctions StatusChecker,
	events Dispatcher,
	policy Policy,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		trustRepo:  trustRepo,
		content:    content,
		sanctions:  sanctions,
		events:     dispatcherOrNop(events),
		policy:     policy.withDefaults(),
		audit:      observability.NewAuditLogger(),
	}
}

func (in FileReportInput) validate() (FileReportInput, error) {
	if in.ReporterID == 0 {
		return in, models.NewUnauthorizedError("reporter is required")
	}
	if err := in.Target.Validate(); err != nil {
		return in, err
	}
	reason, err := models.ParseReportReason(string(in.Reason))
	if err != nil {
		return in, err
	}
	in.Reason = reason
	in.Detail = strings.TrimSpace(in.Detail)
	if in.Reason == models.ReasonOther && in.Detail == "" {
		return in, models.NewValidationError("detail is required when reason is other")
	}
	if utf8.RuneCountInString(in.Detail) > maxReportDetailLen {
		return in, models.NewValidationError("detail too long (max 1000 characters)")
	}
	return in, nil
}

// FileReport records a report. Filing the same report twice while it is
// pending is a successful no-op.
func (s *ReportService) FileReport(ctx context.Context, in FileReportInput) (*FileReportResult, error) {
	in, err := in.validate()
	if err != nil {
		observability.ReportsFiled.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if err := s.sanctions.EnsureActive(ctx, in.ReporterID); err != nil {
		observability.ReportsFiled.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if err := s.checkTrust(ctx, in.ReporterID); err != nil {
		observability.ReportsFiled.WithLabelValues("rejected").Inc()
		return nil, err
	}

	exists, err := s.content.Exists(ctx, in.Target)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", in.Target.String())
	}

	report := &models.Report{
		TargetType: in.Target.Type,
		TargetID:   in.Target.ID,
		ReporterID: in.ReporterID,
		Reason:     in.Reason,
		Detail:     in.Detail,
	}
	created, err := s.reportRepo.CreatePending(ctx, report)
	if err != nil {
		return nil, err
	}

	result := &FileReportResult{AlreadyReported: !created}
	if created {
		result.Report = report
		observability.ReportsFiled.WithLabelValues("accepted").Inc()
		s.audit.Record(ctx, "report_filed", in.ReporterID, map[string]any{
			"report_id": report.ID,
			"target":    in.Target.String(),
			"reason":    in.Reason,
		})
	} else {
		observability.ReportsFiled.WithLabelValues("duplicate").Inc()
	}

	count, err := s.reportRepo.CountPending(ctx, in.Target)
	if err != nil {
		return nil, err
	}
	result.PendingCount = int(count)

	if created {
		publishAdmin(ctx, s.events, models.EventReportFiled, map[string]any{
			"target":        in.Target,
			"reason":        in.Reason,
			"pending_count": count,
		})
	}

	// Concealment is re-asserted on duplicates too, so a conceal that failed
	// after an earlier insert is retried.
	if int(count) >= s.policy.ConcealThreshold {
		if err := s.content.SetConcealed(ctx, in.Target, true); err != nil {
			return nil, err
		}
		result.Concealed = true
		if created && int(count) == s.policy.ConcealThreshold {
			observability.ContentConcealed.WithLabelValues("report_threshold").Inc()
			publishAdmin(ctx, s.events, models.EventContentConcealed, map[string]any{
				"target":        in.Target,
				"pending_count": count,
			})
		}
	}

	return result, nil
}

func (s *ReportService) checkTrust(ctx context.Context, reporterID uint) error {
	standing, err := s.trustRepo.Get(ctx, reporterID)
	if err != nil {
		return err
	}
	switch {
	case standing.FalseReportCount >= s.policy.AccountSuspendAt:
		return models.NewPrivilegeDeniedError(MessageReportingAccountSuspended)
	case standing.FalseReportCount >= s.policy.PrivilegeSuspendAt:
		return models.NewPrivilegeDeniedError(MessageReportingPrivilegeSuspended)
	}
	return nil
}

// Aggregate folds the pending reports on target into a ReportGroup.
func (s *ReportService) Aggregate(ctx context.Context, target models.ContentTarget) (*models.ReportGroup, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	pending, err := s.reportRepo.PendingByTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	return models.GroupReports(target, pending), nil
}
