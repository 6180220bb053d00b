package service

import (
	"context"
	"sort"
	"strings"

	"warden/internal/models"
	"warden/internal/observability"
	"warden/internal/repository"
)

// Verdict is an administrator's ruling on a group of reports.
type Verdict string

const (
	VerdictConfirmed Verdict = "confirmed"
	VerdictFalse     Verdict = "false"
)

// ParseVerdict accepts confirmed/valid and false/rejected.
func ParseVerdict(raw string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirmed", "valid":
		return VerdictConfirmed, nil
	case "false", "rejected":
		return VerdictFalse, nil
	default:
		return "", models.NewValidationError("verdict must be confirmed or false")
	}
}

func (v Verdict) status() models.ReportStatus {
	if v == VerdictConfirmed {
		return models.ReportStatusValid
	}
	return models.ReportStatusFalse
}

// ResolveInput is one adjudication.
type ResolveInput struct {
	Target  models.ContentTarget
	Verdict Verdict
	AdminID uint
}

// ResolveResult summarizes an adjudication.
type ResolveResult struct {
	Resolved int `json:"resolved"`
	// FalseReportCounts holds each penalized reporter's count after the increment.
	FalseReportCounts map[uint]int `json:"false_report_counts,omitempty"`
	// SuspensionRecommended lists reporters whose count reached the account
	// suspension threshold. No penalty is issued automatically.
	SuspensionRecommended []uint `json:"suspension_recommended,omitempty"`
}

// AdjudicationService resolves pending report groups.
type AdjudicationService struct {
	reportRepo repository.ReportRepository
	trustRepo  repository.TrustRepository
	content    ContentStore
	events     Dispatcher
	policy     Policy
	clock      Clock
	audit      *observability.AuditLogger
}

// NewAdjudicationService creates an AdjudicationService.
func NewAdjudicationService(
	reportRepo repository.ReportRepository,
	trustRepo repository.TrustRepository,
	content ContentStore,
	events Dispatcher,
	policy Policy,
	clock Clock,
) *AdjudicationService {
	return &AdjudicationService{
		reportRepo: reportRepo,
		trustRepo:  trustRepo,
		content:    content,
		events:     dispatcherOrNop(events),
		policy:     policy.withDefaults(),
		clock:      clockOrSystem(clock),
		audit:      observability.NewAuditLogger(),
	}
}

// Resolve applies the verdict to every pending report on the target. Reports
// resolved by a concurrent call are not counted again.
func (s *AdjudicationService) Resolve(ctx context.Context, in ResolveInput) (*ResolveResult, error) {
	if err := in.Target.Validate(); err != nil {
		return nil, err
	}
	if in.Verdict != VerdictConfirmed && in.Verdict != VerdictFalse {
		return nil, models.NewValidationError("verdict must be confirmed or false")
	}

	resolved, err := s.reportRepo.ResolvePending(ctx, in.Target, in.Verdict.status(), in.AdminID, s.clock())
	if err != nil {
		return nil, err
	}
	result := &ResolveResult{Resolved: len(resolved)}
	if len(resolved) == 0 {
		return result, nil
	}

	switch in.Verdict {
	case VerdictConfirmed:
		if err := s.content.SetConcealed(ctx, in.Target, true); err != nil {
			return nil, err
		}
	case VerdictFalse:
		reporters := distinctReporters(resolved)
		counts, err := s.trustRepo.IncrementFalseReports(ctx, reporters)
		if err != nil {
			return nil, err
		}
		observability.FalseReportsRecorded.Add(float64(len(reporters)))
		result.FalseReportCounts = counts
		for _, id := range reporters {
			if counts[id] == s.policy.AccountSuspendAt {
				result.SuspensionRecommended = append(result.SuspensionRecommended, id)
			}
		}
	}

	s.audit.Record(ctx, "reports_resolved", in.AdminID, map[string]any{
		"target":   in.Target.String(),
		"verdict":  in.Verdict,
		"resolved": len(resolved),
	})
	publishAdmin(ctx, s.events, models.EventReportsResolved, map[string]any{
		"target":   in.Target,
		"verdict":  in.Verdict,
		"resolved": len(resolved),
		"admin_id": in.AdminID,
	})
	for _, id := range result.SuspensionRecommended {
		publishAdmin(ctx, s.events, models.EventReporterSuspensionRecommended, map[string]any{
			"user_id":            id,
			"false_report_count": result.FalseReportCounts[id],
		})
	}
	for _, id := range distinctReporters(resolved) {
		notifyUser(ctx, s.events, id, models.Notice{
			Type:    models.NoticeReportResolved,
			Message: "a report you filed has been reviewed",
			Payload: map[string]any{"target": in.Target, "verdict": in.Verdict},
		})
	}

	return result, nil
}

func distinctReporters(reports []models.Report) []uint {
	seen := make(map[uint]struct{}, len(reports))
	out := make([]uint, 0, len(reports))
	for _, r := range reports {
		if _, ok := seen[r.ReporterID]; ok {
			continue
		}
		seen[r.ReporterID] = struct{}{}
		out = append(out, r.ReporterID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
