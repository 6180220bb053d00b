package models

import (
	"fmt"
	"strings"
	"time"
)

// ReportStatus is the lifecycle state of a report.
type ReportStatus string

const (
	ReportStatusPending ReportStatus = "pending"
	ReportStatusValid   ReportStatus = "valid"
	ReportStatusFalse   ReportStatus = "false"
)

// ReportReason is one of the fixed report categories.
type ReportReason string

const (
	ReasonSpam           ReportReason = "spam"
	ReasonAbuse          ReportReason = "abuse"
	ReasonSexual         ReportReason = "sexual"
	ReasonViolence       ReportReason = "violence"
	ReasonHate           ReportReason = "hate"
	ReasonMisinformation ReportReason = "misinformation"
	ReasonPrivacy        ReportReason = "privacy"
	// ReasonOther carries a free-text explanation in Report.Detail.
	ReasonOther ReportReason = "other"
)

var reportReasons = map[ReportReason]struct{}{
	ReasonSpam:           {},
	ReasonAbuse:          {},
	ReasonSexual:         {},
	ReasonViolence:       {},
	ReasonHate:           {},
	ReasonMisinformation: {},
	ReasonPrivacy:        {},
	ReasonOther:          {},
}

// ParseReportReason validates a reason supplied by a client.
func ParseReportReason(raw string) (ReportReason, error) {
	r := ReportReason(strings.ToLower(strings.TrimSpace(raw)))
	if r == "" {
		return "", NewValidationError("reason is required")
	}
	if _, ok := reportReasons[r]; !ok {
		return "", NewValidationError(fmt.Sprintf("unsupported report reason %q", raw))
	}
	return r, nil
}

// Report is one user's complaint about one target. At most one pending report
// exists per (reporter, target); the partial unique index enforces it.
type Report struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	TargetType       TargetType   `gorm:"size:32;not null;index:idx_reports_target,priority:1;index:idx_reports_pending_reporter,unique,priority:2,where:status = 'pending'" json:"target_type"`
	TargetID         uint         `gorm:"not null;index:idx_reports_target,priority:2;index:idx_reports_pending_reporter,priority:3" json:"target_id"`
	ReporterID       uint         `gorm:"not null;index;index:idx_reports_pending_reporter,priority:1" json:"reporter_id"`
	Reason           ReportReason `gorm:"size:32;not null" json:"reason"`
	Detail           string       `gorm:"type:text" json:"detail,omitempty"`
	Status           ReportStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	ResolvedAt       *time.Time   `json:"resolved_at,omitempty"`
	ResolvedByUserID *uint        `json:"resolved_by_user_id,omitempty"`
}

// TableName returns the database table name for Report.
func (Report) TableName() string {
	return "reports"
}

// Target returns the content the report refers to.
func (r Report) Target() ContentTarget {
	return ContentTarget{Type: r.TargetType, ID: r.TargetID}
}

// ReportGroup is the aggregate of pending reports for one target. It is derived
// on demand and never stored.
type ReportGroup struct {
	Target         ContentTarget        `json:"target"`
	Count          int                  `json:"count"`
	ReporterIDs    []uint               `json:"reporter_ids"`
	Reasons        map[ReportReason]int `json:"reasons"`
	LatestReportAt time.Time            `json:"latest_report_at"`
}

// GroupReports folds pending reports for a single target into a ReportGroup.
func GroupReports(target ContentTarget, reports []Report) *ReportGroup {
	group := &ReportGroup{
		Target:      target,
		ReporterIDs: make([]uint, 0, len(reports)),
		Reasons:     make(map[ReportReason]int),
	}
	seen := make(map[uint]struct{}, len(reports))
	for _, r := range reports {
		if r.Status != ReportStatusPending {
			continue
		}
		group.Count++
		group.Reasons[r.Reason]++
		if _, dup := seen[r.ReporterID]; !dup {
			seen[r.ReporterID] = struct{}{}
			group.ReporterIDs = append(group.ReporterIDs, r.ReporterID)
		}
		if r.CreatedAt.After(group.LatestReportAt) {
			group.LatestReportAt = r.CreatedAt
		}
	}
	return group
}
