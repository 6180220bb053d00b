package models

import "time"

// Admin feed event types.
const (
	EventReportFiled                   = "report_filed"
	EventContentConcealed              = "content_concealed"
	EventContentRestored               = "content_restored"
	EventContentDeleted                = "content_deleted"
	EventReportsResolved               = "reports_resolved"
	EventReporterSuspensionRecommended = "reporter_suspension_recommended"
	EventPenaltyIssued                 = "penalty_issued"
	EventPenaltyRevoked                = "penalty_revoked"
	EventBannedTermsChanged            = "banned_terms_changed"
)

// User notice types.
const (
	NoticeReportResolved    = "report_resolved"
	NoticePenaltyIssued     = "penalty_issued"
	NoticePenaltyRevoked    = "penalty_revoked"
	NoticeSuspensionExpired = "suspension_expired"
	NoticeContentConcealed  = "content_concealed"
)

// Notice is a message delivered to a single user.
type Notice struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Payload map[string]any `json:"payload,omitempty"`
	SentAt  time.Time      `json:"sent_at"`
}

// AdminEvent is broadcast on the live moderation feed.
type AdminEvent struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}
