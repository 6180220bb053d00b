package models

import "time"

// TrustStanding tracks how many of a user's reports were judged false.
// The counter only grows; rows are created lazily on the first false report.
type TrustStanding struct {
	UserID           uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FalseReportCount int       `gorm:"not null;default:0" json:"false_report_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the database table name for TrustStanding.
func (TrustStanding) TableName() string {
	return "trust_standings"
}
