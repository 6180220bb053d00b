package models

import "time"

// Content is the engine's record of a published submission: enough to run
// duplicate detection and to conceal or delete it.
type Content struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TargetType TargetType `gorm:"size:32;not null;uniqueIndex:idx_contents_target,priority:1" json:"target_type"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_contents_target,priority:2" json:"target_id"`
	AuthorID   uint       `gorm:"not null;index:idx_contents_author_created,priority:1" json:"author_id"`
	Body       string     `gorm:"type:text" json:"body"`
	ImageCount int        `gorm:"not null;default:0" json:"image_count"`
	Concealed  bool       `gorm:"not null;default:false;index" json:"concealed"`
	CreatedAt  time.Time  `gorm:"index:idx_contents_author_created,priority:2" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Content.
func (Content) TableName() string {
	return "contents"
}

// Target returns the identity of the content.
func (c Content) Target() ContentTarget {
	return ContentTarget{Type: c.TargetType, ID: c.TargetID}
}

// BannedTerm is an administrator-managed entry of the lexical block list.
type BannedTerm struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Term      string    `gorm:"size:255;not null;uniqueIndex" json:"term"`
	CreatedBy uint      `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for BannedTerm.
func (BannedTerm) TableName() string {
	return "banned_terms"
}
