// Package models defines the persisted moderation records and the value types
// shared between the screening, reporting and sanction layers.
package models

import (
	"fmt"
	"strings"
)

// TargetType is the kind of content a report or screening decision refers to.
type TargetType string

const (
	TargetPost             TargetType = "post"
	TargetComment          TargetType = "comment"
	TargetCommunityPost    TargetType = "community_post"
	TargetCommunityComment TargetType = "community_comment"
	TargetEvent            TargetType = "event"
)

// TargetTypes lists every supported target type.
var TargetTypes = []TargetType{
	TargetPost,
	TargetComment,
	TargetCommunityPost,
	TargetCommunityComment,
	TargetEvent,
}

// Valid reports whether t is one of the supported target types.
func (t TargetType) Valid() bool {
	for _, known := range TargetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTargetType accepts the snake_case form as well as the dashed form used in URLs.
func ParseTargetType(raw string) (TargetType, error) {
	t := TargetType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	if !t.Valid() {
		return "", NewValidationError(fmt.Sprintf("unsupported target type %q", raw))
	}
	return t, nil
}

// ContentTarget identifies one piece of user content.
type ContentTarget struct {
	Type TargetType `json:"target_type"`
	ID   uint       `json:"target_id"`
}

// Validate checks the target identity.
func (t ContentTarget) Validate() error {
	if !t.Type.Valid() {
		return NewValidationError(fmt.Sprintf("unsupported target type %q", t.Type))
	}
	if t.ID == 0 {
		return NewValidationError("target_id is required")
	}
	return nil
}

func (t ContentTarget) String() string {
	return fmt.Sprintf("%s:%d", t.Type, t.ID)
}
