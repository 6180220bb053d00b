package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// PenaltyKind discriminates the three penalty variants.
type PenaltyKind string

const (
	// PenaltyWarning is recorded in history but never suspends.
	PenaltyWarning PenaltyKind = "warning"
	// PenaltyTimed suspends until ExpiresAt.
	PenaltyTimed PenaltyKind = "timed"
	// PenaltyPermanent suspends with no end.
	PenaltyPermanent PenaltyKind = "permanent"
)

// Penalty is an issued sanction. Rows are never mutated; revocation deletes
// active timed or permanent rows.
type Penalty struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"not null;index:idx_penalties_user_created,priority:1" json:"user_id"`
	Kind          PenaltyKind `gorm:"size:16;not null" json:"kind"`
	DurationHours int         `gorm:"not null;default:0" json:"duration_hours,omitempty"`
	Reason        string      `gorm:"type:text;not null" json:"reason"`
	IssuedBy      uint        `gorm:"not null" json:"issued_by"`
	CreatedAt     time.Time   `gorm:"index:idx_penalties_user_created,priority:2" json:"created_at"`
	ExpiresAt     *time.Time  `gorm:"index" json:"expires_at,omitempty"`
}

// TableName returns the database table name for Penalty.
func (Penalty) TableName() string {
	return "penalties"
}

// SuspendsAt reports whether the penalty keeps the account suspended at now.
func (p Penalty) SuspendsAt(now time.Time) bool {
	switch p.Kind {
	case PenaltyPermanent:
		return true
	case PenaltyTimed:
		return p.ExpiresAt != nil && p.ExpiresAt.After(now)
	default:
		return false
	}
}

// PenaltyType is the requested shape of a new penalty.
type PenaltyType struct {
	Kind     PenaltyKind
	Duration time.Duration
}

// WarningPenalty, TimedPenalty and PermanentPenalty build the three PenaltyType variants.
func WarningPenalty() PenaltyType { return PenaltyType{Kind: PenaltyWarning} }

func TimedPenalty(d time.Duration) PenaltyType { return PenaltyType{Kind: PenaltyTimed, Duration: d} }

func PermanentPenalty() PenaltyType { return PenaltyType{Kind: PenaltyPermanent} }

// Validate checks that a timed penalty carries a positive duration.
func (t PenaltyType) Validate() error {
	switch t.Kind {
	case PenaltyWarning, PenaltyPermanent:
		return nil
	case PenaltyTimed:
		if t.Duration <= 0 {
			return NewValidationError("timed penalty requires a positive duration")
		}
		return nil
	default:
		return NewValidationError(fmt.Sprintf("unsupported penalty kind %q", t.Kind))
	}
}

func (t PenaltyType) String() string {
	if t.Kind != PenaltyTimed {
		return string(t.Kind)
	}
	if t.Duration%(24*time.Hour) == 0 {
		return fmt.Sprintf("timed:%dd", int(t.Duration/(24*time.Hour)))
	}
	return fmt.Sprintf("timed:%dh", int(t.Duration/time.Hour))
}

// ParsePenaltyType accepts "warning", "permanent", and timed forms such as
// "timed:7d", "12h", "7d" or "7days".
func ParsePenaltyType(raw string) (PenaltyType, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "":
		return PenaltyType{}, NewValidationError("penalty type is required")
	case string(PenaltyWarning):
		return WarningPenalty(), nil
	case string(PenaltyPermanent):
		return PermanentPenalty(), nil
	}

	s = strings.TrimPrefix(s, string(PenaltyTimed)+":")
	unit := time.Duration(0)
	for _, suffix := range []struct {
		text string
		unit time.Duration
	}{
		{"days", 24 * time.Hour},
		{"day", 24 * time.Hour},
		{"d", 24 * time.Hour},
		{"hours", time.Hour},
		{"hour", time.Hour},
		{"h", time.Hour},
	} {
		if strings.HasSuffix(s, suffix.text) {
			s = strings.TrimSuffix(s, suffix.text)
			unit = suffix.unit
			break
		}
	}
	if unit == 0 {
		return PenaltyType{}, NewValidationError(fmt.Sprintf("unsupported penalty type %q", raw))
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return PenaltyType{}, NewValidationError(fmt.Sprintf("invalid penalty duration %q", raw))
	}
	if int64(n) > math.MaxInt64/int64(unit) {
		return PenaltyType{}, NewValidationError(fmt.Sprintf("penalty duration %q is too long", raw))
	}
	return TimedPenalty(time.Duration(n) * unit), nil
}

// SuspensionStatus is the derived answer to "is this account sanctioned right now".
type SuspensionStatus struct {
	IsSuspended    bool       `json:"is_suspended"`
	Permanent      bool       `json:"permanent,omitempty"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
	Message        string     `json:"message,omitempty"`
}
