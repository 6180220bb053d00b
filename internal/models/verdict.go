package models

// Stage names the screening step that produced a verdict.
type Stage string

const (
	StageBannedTerm Stage = "banned_term"
	StageClassifier Stage = "classifier"
	StageLink       Stage = "link"
	StageDuplicate  Stage = "duplicate"
	StageImage      Stage = "image_safety"
)

// ModerationVerdict is the outcome of screening one submission. It is never persisted.
type ModerationVerdict struct {
	Blocked  bool    `json:"blocked"`
	Reason   string  `json:"reason,omitempty"`
	Stage    Stage   `json:"stage,omitempty"`
	Category string  `json:"category,omitempty"`
	Score    float64 `json:"score,omitempty"`
}

// Pass is the verdict for content that cleared every stage.
func Pass() ModerationVerdict {
	return ModerationVerdict{}
}

// Block builds a blocking verdict for the given stage.
func Block(stage Stage, reason string) ModerationVerdict {
	return ModerationVerdict{Blocked: true, Stage: stage, Reason: reason}
}
