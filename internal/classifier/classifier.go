// Package classifier holds the adapters for the external content classifiers
// used by screening: a semantic text moderation endpoint and an image
// safe-search endpoint. Adapters never retry; callers bound them with a
// context deadline and treat any error as "no opinion".
package classifier

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotConfigured is returned when an adapter has no credentials.
	ErrNotConfigured = errors.New("classifier not configured")
	// ErrUnavailable wraps transport failures and non-2xx responses.
	ErrUnavailable = errors.New("classifier unavailable")
)

// TextClassifier flags text against a set of named categories.
type TextClassifier interface {
	Classify(ctx context.Context, text string) (map[string]bool, error)
}

// ImageClassifier rates an image on the safe-search scales.
type ImageClassifier interface {
	Classify(ctx context.Context, image []byte) (SafeSearch, error)
}

// BlockedTextCategories are the classifier categories that block a submission.
// Any other flagged category is ignored.
var BlockedTextCategories = []string{
	"sexual",
	"sexual/minors",
	"violence/graphic",
	"self-harm/instructions",
}

// BlockedCategory returns the first blocking category flagged in categories.
func BlockedCategory(categories map[string]bool) (string, bool) {
	for _, c := range BlockedTextCategories {
		if categories[c] {
			return c, true
		}
	}
	return "", false
}

// Likelihood is the five-step rating scale used by safe-search, plus unknown.
type Likelihood int

// Likelihood levels in increasing order.
const (
	LikelihoodUnknown Likelihood = iota
	LikelihoodVeryUnlikely
	LikelihoodUnlikely
	LikelihoodPossible
	LikelihoodLikely
	LikelihoodVeryLikely
)

var likelihoodNames = map[string]Likelihood{
	"UNKNOWN":       LikelihoodUnknown,
	"VERY_UNLIKELY": LikelihoodVeryUnlikely,
	"UNLIKELY":      LikelihoodUnlikely,
	"POSSIBLE":      LikelihoodPossible,
	"LIKELY":        LikelihoodLikely,
	"VERY_LIKELY":   LikelihoodVeryLikely,
}

// ParseLikelihood maps a wire name such as "VERY_LIKELY" to its level.
// Unrecognized names are unknown.
func ParseLikelihood(raw string) Likelihood {
	return likelihoodNames[strings.ToUpper(strings.TrimSpace(raw))]
}

func (l Likelihood) String() string {
	for name, v := range likelihoodNames {
		if v == l {
			return name
		}
	}
	return "UNKNOWN"
}

// SafeSearch is one image rating.
type SafeSearch struct {
	Adult    Likelihood `json:"adult"`
	Violence Likelihood `json:"violence"`
	Racy     Likelihood `json:"racy"`
	Medical  Likelihood `json:"medical"`
	Spoof    Likelihood `json:"spoof"`
}

// Unsafe returns the first of adult, violence, racy, medical rated Likely or
// higher. Spoof never makes an image unsafe.
func (s SafeSearch) Unsafe() (string, Likelihood, bool) {
	checks := []struct {
		name  string
		level Likelihood
	}{
		{"adult", s.Adult},
		{"violence", s.Violence},
		{"racy", s.Racy},
		{"medical", s.Medical},
	}
	for _, c := range checks {
		if c.level >= LikelihoodLikely {
			return c.name, c.level, true
		}
	}
	return "", LikelihoodUnknown, false
}
