package moderation

import "strings"

type compiledTerm struct {
	raw        string
	normalized string
	phonetic   string
}

// TextMatcher checks text against a banned-term list. A term matches when the
// normalized text contains the normalized term, or the phonetic reduction of the
// text contains the phonetic reduction of the term.
type TextMatcher struct {
	terms []compiledTerm
}

// NewTextMatcher precomputes both forms of every term. Terms that normalize to
// the empty string are dropped.
func NewTextMatcher(terms []string) *TextMatcher {
	m := &TextMatcher{terms: make([]compiledTerm, 0, len(terms))}
	for _, t := range terms {
		n := Normalize(t)
		if n == "" {
			continue
		}
		m.terms = append(m.terms, compiledTerm{
			raw:        t,
			normalized: n,
			phonetic:   PhoneticReduce(n),
		})
	}
	return m
}

// Len returns the number of usable terms.
func (m *TextMatcher) Len() int {
	return len(m.terms)
}

// Match returns the first term found in text.
func (m *TextMatcher) Match(text string) (string, bool) {
	if m == nil || len(m.terms) == 0 {
		return "", false
	}
	normalized := Normalize(text)
	if normalized == "" {
		return "", false
	}
	phonetic := PhoneticReduce(normalized)

	for _, t := range m.terms {
		if strings.Contains(normalized, t.normalized) || strings.Contains(phonetic, t.phonetic) {
			return t.raw, true
		}
	}
	return "", false
}

// MatchText is the one-shot form of NewTextMatcher(terms).Match(text).
func MatchText(text string, terms []string) bool {
	_, ok := NewTextMatcher(terms).Match(text)
	return ok
}
