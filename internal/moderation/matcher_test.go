package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "BadWord", "badword"},
		{"strips whitespace", "b a\td\nw", "badw"},
		{"strips punctuation", "b.a-d_w!o?r*d", "badword"},
		{"composes decomposed jamo", "\u1100\u1161", "가"},
		{"keeps hangul", "나쁜 말", "나쁜말"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestPhoneticReduce(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ㅅㅂ", PhoneticReduce("시발"))
	assert.Equal(t, "ㄱㅎ", PhoneticReduce("가힣"))
	assert.Equal(t, "abc", PhoneticReduce("abc"))
	assert.Equal(t, "aㄴb", PhoneticReduce("a나b"))
}

func TestTextMatcher(t *testing.T) {
	t.Parallel()
	terms := []string{"badword", "시발"}

	tests := []struct {
		name    string
		text    string
		wantHit bool
		term    string
	}{
		{"plain hit", "this has a badword inside", true, "badword"},
		{"spaced and punctuated", "b.a.d w o r d", true, "badword"},
		{"uppercase", "BADWORD", true, "badword"},
		{"clean text", "perfectly fine sentence", false, ""},
		{"phonetic variant", "새발", true, "시발"},
		{"consonant shorthand", "ㅅㅂ", true, "시발"},
		{"exact hangul", "시 발", true, "시발"},
		{"empty text", "", false, ""},
	}
	m := NewTextMatcher(terms)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, ok := m.Match(tt.text)
			assert.Equal(t, tt.wantHit, ok)
			assert.Equal(t, tt.term, term)
		})
	}
}

func TestTextMatcher_EmptyTermsNeverBlock(t *testing.T) {
	t.Parallel()
	assert.False(t, MatchText("anything at all", nil))
	assert.False(t, MatchText("anything at all", []string{"", "  ", "..."}))
	assert.Equal(t, 0, NewTextMatcher([]string{" ", "-"}).Len())
}

func TestTextMatcher_FirstMatchWins(t *testing.T) {
	t.Parallel()
	m := NewTextMatcher([]string{"zzz", "foo", "bar"})
	term, ok := m.Match("bar and foo")
	assert.True(t, ok)
	assert.Equal(t, "foo", term)
}
