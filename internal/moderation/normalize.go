// Package moderation holds the pure text algorithms used by the screening
// pipeline: normalization, phonetic reduction, term matching, edit-distance
// similarity and link extraction. Nothing here performs I/O.
package moderation

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// strippedPunctuation is removed before matching so "b.a.d" and "b a d" match "bad".
const strippedPunctuation = ".,!?;:'\"`~@#$%^&*()-_=+[]{}<>/\\|" +
	"·…。、「」『』！？，．：；～＊－＿"

var punctuationSet = func() map[rune]struct{} {
	set := make(map[rune]struct{}, len(strippedPunctuation))
	for _, r := range strippedPunctuation {
		set[r] = struct{}{}
	}
	return set
}()

// Normalize composes the text (NFC), drops whitespace and the fixed punctuation
// set, and lower-cases what remains.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if _, drop := punctuationSet[r]; drop {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

const (
	hangulFirst         = 0xAC00
	hangulLast          = 0xD7A3
	syllablesPerInitial = 588
)

// choseong is the fixed alphabet of 19 leading consonants, in Unicode order.
var choseong = []rune("ㄱㄲㄴㄷㄸㄹㅁㅂㅃㅅㅆㅇㅈㅉㅊㅋㅌㅍㅎ")

// PhoneticReduce replaces every precomposed Hangul syllable with its leading
// consonant. Other runes pass through unchanged.
func PhoneticReduce(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= hangulFirst && r <= hangulLast {
			b.WriteRune(choseong[(r-hangulFirst)/syllablesPerInitial])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
