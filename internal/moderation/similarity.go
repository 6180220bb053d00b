package moderation

import (
	"strings"
	"unicode"
)

// Similarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) after removing
// whitespace and lower-casing both inputs. Lengths are counted in runes.
// Identical inputs score 1; otherwise an empty side scores 0.
func Similarity(a, b string) float64 {
	ra := squash(a)
	rb := squash(b)
	if string(ra) == string(rb) {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// Levenshtein returns the edit distance between a and b in runes.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func squash(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

// levenshtein keeps two rows of the DP table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// IsDuplicate reports whether candidate is at least threshold-similar to any of
// previous, returning the best score seen.
func IsDuplicate(candidate string, previous []string, threshold float64) (float64, bool) {
	best := 0.0
	if strings.TrimSpace(candidate) == "" {
		return 0, false
	}
	for _, p := range previous {
		score := Similarity(candidate, p)
		if score > best {
			best = score
		}
		if score >= threshold {
			return score, true
		}
	}
	return best, false
}
