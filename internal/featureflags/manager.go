// Package featureflags toggles individual screening stages, globally or for a
// deterministic share of authors.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Screening stage flags. Every stage runs unless its flag is explicitly set.
const (
	ScreenBannedTerms = "screen_banned_terms"
	ScreenClassifier  = "screen_classifier"
	ScreenLinks       = "screen_links"
	ScreenDuplicates  = "screen_duplicates"
	ScreenImages      = "screen_images"
)

// rule is a parsed flag value: a share of users from 0 to 100.
type rule struct {
	percent int
}

// parseRule accepts on/true/1, off/false/0 and N%.
func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{percent: 100}, true
	case "off", "false", "0":
		return rule{percent: 0}, true
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if err != nil || !strings.HasSuffix(value, "%") {
		return rule{}, false
	}
	return rule{percent: min(max(pct, 0), 100)}, true
}

func (r rule) allows(name string, userID uint) bool {
	switch {
	case r.percent >= 100:
		return true
	case r.percent <= 0, userID == 0:
		return false
	}
	return bucket(name, userID) < r.percent
}

// Manager evaluates flags parsed from a list such as
// "screen_classifier=off,screen_images=25%". Malformed entries are dropped.
type Manager struct {
	rules map[string]rule
}

func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = normalize(key)
		r, ok := parseRule(normalize(value))
		if key == "" || !ok {
			continue
		}
		rules[key] = r
	}
	return &Manager{rules: rules}
}

// Enabled reports whether name is on for userID. Unknown flags are off.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	return ok && r.allows(normalize(name), userID)
}

// Has reports whether name is configured at all.
func (m *Manager) Has(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.rules[normalize(name)]
	return ok
}

// EnabledOr is Enabled with def for flags that are not configured.
func (m *Manager) EnabledOr(name string, userID uint, def bool) bool {
	if !m.Has(name) {
		return def
	}
	return m.Enabled(name, userID)
}

// Len returns the number of configured flags.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
