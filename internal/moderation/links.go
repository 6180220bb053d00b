package moderation

import (
	"fmt"
	"regexp"
	"strings"
)

// linkPattern finds explicit URLs (scheme or www. prefix) and bare host names
// ending in a common top-level domain.
var linkPattern = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s<>"'()]+|\b(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+(?:com|net|org|io|co|kr|me|dev|app|xyz|info|biz|ly|gg|tv|us|uk|jp|cn|ru|de|fr|link|site|shop|online)\b(?:[/?#][^\s<>"'()]*)?`)

// Link is one URL-like token found in text.
type Link struct {
	Raw  string `json:"raw"`
	Host string `json:"host"`
}

// LinkExtractor finds links and checks them against a single allowed domain.
type LinkExtractor struct {
	allowedDomain string
}

// NewLinkExtractor creates an extractor allowing allowedDomain and its subdomains.
func NewLinkExtractor(allowedDomain string) *LinkExtractor {
	d := strings.ToLower(strings.TrimSpace(allowedDomain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	d = strings.TrimSuffix(d, "/")
	return &LinkExtractor{allowedDomain: d}
}

// AllowedDomain returns the normalized allow-listed domain.
func (e *LinkExtractor) AllowedDomain() string {
	return e.allowedDomain
}

// Extract returns every link in text in order of appearance.
func (e *LinkExtractor) Extract(text string) []Link {
	matches := linkPattern.FindAllString(text, -1)
	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		raw := strings.TrimRight(m, ".,;:!?")
		host := hostOf(raw)
		if host == "" {
			continue
		}
		links = append(links, Link{Raw: raw, Host: host})
	}
	return links
}

// IsAllowedHost reports whether host equals the allowed domain or is a subdomain of it.
func (e *LinkExtractor) IsAllowedHost(host string) bool {
	if e.allowedDomain == "" {
		return false
	}
	host = strings.ToLower(host)
	return host == e.allowedDomain || strings.HasSuffix(host, "."+e.allowedDomain)
}

// Disallowed returns the links in text that point outside the allowed domain.
func (e *LinkExtractor) Disallowed(text string) []Link {
	var out []Link
	for _, l := range e.Extract(text) {
		if !e.IsAllowedHost(l.Host) {
			out = append(out, l)
		}
	}
	return out
}

// Message is the user-facing reason for a link block.
func (e *LinkExtractor) Message() string {
	return fmt.Sprintf("only links to %s are allowed", e.allowedDomain)
}

func hostOf(raw string) string {
	s := strings.ToLower(raw)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, ".")
}
