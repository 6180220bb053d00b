package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkExtractor_Extract(t *testing.T) {
	t.Parallel()
	e := NewLinkExtractor("example.com")

	links := e.Extract("see https://Docs.Example.com/a?b=1, www.other.org and spam.net/x.")
	require.Len(t, links, 3)
	assert.Equal(t, "docs.example.com", links[0].Host)
	assert.Equal(t, "www.other.org", links[1].Host)
	assert.Equal(t, "spam.net", links[2].Host)
	assert.Equal(t, "spam.net/x", links[2].Raw)
}

func TestLinkExtractor_Allowed(t *testing.T) {
	t.Parallel()
	e := NewLinkExtractor("https://www.example.com/")
	assert.Equal(t, "example.com", e.AllowedDomain())

	tests := []struct {
		host string
		want bool
	}{
		{"example.com", true},
		{"EXAMPLE.com", true},
		{"sub.example.com", true},
		{"badexample.com", false},
		{"example.com.evil.io", false},
		{"other.org", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.IsAllowedHost(tt.host), tt.host)
	}
}

func TestLinkExtractor_Disallowed(t *testing.T) {
	t.Parallel()
	e := NewLinkExtractor("example.com")

	assert.Empty(t, e.Disallowed("no links here, just words."))
	assert.Empty(t, e.Disallowed("visit http://example.com/page or m.example.com"))
	assert.Empty(t, e.Disallowed("the community meeting is tomorrow"))

	bad := e.Disallowed("join at http://evil.io:8080/free")
	require.Len(t, bad, 1)
	assert.Equal(t, "evil.io", bad[0].Host)
	assert.Equal(t, "only links to example.com are allowed", e.Message())
}

// The domain half of an email address counts as a bare link.
func TestLinkExtractor_EmailDomainsAreLinks(t *testing.T) {
	t.Parallel()
	e := NewLinkExtractor("example.com")

	bad := e.Disallowed("mail me foo@gmail.com")
	require.Len(t, bad, 1)
	assert.Equal(t, "gmail.com", bad[0].Host)

	assert.Empty(t, e.Disallowed("write to support@example.com"))
}
