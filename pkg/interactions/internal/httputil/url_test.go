// ABOUTME: Tests for base URL normalization and resource path building
// ABOUTME: Covers trailing slashes, id escaping, verb suffixes and query encoding

package httputil

import (
	"net/url"
	"testing"
)

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no change", "https://host/v1beta", "https://host/v1beta"},
		{"strips trailing slash", "https://host/v1beta/", "https://host/v1beta"},
		{"strips repeated slashes", "http://host:8000//", "http://host:8000"},
		{"trims whitespace", "  http://host  ", "http://host"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeBaseURL(tt.input); got != tt.want {
				t.Errorf("NormalizeBaseURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResourcePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    url.Values
		segments []string
		want     string
	}{
		{"collection", nil, []string{"interactions"}, "/interactions"},
		{"item", nil, []string{"interactions", "abc"}, "/interactions/abc"},
		{"escapes slash in id", nil, []string{"interactions", "a/b"}, "/interactions/a%2Fb"},
		{"keeps verb suffix", nil, []string{"interactions", "abc:cancel"}, "/interactions/abc:cancel"},
		{
			"with query",
			url.Values{"alt": {"sse"}, "last_event_id": {"e1"}},
			[]string{"interactions", "abc"},
			"/interactions/abc?alt=sse&last_event_id=e1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResourcePath(tt.query, tt.segments...); got != tt.want {
				t.Errorf("ResourcePath() = %q, want %q", got, tt.want)
			}
		})
	}
}
