// ABOUTME: URL helpers for the interactions endpoints
// ABOUTME: Normalizes base URLs and builds escaped resource paths with optional query

package httputil

import (
	"net/url"
	"strings"
)

// NormalizeBaseURL trims whitespace and trailing slashes so that resource
// paths can be appended with a single leading slash.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// ResourcePath joins path segments, escaping each one, and appends the
// encoded query when it is non-empty. PathEscape leaves ':' alone, so a
// custom-method suffix such as "abc:cancel" survives.
func ResourcePath(query url.Values, segments ...string) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	if len(query) > 0 {
		sb.WriteByte('?')
		sb.WriteString(query.Encode())
	}
	return sb.String()
}
