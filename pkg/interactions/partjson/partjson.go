// ABOUTME: Best-effort completion of truncated JSON for streamed function-call arguments
// ABOUTME: Closes open strings/objects/arrays and drops dangling keys or partial literals

// Package partjson turns an argument payload that was cut off mid-stream
// into the closest valid JSON object.
package partjson

import (
	"encoding/json"
	"strings"
)

// Complete returns s as a valid JSON object, closing any structure the
// stream truncated. It reports false when no object can be recovered.
func Complete(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return json.RawMessage(`{}`), true
	}
	if json.Valid([]byte(s)) {
		if s[0] != '{' {
			return nil, false
		}
		return json.RawMessage(s), true
	}
	if s[0] != '{' {
		return nil, false
	}

	completed := closeOpen(s)
	if json.Valid([]byte(completed)) {
		return json.RawMessage(completed), true
	}

	// `{"a":1,"ke` style truncation leaves a key without a value.
	if trimmed, ok := dropDanglingKey(s); ok {
		completed = closeOpen(trimmed)
		if json.Valid([]byte(completed)) {
			return json.RawMessage(completed), true
		}
	}

	return nil, false
}

// Parse completes s and decodes it into a map. Returns an empty map on
// total failure so callers can always index the result.
func Parse(s string) map[string]any {
	raw, ok := Complete(s)
	if !ok {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// scanState is the lexical position at the end of a fragment.
type scanState struct {
	closers  []byte
	inString bool
	escaped  bool
}

func scan(s string) scanState {
	var st scanState
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case st.escaped:
			st.escaped = false
		case st.inString && c == '\\':
			st.escaped = true
		case c == '"':
			st.inString = !st.inString
		case st.inString:
		case c == '{':
			st.closers = append(st.closers, '}')
		case c == '[':
			st.closers = append(st.closers, ']')
		case c == '}' || c == ']':
			if len(st.closers) > 0 {
				st.closers = st.closers[:len(st.closers)-1]
			}
		}
	}
	return st
}

// closeOpen terminates an open string, strips junk that cannot precede a
// closer, and appends the outstanding closers in reverse order.
func closeOpen(s string) string {
	st := scan(s)

	out := s
	if st.inString {
		// A trailing backslash would escape the closing quote.
		if st.escaped {
			out += `\`
		}
		out += `"`
	}
	out = trimTrailingJunk(out)

	var sb strings.Builder
	sb.WriteString(out)
	for i := len(st.closers) - 1; i >= 0; i-- {
		sb.WriteByte(st.closers[i])
	}
	return sb.String()
}

// partialLiterals are prefixes of true/false/null that appear when a value
// is cut mid-token. Complete literals are valid JSON and left alone.
var partialLiterals = []string{"tru", "tr", "t", "fals", "fal", "fa", "f", "nul", "nu", "n"}

func trimTrailingJunk(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	for _, lit := range partialLiterals {
		if strings.HasSuffix(s, lit) && endsAfterSeparator(s[:len(s)-len(lit)]) {
			s = s[:len(s)-len(lit)]
			break
		}
	}
	s = trimPartialNumber(strings.TrimRight(s, " \t\r\n"))
	for strings.HasSuffix(s, ",") || strings.HasSuffix(s, ":") {
		s = strings.TrimRight(s[:len(s)-1], " \t\r\n")
	}
	return s
}

// trimPartialNumber drops a dangling sign, decimal point or exponent marker
// such as the tail of `-`, `1.` or `2e+`.
func trimPartialNumber(s string) string {
	for s != "" {
		last := s[len(s)-1]
		switch {
		case last == '.' || last == '+' || last == '-':
			s = s[:len(s)-1]
		case (last == 'e' || last == 'E') && len(s) > 1 && isDigitOrDot(s[len(s)-2]):
			s = s[:len(s)-1]
		default:
			return s
		}
	}
	return s
}

func isDigitOrDot(c byte) bool {
	return c == '.' || (c >= '0' && c <= '9')
}

// endsAfterSeparator reports whether a value could start right after s.
func endsAfterSeparator(s string) bool {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case ':', ',', '[':
		return true
	}
	return false
}

// dropDanglingKey removes a trailing object key (and its comma) that has
// no value yet, e.g. `{"a":1,"b"` or `{"a":1,"b":`.
func dropDanglingKey(s string) (string, bool) {
	t := closeOpen(s)
	t = strings.TrimRight(t, "}]")
	t = strings.TrimRight(t, " \t\r\n:")
	if !strings.HasSuffix(t, `"`) {
		return "", false
	}
	open := strings.LastIndex(t[:len(t)-1], `"`)
	if open < 0 {
		return "", false
	}
	before := strings.TrimRight(t[:open], " \t\r\n")
	if before == "" || (before[len(before)-1] != ',' && before[len(before)-1] != '{') {
		return "", false
	}
	return strings.TrimSuffix(before, ","), true
}
