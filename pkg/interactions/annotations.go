// ABOUTME: Citation annotations on text parts: byte-offset spans into the part's text
// ABOUTME: Extraction rejects inverted, out-of-range or mid-rune spans instead of panicking

package interactions

import "unicode/utf8"

// Annotation marks a cited span [StartIndex, EndIndex) of a TextContent.
// Offsets are in bytes of the UTF-8 text.
type Annotation struct {
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Source     string `json:"source,omitempty"`
}

// Extract returns the annotated substring of text. It reports false when the
// span is inverted, out of range or does not fall on rune boundaries.
func (a Annotation) Extract(text string) (string, bool) {
	start, end := a.StartIndex, a.EndIndex
	if start < 0 || start > end || end > len(text) {
		return "", false
	}
	if !onRuneBoundary(text, start) || !onRuneBoundary(text, end) {
		return "", false
	}
	return text[start:end], true
}

func onRuneBoundary(s string, i int) bool {
	return i == len(s) || utf8.RuneStart(s[i])
}

// AnnotatedSpan pairs an annotation with the text it covers.
type AnnotatedSpan struct {
	Annotation Annotation
	Text       string
}

// AnnotatedSpans returns the extractable annotations in order, skipping
// any whose offsets do not fit the text.
func (c TextContent) AnnotatedSpans() []AnnotatedSpan {
	var spans []AnnotatedSpan
	for _, a := range c.Annotations {
		if s, ok := a.Extract(c.Text); ok {
			spans = append(spans, AnnotatedSpan{Annotation: a, Text: s})
		}
	}
	return spans
}
