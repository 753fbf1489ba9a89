// ABOUTME: Tests for content part encoding/decoding, the Unknown fallback and strict mode
// ABOUTME: Round-trips every known variant and checks absent optionals never appear as null

package interactions

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// strictMode turns strict decoding on for one non-parallel test.
func strictMode(t *testing.T) {
	t.Helper()
	prev := StrictUnknown()
	SetStrictUnknown(true)
	t.Cleanup(func() { SetStrictUnknown(prev) })
}

func TestContentRoundTrip(t *testing.T) {
	t.Parallel()

	parts := []Content{
		TextContent{Text: "hello"},
		TextContent{Text: "cited", Annotations: []Annotation{{StartIndex: 0, EndIndex: 5, Source: "https://example.com"}}},
		ThoughtContent{Text: "thinking"},
		ThoughtSignatureContent{Signature: "c2ln"},
		ImageContent{Data: "aGk=", MIMEType: "image/png", Resolution: ResolutionHigh},
		ImageContent{URI: "gs://bucket/cat.png"},
		AudioContent{Data: "aGk=", MIMEType: "audio/wav"},
		VideoContent{URI: "https://example.com/v.mp4", MIMEType: "video/mp4", Resolution: ResolutionLow},
		DocumentContent{Data: "JVBERi0=", MIMEType: "application/pdf"},
		FunctionCallContent{ID: "call-1", Name: "get_weather", Arguments: json.RawMessage(`{"city":"Paris"}`), ThoughtSignature: "sig"},
		FunctionCallContent{Name: "no_id"},
		FunctionResultContent{Name: "get_weather", CallID: "call-1", Result: json.RawMessage(`{"temp":21}`)},
		CodeExecutionCallContent{ID: "c1", Language: LanguagePython, Code: "print(1)"},
		CodeExecutionResultContent{CallID: "c1", Outcome: OutcomeOK, Output: "1\n"},
		CodeExecutionResultContent{CallID: "c2", Outcome: OutcomeDeadlineExceeded},
		GoogleSearchCallContent{ID: "s1", Queries: []string{"go generics"}},
		GoogleSearchResultContent{CallID: "s1", Result: []GoogleSearchResult{{Title: "Go", URL: "https://go.dev", RenderedContent: "<div/>"}}},
		URLContextCallContent{ID: "u1", URLs: []string{"https://go.dev"}},
		URLContextResultContent{CallID: "u1", Result: []URLContextResult{{URL: "https://go.dev", Status: URLRetrievalSuccess}}},
		FileSearchResultContent{CallID: "f1", Result: []FileSearchResult{{Title: "doc", Text: "chunk", FileSearchStore: "stores/a"}}},
	}

	for _, part := range parts {
		t.Run(part.ContentType(), func(t *testing.T) {
			t.Parallel()

			raw, err := EncodeContent(part)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(raw), `{"type":"`+part.ContentType()+`"`), "type must come first: %s", raw)
			assert.NotContains(t, string(raw), "null", "absent optionals must be omitted: %s", raw)

			got, err := DecodeContent(raw)
			require.NoError(t, err)
			assert.Equal(t, part, got)
		})
	}
}

func TestContentWireShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		part Content
		want string
	}{
		{
			name: "function call uses camelCase signature",
			part: FunctionCallContent{ID: "1", Name: "f", Arguments: json.RawMessage(`{}`), ThoughtSignature: "s"},
			want: `{"type":"function_call","id":"1","name":"f","arguments":{},"thoughtSignature":"s"}`,
		},
		{
			name: "code execution call nests arguments",
			part: CodeExecutionCallContent{ID: "c", Language: LanguagePython, Code: "x=1"},
			want: `{"type":"code_execution_call","id":"c","arguments":{"language":"PYTHON","code":"x=1"}}`,
		},
		{
			name: "search call nests queries",
			part: GoogleSearchCallContent{ID: "s", Queries: []string{"q"}},
			want: `{"type":"google_search_call","id":"s","arguments":{"queries":["q"]}}`,
		},
		{
			name: "annotations use snake case offsets",
			part: TextContent{Text: "ab", Annotations: []Annotation{{StartIndex: 0, EndIndex: 1}}},
			want: `{"type":"text","text":"ab","annotations":[{"start_index":0,"end_index":1}]}`,
		},
		{
			name: "image omits empty optionals",
			part: ImageContent{URI: "gs://x"},
			want: `{"type":"image","uri":"gs://x"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, err := EncodeContent(tt.part)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestDecodeContentUnknownTag(t *testing.T) {
	t.Parallel()

	got, err := DecodeContent([]byte(`{"type":"some_future_tag","a":1,"b":"x"}`))
	require.NoError(t, err)

	unknown, ok := got.(UnknownContent)
	require.True(t, ok, "got %T", got)
	assert.Equal(t, "some_future_tag", unknown.Type)
	assert.JSONEq(t, `{"a":1,"b":"x"}`, string(unknown.Data))

	raw, err := EncodeContent(unknown)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"some_future_tag","a":1,"b":"x"}`, string(raw))
	assert.Equal(t, 1, strings.Count(string(raw), `"type"`))
}

func TestDecodeContentUnusableDiscriminator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantType string
	}{
		{name: "missing type", input: `{"foo":"bar"}`, wantType: MissingTypeTag},
		{name: "null type", input: `{"type":null,"foo":"bar"}`, wantType: MissingTypeTag},
		{name: "numeric type", input: `{"type":42,"foo":"bar"}`, wantType: "<non-string: 42>"},
		{name: "object type", input: `{"type":{"v":1}}`, wantType: `<non-string: {"v":1}>`},
		{name: "not an object", input: `"just a string"`, wantType: MissingTypeTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeContent([]byte(tt.input))
			require.NoError(t, err)

			unknown, ok := got.(UnknownContent)
			require.True(t, ok, "got %T", got)
			assert.Equal(t, tt.wantType, unknown.Type)
			assert.JSONEq(t, tt.input, string(unknown.Data), "original payload must be preserved")
		})
	}
}

func TestDecodeContentKnownTagMissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "code execution call without code", input: `{"type":"code_execution_call","id":"c","arguments":{"language":"PYTHON"}}`},
		{name: "function call without name", input: `{"type":"function_call","id":"1","arguments":{}}`},
		{name: "function result without call id", input: `{"type":"function_result","name":"f","result":{}}`},
		{name: "image without data or uri", input: `{"type":"image","mime_type":"image/png"}`},
		{name: "search call without queries", input: `{"type":"google_search_call","id":"s"}`},
		{name: "text with wrong field type", input: `{"type":"text","text":5}`},
		{name: "thought signature without signature", input: `{"type":"thought_signature"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeContent([]byte(tt.input))
			require.NoError(t, err)

			unknown, ok := got.(UnknownContent)
			require.True(t, ok, "expected Unknown fallback, got %T", got)

			raw, err := EncodeContent(unknown)
			require.NoError(t, err)
			assert.JSONEq(t, tt.input, string(raw), "fallback must echo the payload back unchanged")
		})
	}
}

func TestDecodeCodeExecutionShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Content
	}{
		{
			name:  "direct fields",
			input: `{"type":"code_execution_call","id":"c","language":"PYTHON","code":"x"}`,
			want:  CodeExecutionCallContent{ID: "c", Language: LanguagePython, Code: "x"},
		},
		{
			name:  "nested arguments",
			input: `{"type":"code_execution_call","id":"c","arguments":{"language":"PYTHON","code":"y"}}`,
			want:  CodeExecutionCallContent{ID: "c", Language: LanguagePython, Code: "y"},
		},
		{
			name:  "direct wins over arguments",
			input: `{"type":"code_execution_call","code":"direct","arguments":{"code":"nested"}}`,
			want:  CodeExecutionCallContent{Code: "direct"},
		},
		{
			name:  "legacy is_error true",
			input: `{"type":"code_execution_result","call_id":"c","is_error":true,"result":"boom"}`,
			want:  CodeExecutionResultContent{CallID: "c", Outcome: OutcomeFailed, Output: "boom"},
		},
		{
			name:  "legacy is_error false",
			input: `{"type":"code_execution_result","call_id":"c","is_error":false,"result":"ok"}`,
			want:  CodeExecutionResultContent{CallID: "c", Outcome: OutcomeOK, Output: "ok"},
		},
		{
			name:  "legacy without is_error",
			input: `{"type":"code_execution_result","call_id":"c","result":"?"}`,
			want:  CodeExecutionResultContent{CallID: "c", Outcome: OutcomeUnspecified, Output: "?"},
		},
		{
			name:  "new shape",
			input: `{"type":"code_execution_result","call_id":"c","outcome":"OUTCOME_DEADLINE_EXCEEDED","output":""}`,
			want:  CodeExecutionResultContent{CallID: "c", Outcome: OutcomeDeadlineExceeded},
		},
		{
			name:  "unknown outcome kept",
			input: `{"type":"code_execution_result","outcome":"OUTCOME_PAUSED"}`,
			want:  CodeExecutionResultContent{Outcome: "OUTCOME_PAUSED"},
		},
		{
			name:  "direct search queries",
			input: `{"type":"google_search_call","id":"s","queries":["a","b"]}`,
			want:  GoogleSearchCallContent{ID: "s", Queries: []string{"a", "b"}},
		},
		{
			name:  "nested url list",
			input: `{"type":"url_context_call","arguments":{"urls":["https://a"]}}`,
			want:  URLContextCallContent{URLs: []string{"https://a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeContent([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnknownContentEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		part UnknownContent
		want string
	}{
		{name: "explicit type wins over data type", part: UnknownContent{Type: "x", Data: json.RawMessage(`{"type":"y","k":1}`)}, want: `{"type":"x","k":1}`},
		{name: "array payload under data", part: UnknownContent{Type: "x", Data: json.RawMessage(`[1,2]`)}, want: `{"type":"x","data":[1,2]}`},
		{name: "string payload under data", part: UnknownContent{Type: "x", Data: json.RawMessage(`"s"`)}, want: `{"type":"x","data":"s"}`},
		{name: "number payload under data", part: UnknownContent{Type: "x", Data: json.RawMessage(`3.5`)}, want: `{"type":"x","data":3.5}`},
		{name: "null payload omitted", part: UnknownContent{Type: "x", Data: json.RawMessage(`null`)}, want: `{"type":"x"}`},
		{name: "nil payload omitted", part: UnknownContent{Type: "x"}, want: `{"type":"x"}`},
		{name: "empty object", part: UnknownContent{Type: "x", Data: json.RawMessage(`{}`)}, want: `{"type":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, err := EncodeContent(tt.part)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestUnknownContentInvalidData(t *testing.T) {
	t.Parallel()

	_, err := EncodeContent(UnknownContent{Type: "x", Data: json.RawMessage(`{broken`)})
	assert.Error(t, err)
}

func TestDecodeContentMalformed(t *testing.T) {
	t.Parallel()

	_, err := DecodeContent([]byte(`{"type":"text"`))
	assert.Error(t, err)
}

func TestContentListDecoding(t *testing.T) {
	t.Parallel()

	t.Run("bare string", func(t *testing.T) {
		t.Parallel()

		var l ContentList
		require.NoError(t, json.Unmarshal([]byte(`"hi"`), &l))
		assert.Equal(t, ContentList{TextContent{Text: "hi"}}, l)
	})

	t.Run("order preserved", func(t *testing.T) {
		t.Parallel()

		var l ContentList
		input := `[{"type":"text","text":"a"},{"type":"function_call","id":"1","name":"f"},{"type":"mystery"}]`
		require.NoError(t, json.Unmarshal([]byte(input), &l))
		require.Len(t, l, 3)
		assert.Equal(t, ContentTypeText, l[0].ContentType())
		assert.Equal(t, ContentTypeFunctionCall, l[1].ContentType())
		assert.Equal(t, "mystery", l[2].ContentType())

		out, err := json.Marshal(l)
		require.NoError(t, err)
		assert.JSONEq(t, input, string(out))
	})

	t.Run("object is rejected", func(t *testing.T) {
		t.Parallel()

		var l ContentList
		assert.Error(t, json.Unmarshal([]byte(`{"type":"text"}`), &l))
	})
}

func TestStrictModeContent(t *testing.T) {
	strictMode(t)

	_, err := DecodeContent([]byte(`{"type":"some_future_tag"}`))
	var tagErr *UnknownTagError
	require.True(t, errors.As(err, &tagErr), "got %v", err)
	assert.Equal(t, "some_future_tag", tagErr.Tag)

	_, err = DecodeContent([]byte(`{"type":"image","uri":"gs://x","resolution":"giant"}`))
	require.True(t, errors.As(err, &tagErr), "unknown enum inside a known part must fail in strict mode, got %v", err)
	assert.Equal(t, "giant", tagErr.Tag)

	got, err := DecodeContent([]byte(`{"type":"text","text":"ok"}`))
	require.NoError(t, err)
	assert.Equal(t, TextContent{Text: "ok"}, got)
}
