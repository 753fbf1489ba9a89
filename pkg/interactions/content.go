// ABOUTME: Content part sum type: text, thoughts, media, tool calls/results and Unknown
// ABOUTME: Each variant marshals as a flat object with its "type" tag first; absent optionals are omitted

package interactions

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Content type tags as they appear on the wire.
const (
	ContentTypeText                = "text"
	ContentTypeThought             = "thought"
	ContentTypeThoughtSignature    = "thought_signature"
	ContentTypeImage               = "image"
	ContentTypeAudio               = "audio"
	ContentTypeVideo               = "video"
	ContentTypeDocument            = "document"
	ContentTypeFunctionCall        = "function_call"
	ContentTypeFunctionResult      = "function_result"
	ContentTypeCodeExecutionCall   = "code_execution_call"
	ContentTypeCodeExecutionResult = "code_execution_result"
	ContentTypeGoogleSearchCall    = "google_search_call"
	ContentTypeGoogleSearchResult  = "google_search_result"
	ContentTypeURLContextCall      = "url_context_call"
	ContentTypeURLContextResult    = "url_context_result"
	ContentTypeFileSearchResult    = "file_search_result"
)

// Sentinel tags used for Unknown parts whose discriminator was unusable.
const (
	MissingTypeTag   = "<missing type>"
	nonStringTypeTag = "<non-string: %s>"
)

// Content is one part of an interaction's input or outputs.
// The set of implementations is closed; parts this version does not
// understand decode to UnknownContent.
type Content interface {
	ContentType() string
	isContent()
}

// TextContent is plain model or user text.
type TextContent struct {
	Text        string       `json:"text"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// ThoughtContent is a reasoning summary emitted by thinking models.
type ThoughtContent struct {
	Text string `json:"text,omitempty"`
}

// ThoughtSignatureContent carries the opaque token that keeps reasoning
// continuity across turns. It must be echoed back unmodified.
type ThoughtSignatureContent struct {
	Signature string `json:"signature"`
}

// ImageContent is an image given inline (base64 Data) or by URI.
type ImageContent struct {
	Data       string     `json:"data,omitempty"`
	URI        string     `json:"uri,omitempty"`
	MIMEType   string     `json:"mime_type,omitempty"`
	Resolution Resolution `json:"resolution,omitempty"`
}

// AudioContent is an audio clip given inline or by URI.
type AudioContent struct {
	Data     string `json:"data,omitempty"`
	URI      string `json:"uri,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

// VideoContent is a video given inline or by URI.
type VideoContent struct {
	Data       string     `json:"data,omitempty"`
	URI        string     `json:"uri,omitempty"`
	MIMEType   string     `json:"mime_type,omitempty"`
	Resolution Resolution `json:"resolution,omitempty"`
}

// DocumentContent is a document (usually PDF) given inline or by URI.
type DocumentContent struct {
	Data     string `json:"data,omitempty"`
	URI      string `json:"uri,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

// FunctionCallContent is a tool invocation requested by the model.
// ID correlates the call with its FunctionResultContent and may be empty.
type FunctionCallContent struct {
	ID               string          `json:"id,omitempty"`
	Name             string          `json:"name"`
	Arguments        json.RawMessage `json:"arguments,omitempty"`
	ThoughtSignature string          `json:"thoughtSignature,omitempty"`
}

// FunctionResultContent answers a FunctionCallContent.
type FunctionResultContent struct {
	Name   string          `json:"name,omitempty"`
	CallID string          `json:"call_id"`
	Result json.RawMessage `json:"result,omitempty"`
}

// CodeExecutionCallContent is a built-in sandboxed code run.
type CodeExecutionCallContent struct {
	ID       string
	Language CodeExecutionLanguage
	Code     string
}

// CodeExecutionResultContent is the output of a CodeExecutionCallContent.
type CodeExecutionResultContent struct {
	CallID  string               `json:"call_id,omitempty"`
	Outcome CodeExecutionOutcome `json:"outcome,omitempty"`
	Output  string               `json:"output,omitempty"`
}

// GoogleSearchCallContent is a built-in web search request.
type GoogleSearchCallContent struct {
	ID      string
	Queries []string
}

// GoogleSearchResult is one hit of a google_search_result part.
type GoogleSearchResult struct {
	Title           string `json:"title,omitempty"`
	URL             string `json:"url,omitempty"`
	RenderedContent string `json:"rendered_content,omitempty"`
}

// GoogleSearchResultContent carries the hits of a GoogleSearchCallContent.
type GoogleSearchResultContent struct {
	CallID string               `json:"call_id,omitempty"`
	Result []GoogleSearchResult `json:"result,omitempty"`
}

// URLContextCallContent is a built-in request to fetch URLs.
type URLContextCallContent struct {
	ID   string
	URLs []string
}

// URLContextResult is the fetch outcome for one URL.
type URLContextResult struct {
	URL    string             `json:"url,omitempty"`
	Status URLRetrievalStatus `json:"status,omitempty"`
}

// URLContextResultContent carries the outcome of a URLContextCallContent.
type URLContextResultContent struct {
	CallID string             `json:"call_id,omitempty"`
	Result []URLContextResult `json:"result,omitempty"`
}

// FileSearchResult is one retrieved chunk of a file_search_result part.
type FileSearchResult struct {
	Title           string `json:"title,omitempty"`
	Text            string `json:"text,omitempty"`
	FileSearchStore string `json:"file_search_store,omitempty"`
}

// FileSearchResultContent carries chunks retrieved from file search stores.
type FileSearchResultContent struct {
	CallID string             `json:"call_id,omitempty"`
	Result []FileSearchResult `json:"result,omitempty"`
}

// UnknownContent preserves a part this version cannot interpret.
// Data holds the original payload without its "type" key so the part can
// be echoed back on a later turn.
type UnknownContent struct {
	Type string
	Data json.RawMessage
}

func (TextContent) ContentType() string                { return ContentTypeText }
func (ThoughtContent) ContentType() string             { return ContentTypeThought }
func (ThoughtSignatureContent) ContentType() string    { return ContentTypeThoughtSignature }
func (ImageContent) ContentType() string               { return ContentTypeImage }
func (AudioContent) ContentType() string               { return ContentTypeAudio }
func (VideoContent) ContentType() string               { return ContentTypeVideo }
func (DocumentContent) ContentType() string            { return ContentTypeDocument }
func (FunctionCallContent) ContentType() string        { return ContentTypeFunctionCall }
func (FunctionResultContent) ContentType() string      { return ContentTypeFunctionResult }
func (CodeExecutionCallContent) ContentType() string   { return ContentTypeCodeExecutionCall }
func (CodeExecutionResultContent) ContentType() string { return ContentTypeCodeExecutionResult }
func (GoogleSearchCallContent) ContentType() string    { return ContentTypeGoogleSearchCall }
func (GoogleSearchResultContent) ContentType() string  { return ContentTypeGoogleSearchResult }
func (URLContextCallContent) ContentType() string      { return ContentTypeURLContextCall }
func (URLContextResultContent) ContentType() string    { return ContentTypeURLContextResult }
func (FileSearchResultContent) ContentType() string    { return ContentTypeFileSearchResult }
func (u UnknownContent) ContentType() string           { return u.Type }

func (TextContent) isContent()                {}
func (ThoughtContent) isContent()             {}
func (ThoughtSignatureContent) isContent()    {}
func (ImageContent) isContent()               {}
func (AudioContent) isContent()               {}
func (VideoContent) isContent()               {}
func (DocumentContent) isContent()            {}
func (FunctionCallContent) isContent()        {}
func (FunctionResultContent) isContent()      {}
func (CodeExecutionCallContent) isContent()   {}
func (CodeExecutionResultContent) isContent() {}
func (GoogleSearchCallContent) isContent()    {}
func (GoogleSearchResultContent) isContent()  {}
func (URLContextCallContent) isContent()      {}
func (URLContextResultContent) isContent()    {}
func (FileSearchResultContent) isContent()    {}
func (UnknownContent) isContent()             {}

// marshalTagged encodes v (a struct) and splices `"type":tag` in as the
// first key.
func marshalTagged(tag string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s content: %w", tag, err)
	}
	return spliceType(tag, body), nil
}

func spliceType(tag string, obj []byte) []byte {
	tagJSON, _ := json.Marshal(tag)

	var buf bytes.Buffer
	buf.Grow(len(obj) + len(tagJSON) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(tagJSON)
	if inner := bytes.TrimSpace(obj[1 : len(obj)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// The alias types drop the MarshalJSON methods so json.Marshal does not recurse.

func (c TextContent) MarshalJSON() ([]byte, error) {
	type alias TextContent
	return marshalTagged(ContentTypeText, alias(c))
}

func (c ThoughtContent) MarshalJSON() ([]byte, error) {
	type alias ThoughtContent
	return marshalTagged(ContentTypeThought, alias(c))
}

func (c ThoughtSignatureContent) MarshalJSON() ([]byte, error) {
	type alias ThoughtSignatureContent
	return marshalTagged(ContentTypeThoughtSignature, alias(c))
}

func (c ImageContent) MarshalJSON() ([]byte, error) {
	type alias ImageContent
	return marshalTagged(ContentTypeImage, alias(c))
}

func (c AudioContent) MarshalJSON() ([]byte, error) {
	type alias AudioContent
	return marshalTagged(ContentTypeAudio, alias(c))
}

func (c VideoContent) MarshalJSON() ([]byte, error) {
	type alias VideoContent
	return marshalTagged(ContentTypeVideo, alias(c))
}

func (c DocumentContent) MarshalJSON() ([]byte, error) {
	type alias DocumentContent
	return marshalTagged(ContentTypeDocument, alias(c))
}

func (c FunctionCallContent) MarshalJSON() ([]byte, error) {
	type alias FunctionCallContent
	return marshalTagged(ContentTypeFunctionCall, alias(c))
}

func (c FunctionResultContent) MarshalJSON() ([]byte, error) {
	type alias FunctionResultContent
	return marshalTagged(ContentTypeFunctionResult, alias(c))
}

func (c CodeExecutionResultContent) MarshalJSON() ([]byte, error) {
	type alias CodeExecutionResultContent
	return marshalTagged(ContentTypeCodeExecutionResult, alias(c))
}

func (c GoogleSearchResultContent) MarshalJSON() ([]byte, error) {
	type alias GoogleSearchResultContent
	return marshalTagged(ContentTypeGoogleSearchResult, alias(c))
}

func (c URLContextResultContent) MarshalJSON() ([]byte, error) {
	type alias URLContextResultContent
	return marshalTagged(ContentTypeURLContextResult, alias(c))
}

func (c FileSearchResultContent) MarshalJSON() ([]byte, error) {
	type alias FileSearchResultContent
	return marshalTagged(ContentTypeFileSearchResult, alias(c))
}

// Built-in tool calls nest their parameters under "arguments" on the wire.

type codeExecutionArgs struct {
	Language CodeExecutionLanguage `json:"language,omitempty"`
	Code     string                `json:"code"`
}

func (c CodeExecutionCallContent) MarshalJSON() ([]byte, error) {
	return marshalTagged(ContentTypeCodeExecutionCall, struct {
		ID        string            `json:"id,omitempty"`
		Arguments codeExecutionArgs `json:"arguments"`
	}{c.ID, codeExecutionArgs{Language: c.Language, Code: c.Code}})
}

type searchArgs struct {
	Queries []string `json:"queries"`
}

type urlContextArgs struct {
	URLs []string `json:"urls"`
}

func (c GoogleSearchCallContent) MarshalJSON() ([]byte, error) {
	return marshalTagged(ContentTypeGoogleSearchCall, struct {
		ID        string     `json:"id,omitempty"`
		Arguments searchArgs `json:"arguments"`
	}{c.ID, searchArgs{Queries: nonNil(c.Queries)}})
}

func (c URLContextCallContent) MarshalJSON() ([]byte, error) {
	return marshalTagged(ContentTypeURLContextCall, struct {
		ID        string         `json:"id,omitempty"`
		Arguments urlContextArgs `json:"arguments"`
	}{c.ID, urlContextArgs{URLs: nonNil(c.URLs)}})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// MarshalJSON writes the stored tag first, then the keys of an object
// payload (skipping any "type" it carries) or a non-object payload under
// "data". A null or empty payload is omitted.
func (c UnknownContent) MarshalJSON() ([]byte, error) {
	data := bytes.TrimSpace(c.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return spliceType(c.Type, []byte("{}")), nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("encoding unknown content %q: data is not valid JSON", c.Type)
	}
	if data[0] == '{' {
		return spliceType(c.Type, withoutKey(data, "type")), nil
	}
	wrapped, err := json.Marshal(struct {
		Data json.RawMessage `json:"data"`
	}{data})
	if err != nil {
		return nil, err
	}
	return spliceType(c.Type, wrapped), nil
}
