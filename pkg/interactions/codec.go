// ABOUTME: Decoding of content parts: tag peek, per-tag field rules and the Unknown fallback
// ABOUTME: ContentList marshals/unmarshals ordered part lists; a bare string input becomes one text part

package interactions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// DecodeContent turns one wire object into a Content value. It only fails
// on malformed JSON or, in strict mode, on an unrecognised tag.
func DecodeContent(raw []byte) (Content, error) {
	raw = bytes.TrimSpace(raw)
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("decoding content: invalid JSON")
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return unknownOrStrict(MissingTypeTag, raw)
	}

	tag := doc.Get("type")
	switch {
	case !tag.Exists() || tag.Type == gjson.Null:
		return unknownOrStrict(MissingTypeTag, raw)
	case tag.Type != gjson.String:
		return unknownOrStrict(fmt.Sprintf(nonStringTypeTag, tag.Raw), raw)
	}

	decode, known := contentDecoders[tag.String()]
	if !known {
		return unknownOrStrict(tag.String(), withoutKey(raw, "type"))
	}

	c, err := decode(raw, doc)
	var tagErr *UnknownTagError
	if errors.As(err, &tagErr) {
		return nil, err
	}
	if err != nil || c == nil {
		// Known tag, unusable fields: keep the payload rather than invent values.
		return UnknownContent{Type: tag.String(), Data: withoutKey(raw, "type")}, nil
	}
	return c, nil
}

// EncodeContent is json.Marshal for a single part.
func EncodeContent(c Content) ([]byte, error) {
	if c == nil {
		return nil, errors.New("encoding content: nil part")
	}
	return json.Marshal(c)
}

func unknownOrStrict(tag string, data []byte) (Content, error) {
	if StrictUnknown() {
		return nil, &UnknownTagError{Kind: "content type", Tag: tag}
	}
	return UnknownContent{Type: tag, Data: append(json.RawMessage(nil), data...)}, nil
}

// withoutKey rebuilds an object with every occurrence of key dropped,
// keeping the other members byte-for-byte and in order.
func withoutKey(obj []byte, key string) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	gjson.ParseBytes(obj).ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			return true
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(k.Raw)
		buf.WriteByte(':')
		buf.WriteString(v.Raw)
		return true
	})
	buf.WriteByte('}')
	return buf.Bytes()
}

// decoderFunc returns a nil Content or an error when the payload lacks
// fields required to build the variant.
type decoderFunc func(raw []byte, doc gjson.Result) (Content, error)

var contentDecoders map[string]decoderFunc

func init() {
	contentDecoders = map[string]decoderFunc{
		ContentTypeText:                decodeInto[TextContent],
		ContentTypeThought:             decodeInto[ThoughtContent],
		ContentTypeThoughtSignature:    requireKeys(decodeInto[ThoughtSignatureContent], "signature"),
		ContentTypeImage:               decodeMedia[ImageContent],
		ContentTypeAudio:               decodeMedia[AudioContent],
		ContentTypeVideo:               decodeMedia[VideoContent],
		ContentTypeDocument:            decodeMedia[DocumentContent],
		ContentTypeFunctionCall:        decodeFunctionCall,
		ContentTypeFunctionResult:      requireKeys(decodeInto[FunctionResultContent], "call_id"),
		ContentTypeCodeExecutionCall:   decodeCodeExecutionCall,
		ContentTypeCodeExecutionResult: decodeCodeExecutionResult,
		ContentTypeGoogleSearchCall:    decodeGoogleSearchCall,
		ContentTypeGoogleSearchResult:  decodeInto[GoogleSearchResultContent],
		ContentTypeURLContextCall:      decodeURLContextCall,
		ContentTypeURLContextResult:    decodeInto[URLContextResultContent],
		ContentTypeFileSearchResult:    decodeInto[FileSearchResultContent],
	}
}

// decodeInto unmarshals the payload straight into T. T's MarshalJSON is
// never involved, and the "type" key is ignored as an unknown field.
func decodeInto[T Content](raw []byte, _ gjson.Result) (Content, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func requireKeys(next decoderFunc, keys ...string) decoderFunc {
	return func(raw []byte, doc gjson.Result) (Content, error) {
		for _, k := range keys {
			if !doc.Get(k).Exists() {
				return nil, fmt.Errorf("missing %q", k)
			}
		}
		return next(raw, doc)
	}
}

// decodeMedia requires inline data or a URI; a part with neither cannot be
// sent back to the server meaningfully.
func decodeMedia[T Content](raw []byte, doc gjson.Result) (Content, error) {
	if doc.Get("data").String() == "" && doc.Get("uri").String() == "" {
		return nil, errors.New("media part without data or uri")
	}
	return decodeInto[T](raw, doc)
}

func decodeFunctionCall(raw []byte, doc gjson.Result) (Content, error) {
	if doc.Get("name").String() == "" {
		return nil, errors.New("function call without name")
	}
	c, err := decodeInto[FunctionCallContent](raw, doc)
	if err != nil {
		return nil, err
	}
	fc := c.(FunctionCallContent)
	if bytes.Equal(fc.Arguments, []byte("null")) {
		fc.Arguments = nil
	}
	return fc, nil
}

// argField prefers a direct field and falls back to arguments.<name>.
func argField(doc gjson.Result, name string) gjson.Result {
	if v := doc.Get(name); v.Exists() {
		return v
	}
	return doc.Get("arguments." + name)
}

func decodeCodeExecutionCall(_ []byte, doc gjson.Result) (Content, error) {
	code := argField(doc, "code")
	if code.Type != gjson.String {
		return nil, errors.New("code execution call without code")
	}
	c := CodeExecutionCallContent{ID: doc.Get("id").String(), Code: code.String()}
	if lang := argField(doc, "language"); lang.Exists() {
		if err := c.Language.UnmarshalJSON([]byte(lang.Raw)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// decodeCodeExecutionResult normalises the legacy {is_error, result} shape
// into {outcome, output}.
func decodeCodeExecutionResult(raw []byte, doc gjson.Result) (Content, error) {
	c := CodeExecutionResultContent{CallID: doc.Get("call_id").String()}

	if outcome := doc.Get("outcome"); outcome.Exists() && outcome.Type != gjson.Null {
		if err := c.Outcome.UnmarshalJSON([]byte(outcome.Raw)); err != nil {
			return nil, err
		}
	} else {
		switch isErr := doc.Get("is_error"); isErr.Type {
		case gjson.True:
			c.Outcome = OutcomeFailed
		case gjson.False:
			c.Outcome = OutcomeOK
		default:
			c.Outcome = OutcomeUnspecified
		}
	}

	if out := doc.Get("output"); out.Exists() {
		c.Output = out.String()
	} else {
		c.Output = doc.Get("result").String()
	}
	return c, nil
}

func stringList(v gjson.Result) ([]string, bool) {
	if !v.IsArray() {
		return nil, false
	}
	out := []string{}
	for _, item := range v.Array() {
		if item.Type != gjson.String {
			return nil, false
		}
		out = append(out, item.String())
	}
	return out, true
}

func decodeGoogleSearchCall(_ []byte, doc gjson.Result) (Content, error) {
	queries, ok := stringList(argField(doc, "queries"))
	if !ok {
		return nil, errors.New("google search call without queries")
	}
	return GoogleSearchCallContent{ID: doc.Get("id").String(), Queries: queries}, nil
}

func decodeURLContextCall(_ []byte, doc gjson.Result) (Content, error) {
	urls, ok := stringList(argField(doc, "urls"))
	if !ok {
		return nil, errors.New("url context call without urls")
	}
	return URLContextCallContent{ID: doc.Get("id").String(), URLs: urls}, nil
}

// ContentList is an ordered list of parts. It decodes from a JSON array of
// parts or from a bare string, which becomes a single TextContent.
type ContentList []Content

func (l *ContentList) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	switch {
	case doc.Type == gjson.Null:
		*l = nil
		return nil
	case doc.Type == gjson.String:
		*l = ContentList{TextContent{Text: doc.String()}}
		return nil
	case !doc.IsArray():
		return fmt.Errorf("decoding content list: expected array or string, got %s", doc.Type)
	}

	items := doc.Array()
	out := make(ContentList, 0, len(items))
	for i, item := range items {
		c, err := DecodeContent([]byte(item.Raw))
		if err != nil {
			return fmt.Errorf("decoding content[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	*l = out
	return nil
}

func (l ContentList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Content(l))
}
