// ABOUTME: Zero-reflection decoder for the SSE frame envelope (event_type, index, payload slots)
// ABOUTME: Payload members are kept raw and decoded lazily by the stream decoder

package interactions

import (
	"encoding/json"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jlexer"
)

// wireFrame is the JSON carried in the data field of one SSE event.
type wireFrame struct {
	EventType     string
	EventID       string
	InteractionID string
	Index         int
	Status        json.RawMessage
	Interaction   json.RawMessage
	Content       json.RawMessage
	Delta         json.RawMessage
	Error         json.RawMessage
}

var _ easyjson.Unmarshaler = (*wireFrame)(nil)

func decodeWireFrame(data []byte) (wireFrame, error) {
	var f wireFrame
	err := easyjson.Unmarshal(data, &f)
	return f, err
}

// UnmarshalEasyJSON follows the shape of easyjson generated decoders.
func (f *wireFrame) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "event_type":
			f.EventType = in.String()
		case "event_id":
			f.EventID = in.String()
		case "interaction_id":
			f.InteractionID = in.String()
		case "index":
			f.Index = in.Int()
		case "status":
			f.Status = json.RawMessage(in.Raw())
		case "interaction":
			f.Interaction = json.RawMessage(in.Raw())
		case "content":
			f.Content = json.RawMessage(in.Raw())
		case "delta":
			f.Delta = json.RawMessage(in.Raw())
		case "error":
			f.Error = json.RawMessage(in.Raw())
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func (f *wireFrame) UnmarshalJSON(data []byte) error {
	r := jlexer.Lexer{Data: data}
	f.UnmarshalEasyJSON(&r)
	return r.Error()
}
