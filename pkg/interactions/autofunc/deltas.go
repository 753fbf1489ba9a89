// ABOUTME: Reassembles function calls that arrive split across streamed deltas
// ABOUTME: Args may come as whole objects or as string fragments completed with partjson

package autofunc

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
	"github.com/mauromedda/genai-interactions-go/pkg/interactions/partjson"
)

type callBuilder struct {
	id        string
	name      string
	signature string
	args      json.RawMessage
	fragments strings.Builder
}

// deltaCalls collects function call deltas by output index, in first-seen order.
type deltaCalls struct {
	byIndex map[int]*callBuilder
	order   []int
}

func newDeltaCalls() *deltaCalls {
	return &deltaCalls{byIndex: make(map[int]*callBuilder)}
}

// add folds one delta part. Parts other than function calls are ignored.
// A call fragment missing its name decodes as Unknown with the function_call
// tag, so those are read back from the raw payload.
func (d *deltaCalls) add(index int, c interactions.Content) {
	var id, name, sig string
	var args json.RawMessage

	switch v := c.(type) {
	case interactions.FunctionCallContent:
		id, name, sig, args = v.ID, v.Name, v.ThoughtSignature, v.Arguments
	case interactions.UnknownContent:
		if v.Type != interactions.ContentTypeFunctionCall {
			return
		}
		doc := gjson.ParseBytes(v.Data)
		id = doc.Get("id").String()
		name = doc.Get("name").String()
		sig = doc.Get("thoughtSignature").String()
		if a := doc.Get("arguments"); a.Exists() {
			args = json.RawMessage(a.Raw)
		}
	default:
		return
	}

	b, ok := d.byIndex[index]
	if !ok {
		b = &callBuilder{}
		d.byIndex[index] = b
		d.order = append(d.order, index)
	}
	if id != "" {
		b.id = id
	}
	if name != "" {
		b.name = name
	}
	if sig != "" {
		b.signature = sig
	}
	if len(args) == 0 {
		return
	}
	switch a := gjson.ParseBytes(args); {
	case a.Type == gjson.String:
		b.fragments.WriteString(a.String())
	case a.IsObject():
		b.args = args
	}
}

// calls returns the reassembled calls. A complete object wins over string
// fragments; fragments that cannot be repaired leave args empty.
func (d *deltaCalls) calls() []interactions.FunctionCallInfo {
	var out []interactions.FunctionCallInfo
	for _, idx := range d.order {
		b := d.byIndex[idx]
		if b.name == "" {
			continue
		}
		args := b.args
		if len(args) == 0 && b.fragments.Len() > 0 {
			if completed, ok := partjson.Complete(b.fragments.String()); ok {
				args = completed
			}
		}
		out = append(out, interactions.FunctionCallInfo{
			ID:               b.id,
			Name:             b.name,
			Args:             args,
			ThoughtSignature: b.signature,
		})
	}
	return out
}
