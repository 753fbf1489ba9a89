// ABOUTME: CreateInteractionRequest and its polymorphic input (text, parts or role turns)
// ABOUTME: Validate enforces exactly one of model/agent and a non-empty input before sending

package interactions

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// CreateInteractionRequest is the body of POST /interactions.
type CreateInteractionRequest struct {
	Model                 string            `json:"model,omitempty"`
	Agent                 string            `json:"agent,omitempty"`
	Input                 InteractionInput  `json:"input"`
	SystemInstruction     string            `json:"system_instruction,omitempty"`
	Tools                 []Tool            `json:"tools,omitempty"`
	GenerationConfig      *GenerationConfig `json:"generation_config,omitempty"`
	ResponseModalities    []string          `json:"response_modalities,omitempty"`
	ResponseFormat        json.RawMessage   `json:"response_format,omitempty"`
	ResponseMIMEType      string            `json:"response_mime_type,omitempty"`
	Stream                bool              `json:"stream,omitempty"`
	Background            *bool             `json:"background,omitempty"`
	Store                 *bool             `json:"store,omitempty"`
	PreviousInteractionID string            `json:"previous_interaction_id,omitempty"`
}

// GenerationConfig holds sampling and thinking controls.
type GenerationConfig struct {
	Temperature       *float64 `json:"temperature,omitempty"`
	MaxOutputTokens   *int     `json:"max_output_tokens,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
	Seed              *int64   `json:"seed,omitempty"`
	StopSequences     []string `json:"stop_sequences,omitempty"`
	ThinkingLevel     string   `json:"thinking_level,omitempty"`
	ThinkingSummaries string   `json:"thinking_summaries,omitempty"`
}

// Validate reports problems that the server would reject anyway.
func (r *CreateInteractionRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	switch {
	case r.Model != "" && r.Agent != "":
		return fmt.Errorf("%w: model and agent are mutually exclusive", ErrInvalidRequest)
	case r.Model == "" && r.Agent == "":
		return fmt.Errorf("%w: one of model or agent is required", ErrInvalidRequest)
	}
	if r.Input.IsEmpty() {
		return fmt.Errorf("%w: input is empty", ErrInvalidRequest)
	}
	for i, t := range r.Tools {
		if t.Type == ToolTypeFunction && (t.Function == nil || t.Function.Name == "") {
			return fmt.Errorf("%w: tools[%d] is a function without a name", ErrInvalidRequest, i)
		}
	}
	return nil
}

// HasFunctionTools reports whether any client-side function is declared.
func (r *CreateInteractionRequest) HasFunctionTools() bool {
	for _, t := range r.Tools {
		if t.Type == ToolTypeFunction {
			return true
		}
	}
	return false
}

// Turn is one role-tagged message of a multi-turn input.
type Turn struct {
	Role    string      `json:"role"`
	Content ContentList `json:"content"`
}

// InteractionInput is exactly one of a plain string, a list of parts or a
// list of turns.
type InteractionInput struct {
	Text     string
	Contents ContentList
	Turns    []Turn
}

// TextInput is a plain string prompt.
func TextInput(s string) InteractionInput { return InteractionInput{Text: s} }

// ContentInput is a list of parts, e.g. text plus an image or function results.
func ContentInput(parts ...Content) InteractionInput { return InteractionInput{Contents: parts} }

// TurnsInput is an explicit conversation history.
func TurnsInput(turns ...Turn) InteractionInput { return InteractionInput{Turns: turns} }

func (in InteractionInput) IsEmpty() bool {
	return in.Text == "" && len(in.Contents) == 0 && len(in.Turns) == 0
}

func (in InteractionInput) MarshalJSON() ([]byte, error) {
	switch {
	case len(in.Turns) > 0:
		return json.Marshal(in.Turns)
	case len(in.Contents) > 0:
		return json.Marshal(in.Contents)
	default:
		return json.Marshal(in.Text)
	}
}

// UnmarshalJSON tells turns from parts by the "role" key of the first element.
func (in *InteractionInput) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	*in = InteractionInput{}
	switch {
	case doc.Type == gjson.Null:
		return nil
	case doc.Type == gjson.String:
		in.Text = doc.String()
		return nil
	case !doc.IsArray():
		return fmt.Errorf("decoding input: expected string or array, got %s", doc.Type)
	}

	if doc.Get("0.role").Exists() {
		return json.Unmarshal(data, &in.Turns)
	}
	return json.Unmarshal(data, &in.Contents)
}

// Parts flattens the input into content parts. Turns contribute their
// content in order.
func (in InteractionInput) Parts() ContentList {
	switch {
	case len(in.Turns) > 0:
		var out ContentList
		for _, t := range in.Turns {
			out = append(out, t.Content...)
		}
		return out
	case len(in.Contents) > 0:
		return in.Contents
	case in.Text != "":
		return ContentList{TextContent{Text: in.Text}}
	}
	return nil
}
