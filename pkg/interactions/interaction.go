// ABOUTME: Interaction envelope: one turn with ordered input/outputs, status and metadata
// ABOUTME: Query helpers are pure projections over Outputs and are safe on nil or empty values

package interactions

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// Interaction is one request/response turn as returned by the service.
// ID is empty when the caller opted out of server-side storage.
type Interaction struct {
	ID                    string              `json:"id,omitempty"`
	Model                 string              `json:"model,omitempty"`
	Agent                 string              `json:"agent,omitempty"`
	Input                 ContentList         `json:"input,omitempty"`
	Outputs               ContentList         `json:"outputs,omitempty"`
	Status                InteractionStatus   `json:"status,omitempty"`
	Usage                 *Usage              `json:"usage,omitempty"`
	Tools                 []Tool              `json:"tools,omitempty"`
	GroundingMetadata     *GroundingMetadata  `json:"grounding_metadata,omitempty"`
	URLContextMetadata    *URLContextMetadata `json:"url_context_metadata,omitempty"`
	PreviousInteractionID string              `json:"previous_interaction_id,omitempty"`
	Created               time.Time           `json:"created,omitzero"`
	Updated               time.Time           `json:"updated,omitzero"`
	Role                  string              `json:"role,omitempty"`
}

// FunctionCallInfo is a function call projected out of the outputs.
type FunctionCallInfo struct {
	ID               string
	Name             string
	Args             json.RawMessage
	ThoughtSignature string
}

// ContentSummary counts output parts by type tag.
type ContentSummary struct {
	Counts       map[string]int
	UnknownTypes []string // sorted, deduplicated
}

func (i *Interaction) outputs() ContentList {
	if i == nil {
		return nil
	}
	return i.Outputs
}

// collect returns every output part of type T, in order.
func collect[T Content](i *Interaction) []T {
	var out []T
	for _, c := range i.outputs() {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Text returns the first text output, or "" when there is none.
func (i *Interaction) Text() string {
	for _, c := range i.outputs() {
		if t, ok := c.(TextContent); ok {
			return t.Text
		}
	}
	return ""
}

// AllText concatenates every text output in order.
func (i *Interaction) AllText() string {
	var sb strings.Builder
	for _, t := range collect[TextContent](i) {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Thoughts returns the non-empty thought texts.
func (i *Interaction) Thoughts() []string {
	var out []string
	for _, t := range collect[ThoughtContent](i) {
		if t.Text != "" {
			out = append(out, t.Text)
		}
	}
	return out
}

// ThoughtSignatures returns every thought signature token.
func (i *Interaction) ThoughtSignatures() []string {
	var out []string
	for _, s := range collect[ThoughtSignatureContent](i) {
		out = append(out, s.Signature)
	}
	return out
}

// FunctionCalls returns the function calls the model requested.
func (i *Interaction) FunctionCalls() []FunctionCallInfo {
	var out []FunctionCallInfo
	for _, fc := range collect[FunctionCallContent](i) {
		out = append(out, FunctionCallInfo{
			ID:               fc.ID,
			Name:             fc.Name,
			Args:             fc.Arguments,
			ThoughtSignature: fc.ThoughtSignature,
		})
	}
	return out
}

func (i *Interaction) FunctionResults() []FunctionResultContent {
	return collect[FunctionResultContent](i)
}

func (i *Interaction) CodeExecutionCalls() []CodeExecutionCallContent {
	return collect[CodeExecutionCallContent](i)
}

func (i *Interaction) CodeExecutionResults() []CodeExecutionResultContent {
	return collect[CodeExecutionResultContent](i)
}

func (i *Interaction) GoogleSearchCalls() []GoogleSearchCallContent {
	return collect[GoogleSearchCallContent](i)
}

func (i *Interaction) GoogleSearchResults() []GoogleSearchResultContent {
	return collect[GoogleSearchResultContent](i)
}

func (i *Interaction) URLContextCalls() []URLContextCallContent {
	return collect[URLContextCallContent](i)
}

func (i *Interaction) URLContextResults() []URLContextResultContent {
	return collect[URLContextResultContent](i)
}

func (i *Interaction) FileSearchResults() []FileSearchResultContent {
	return collect[FileSearchResultContent](i)
}

func (i *Interaction) Images() []ImageContent {
	return collect[ImageContent](i)
}

// UnknownContents returns the output parts this version did not recognise.
func (i *Interaction) UnknownContents() []UnknownContent {
	return collect[UnknownContent](i)
}

func (i *Interaction) HasText() bool          { return len(collect[TextContent](i)) > 0 }
func (i *Interaction) HasThoughts() bool      { return len(i.Thoughts()) > 0 }
func (i *Interaction) HasFunctionCalls() bool { return len(collect[FunctionCallContent](i)) > 0 }
func (i *Interaction) HasUnknown() bool       { return len(collect[UnknownContent](i)) > 0 }

// ContentSummary counts outputs per type tag and lists unknown tags.
func (i *Interaction) ContentSummary() ContentSummary {
	s := ContentSummary{Counts: map[string]int{}}
	for _, c := range i.outputs() {
		s.Counts[c.ContentType()]++
		if u, ok := c.(UnknownContent); ok {
			s.UnknownTypes = append(s.UnknownTypes, u.Type)
		}
	}
	slices.Sort(s.UnknownTypes)
	s.UnknownTypes = slices.Compact(s.UnknownTypes)
	return s
}
