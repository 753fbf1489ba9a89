// ABOUTME: Tool declarations attached to requests: functions and built-in server tools
// ABOUTME: Tool shapes this version does not know are preserved verbatim for round-tripping

package interactions

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Tool type tags.
const (
	ToolTypeFunction      = "function"
	ToolTypeGoogleSearch  = "google_search"
	ToolTypeCodeExecution = "code_execution"
	ToolTypeURLContext    = "url_context"
	ToolTypeFileSearch    = "file_search"
)

// FunctionDeclaration describes a client-side function the model may call.
// Parameters is a JSON schema object.
type FunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Tool is one entry of a request's tools list.
type Tool struct {
	Type string

	// Set when Type is ToolTypeFunction.
	Function *FunctionDeclaration

	// Set when Type is ToolTypeFileSearch.
	FileSearchStoreNames []string

	// raw keeps a tool shape this version does not understand.
	raw json.RawMessage
}

// FunctionTool wraps a declaration as a tool.
func FunctionTool(decl FunctionDeclaration) Tool {
	return Tool{Type: ToolTypeFunction, Function: &decl}
}

// GoogleSearchTool enables server-side web search.
func GoogleSearchTool() Tool { return Tool{Type: ToolTypeGoogleSearch} }

// CodeExecutionTool enables the server-side code sandbox.
func CodeExecutionTool() Tool { return Tool{Type: ToolTypeCodeExecution} }

// URLContextTool lets the model fetch URLs mentioned in the prompt.
func URLContextTool() Tool { return Tool{Type: ToolTypeURLContext} }

// FileSearchTool searches the named file search stores.
func FileSearchTool(stores ...string) Tool {
	return Tool{Type: ToolTypeFileSearch, FileSearchStoreNames: stores}
}

// IsUnknown reports a tool shape this version did not recognise.
func (t Tool) IsUnknown() bool { return t.raw != nil }

func (t Tool) MarshalJSON() ([]byte, error) {
	if t.raw != nil {
		return t.raw, nil
	}
	switch t.Type {
	case ToolTypeFunction:
		if t.Function == nil {
			return nil, fmt.Errorf("function tool without declaration")
		}
		type alias FunctionDeclaration
		return marshalTagged(t.Type, alias(*t.Function))
	case ToolTypeFileSearch:
		return marshalTagged(t.Type, struct {
			Stores []string `json:"file_search_store_names,omitempty"`
		}{t.FileSearchStoreNames})
	default:
		return marshalTagged(t.Type, struct{}{})
	}
}

func (t *Tool) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("decoding tool: expected object, got %s", doc.Type)
	}

	*t = Tool{Type: doc.Get("type").String()}
	switch t.Type {
	case ToolTypeFunction:
		var decl FunctionDeclaration
		if err := json.Unmarshal(data, &decl); err != nil {
			return fmt.Errorf("decoding function tool: %w", err)
		}
		t.Function = &decl
	case ToolTypeFileSearch:
		for _, s := range doc.Get("file_search_store_names").Array() {
			t.FileSearchStoreNames = append(t.FileSearchStoreNames, s.String())
		}
	case ToolTypeGoogleSearch, ToolTypeCodeExecution, ToolTypeURLContext:
	default:
		t.raw = append(json.RawMessage(nil), data...)
	}
	return nil
}
