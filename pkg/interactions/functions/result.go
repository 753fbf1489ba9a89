// ABOUTME: Error-shaped function results fed back to the model
// ABOUTME: Failures share the success representation and are told apart by an "error" key

package functions

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// ErrorResult encodes msg as {"error": msg}.
func ErrorResult(msg string) json.RawMessage {
	raw, _ := json.Marshal(map[string]string{"error": msg})
	return raw
}

// NotAvailableResult is the result reported for a name missing from the registry.
func NotAvailableResult(name string) json.RawMessage {
	return ErrorResult(name + " is not available")
}

// IsErrorResult reports whether raw is an object carrying an "error" key.
func IsErrorResult(raw json.RawMessage) bool {
	res := gjson.ParseBytes(raw)
	return res.IsObject() && res.Get("error").Exists()
}

// ErrorMessage returns the "error" value of an error result as text.
func ErrorMessage(raw json.RawMessage) string {
	if !IsErrorResult(raw) {
		return ""
	}
	return gjson.GetBytes(raw, "error").String()
}
