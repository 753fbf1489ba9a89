// ABOUTME: Output formatters for auto-function runs: text, JSON and stream-JSON
// ABOUTME: Text mode prints or renders the answer and traces function calls on a side writer

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions/autofunc"
	"github.com/mauromedda/genai-interactions-go/pkg/interactions/functions"
)

// Format selects a formatter.
type Format string

const (
	FormatText       Format = "text"
	FormatJSON       Format = "json"
	FormatStreamJSON Format = "stream-json"
)

// ParseFormat validates a format name. Empty selects text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatStreamJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or stream-json)", s)
	}
}

// Options configures New.
type Options struct {
	Out   io.Writer // answer
	Trace io.Writer // function trace and notices, text mode only
	// Markdown, when set, buffers the answer and renders it at the end.
	Markdown *MarkdownRenderer
	Width    int
	Styles   Styles
}

// Formatter receives the events of one run.
type Formatter interface {
	Start()
	Text(s string)
	FunctionCall(call autofunc.PendingCall)
	FunctionResult(r autofunc.FunctionExecutionResult)
	Error(err error)
	// End closes the run. res is nil when the run failed.
	End(res *autofunc.Result)
}

// New returns the formatter for format.
func New(format Format, opts Options) Formatter {
	if opts.Trace == nil {
		opts.Trace = io.Discard
	}
	switch format {
	case FormatJSON:
		return &jsonFormatter{out: opts.Out}
	case FormatStreamJSON:
		return &streamJSONFormatter{out: opts.Out}
	default:
		if opts.Width <= 0 {
			opts.Width = 80
		}
		return &textFormatter{opts: opts}
	}
}

// textFormatter writes the answer to Out and the trace to Trace.
type textFormatter struct {
	opts    Options
	buf     strings.Builder
	printed bool
}

func (f *textFormatter) Start() {}

func (f *textFormatter) Text(s string) {
	if s == "" {
		return
	}
	if f.opts.Markdown != nil {
		f.buf.WriteString(s)
		return
	}
	f.printed = true
	fmt.Fprint(f.opts.Out, s)
}

func (f *textFormatter) FunctionCall(call autofunc.PendingCall) {
	fmt.Fprintln(f.opts.Trace, f.opts.Styles.call(call.Name, string(call.Args)))
}

func (f *textFormatter) FunctionResult(r autofunc.FunctionExecutionResult) {
	fmt.Fprintln(f.opts.Trace, f.opts.Styles.result(r.Name, string(r.Result), r.Duration, r.IsError()))
}

func (f *textFormatter) Error(err error) {
	fmt.Fprintln(f.opts.Trace, f.opts.Styles.Failure.Render("error: "+err.Error()))
}

func (f *textFormatter) End(res *autofunc.Result) {
	if f.opts.Markdown != nil && f.buf.Len() > 0 {
		fmt.Fprintln(f.opts.Out, f.opts.Markdown.Render(f.buf.String(), f.opts.Width))
	} else if f.printed {
		fmt.Fprintln(f.opts.Out)
	}
	if res != nil && res.ReachedMaxLoops {
		fmt.Fprintln(f.opts.Trace, f.opts.Styles.notice("iteration limit reached; the last response may still request functions"))
	}
}

// jsonFormatter collects the run and writes one JSON object at the end.
type jsonFormatter struct {
	out    io.Writer
	text   strings.Builder
	calls  []jsonCall
	errors []string
}

type jsonCall struct {
	Name       string          `json:"name"`
	CallID     string          `json:"call_id"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      bool            `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

type jsonOutput struct {
	InteractionID   string     `json:"interaction_id,omitempty"`
	Status          string     `json:"status,omitempty"`
	Text            string     `json:"text"`
	FunctionCalls   []jsonCall `json:"function_calls,omitempty"`
	ReachedMaxLoops bool       `json:"reached_max_loops,omitempty"`
	Errors          []string   `json:"errors,omitempty"`
}

func (f *jsonFormatter) Start()                            {}
func (f *jsonFormatter) Text(s string)                     { f.text.WriteString(s) }
func (f *jsonFormatter) FunctionCall(autofunc.PendingCall) {}

func (f *jsonFormatter) FunctionResult(r autofunc.FunctionExecutionResult) {
	f.calls = append(f.calls, jsonCall{
		Name:       r.Name,
		CallID:     r.CallID,
		Args:       r.Args,
		Result:     r.Result,
		Error:      r.IsError(),
		DurationMS: r.Duration.Milliseconds(),
	})
}

func (f *jsonFormatter) Error(err error) { f.errors = append(f.errors, err.Error()) }

func (f *jsonFormatter) End(res *autofunc.Result) {
	out := jsonOutput{
		Text:          f.text.String(),
		FunctionCalls: f.calls,
		Errors:        f.errors,
	}
	if res != nil {
		out.ReachedMaxLoops = res.ReachedMaxLoops
		if res.Interaction != nil {
			out.InteractionID = res.Interaction.ID
			out.Status = string(res.Interaction.Status)
		}
	}
	data, _ := json.Marshal(out)
	fmt.Fprintln(f.out, string(data))
}

// streamJSONFormatter writes one JSON line per event.
type streamJSONFormatter struct {
	out io.Writer
}

type streamLine struct {
	Type          string          `json:"type"`
	Text          string          `json:"text,omitempty"`
	Function      string          `json:"function,omitempty"`
	CallID        string          `json:"call_id,omitempty"`
	Args          json.RawMessage `json:"args,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
	Error         string          `json:"error,omitempty"`
	InteractionID string          `json:"interaction_id,omitempty"`
}

func (f *streamJSONFormatter) write(l streamLine) {
	data, _ := json.Marshal(l)
	fmt.Fprintln(f.out, string(data))
}

func (f *streamJSONFormatter) Start() { f.write(streamLine{Type: "start"}) }

func (f *streamJSONFormatter) Text(s string) {
	if s != "" {
		f.write(streamLine{Type: "text", Text: s})
	}
}

func (f *streamJSONFormatter) FunctionCall(call autofunc.PendingCall) {
	f.write(streamLine{Type: "function_call", Function: call.Name, CallID: call.CallID, Args: call.Args})
}

func (f *streamJSONFormatter) FunctionResult(r autofunc.FunctionExecutionResult) {
	l := streamLine{Type: "function_result", Function: r.Name, CallID: r.CallID, Result: r.Result}
	if r.IsError() {
		l.Error = functions.ErrorMessage(r.Result)
	}
	f.write(l)
}

func (f *streamJSONFormatter) Error(err error) {
	f.write(streamLine{Type: "error", Error: err.Error()})
}

func (f *streamJSONFormatter) End(res *autofunc.Result) {
	l := streamLine{Type: "end"}
	if res != nil {
		if res.ReachedMaxLoops {
			l.Type = "max_loops_reached"
		}
		if res.Interaction != nil {
			l.InteractionID = res.Interaction.ID
		}
	}
	f.write(l)
}
