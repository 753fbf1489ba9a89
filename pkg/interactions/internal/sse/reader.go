// ABOUTME: Server-Sent Events frame parser for the interactions stream transport
// ABOUTME: Handles event/data/id/retry fields, multi-line data, comments and last-event-id tracking

package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Event is one dispatched SSE frame.
type Event struct {
	Type  string
	Data  string
	ID    string // id carried by this frame; empty when the frame had none
	Retry int    // reconnection delay hint in milliseconds; 0 when absent
}

// Reader parses Server-Sent Events from an io.Reader.
type Reader struct {
	scanner     *bufio.Scanner
	lastEventID string
}

const maxLineSize = 4 * 1024 * 1024

// NewReader creates a new SSE reader from the given io.Reader.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: s}
}

// LastEventID returns the most recent id seen on the stream. Per the SSE
// model it survives frames that carry no id of their own.
func (r *Reader) LastEventID() string {
	return r.lastEventID
}

// Next reads and returns the next SSE event.
// Returns nil, io.EOF when the stream ends.
func (r *Reader) Next() (*Event, error) {
	var (
		pending frame
		started bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()

		if line == "" {
			if started {
				return r.dispatch(&pending), nil
			}
			continue
		}

		if line[0] == ':' {
			continue
		}

		field, value := parseLine(line)
		if pending.apply(field, value) {
			started = true
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// A final frame without its trailing blank line still counts.
	if started {
		return r.dispatch(&pending), nil
	}

	return nil, io.EOF
}

func (r *Reader) dispatch(f *frame) *Event {
	ev := &Event{
		Type:  f.eventType,
		Data:  strings.Join(f.data, "\n"),
		ID:    f.id,
		Retry: f.retry,
	}
	if f.hasID {
		r.lastEventID = f.id
	}
	return ev
}

// frame accumulates fields until a blank line dispatches it.
type frame struct {
	eventType string
	data      []string
	id        string
	hasID     bool
	retry     int
}

// apply records a field and reports whether it contributed to the frame.
// Unknown fields are ignored as the SSE format requires.
func (f *frame) apply(field, value string) bool {
	switch field {
	case "event":
		f.eventType = value
	case "data":
		f.data = append(f.data, value)
	case "id":
		// ids containing NUL are ignored by the SSE processing model.
		if strings.ContainsRune(value, 0) {
			return false
		}
		f.id = value
		f.hasID = true
	case "retry":
		n, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		f.retry = n
	default:
		return false
	}
	return true
}

// parseLine splits an SSE line into field name and value.
func parseLine(line string) (string, string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
