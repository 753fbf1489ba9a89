// ABOUTME: Tests for the HTTP transport: JSON round-trips, status errors, SSE streaming
// ABOUTME: Uses httptest.NewServer for deterministic, isolated test scenarios

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestClientDoJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1beta/interactions" {
			t.Errorf("got path %q, want %q", r.URL.Path, "/v1beta/interactions")
		}
		if got := r.Header.Get("X-Goog-Api-Key"); got != "k" {
			t.Errorf("got api key header %q, want %q", got, "k")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("got Content-Type %q, want application/json", got)
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["model"]})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL+"/v1beta/", map[string]string{"x-goog-api-key": "k"}, nil)

	var out map[string]string
	err := client.DoJSON(context.Background(), http.MethodPost, "/interactions", map[string]string{"model": "m"}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["echo"] != "m" {
		t.Errorf("got echo %q, want %q", out["echo"], "m")
	}
}

func TestClientDoJSONEmptyBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "" {
			t.Errorf("bodyless request should not set Content-Type, got %q", r.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, nil, nil)
	var out map[string]any
	if err := client.DoJSON(context.Background(), http.MethodDelete, "/interactions/x", nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected out to stay nil, got %v", out)
	}
}

func TestClientDoNoRetryOnServerError(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, nil, nil)
	_, err := client.Do(context.Background(), http.MethodGet, "/x", nil, "")

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T (%v)", err, err)
	}
	if se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("got status %d, want %d", se.StatusCode, http.StatusServiceUnavailable)
	}
	if string(se.Body) != `{"error":{"message":"overloaded"}}` {
		t.Errorf("got body %q", se.Body)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("got %d attempts, want 1", got)
	}
}

func TestClientDoJSONMalformedResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, nil, nil)
	var out map[string]any
	if err := client.DoJSON(context.Background(), http.MethodGet, "/x", nil, &out); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClientStreamSSE(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("got Accept %q, want text/event-stream", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("id: e1\ndata: {\"event_type\":\"content.delta\"}\n\n"))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, nil, nil)
	reader, body, err := client.StreamSSE(context.Background(), http.MethodPost, "/interactions?alt=sse", map[string]bool{"stream": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()

	ev, err := reader.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ID != "e1" {
		t.Errorf("got id %q, want e1", ev.ID)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestClientStreamSSEStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, nil, nil)
	_, _, err := client.StreamSSE(context.Background(), http.MethodPost, "/interactions", nil)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
}

func TestClientDoContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, nil, nil)
	if _, err := client.Do(ctx, http.MethodGet, "/x", nil, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
