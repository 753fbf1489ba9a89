// ABOUTME: In-process fake Interactions API for tests: scripted turns over JSON and SSE
// ABOUTME: Stores interactions by id for get, delete, cancel and last_event_id stream resumption

package fakeserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
)

// APIPrefix is the path the API is mounted under.
const APIPrefix = "/v1beta"

// Turn scripts one model response.
type Turn struct {
	Outputs interactions.ContentList
	// Status defaults to requires_action when Outputs hold function calls,
	// completed otherwise.
	Status interactions.InteractionStatus
	Usage  *interactions.Usage

	// NoID answers like a store=false request: no id, nothing retained.
	NoID bool
	// HTTPStatus, when set, fails the request with an error envelope.
	HTTPStatus int
	// StreamError ends the stream with an error event after the start event.
	StreamError *interactions.ErrorChunk
	// CallsOnlyInDeltas drops function calls from the complete event.
	CallsOnlyInDeltas bool
	// SplitArguments streams function call arguments as two string fragments.
	SplitArguments bool
	// CutAfter closes a stream after this many frames. Zero sends all.
	CutAfter int
}

// TextTurn answers with a single text part.
func TextTurn(text string) Turn {
	return Turn{Outputs: interactions.ContentList{interactions.NewText(text)}}
}

// CallTurn answers with function calls.
func CallTurn(calls ...interactions.FunctionCallContent) Turn {
	outputs := make(interactions.ContentList, 0, len(calls))
	for _, c := range calls {
		outputs = append(outputs, c)
	}
	return Turn{Outputs: outputs}
}

// RecordedRequest is a create request as the server received it.
type RecordedRequest struct {
	APIKey string
	Stream bool
	Body   interactions.CreateInteractionRequest
}

type record struct {
	interaction *interactions.Interaction
	frames      []frame
}

// Server is a scripted Interactions API.
type Server struct {
	mu       sync.Mutex
	script   []Turn
	next     int
	records  map[string]*record
	requests []RecordedRequest

	apiKey string
	logger *zap.Logger
	router chi.Router
	srv    *httptest.Server
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey rejects requests whose x-goog-api-key header differs.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithLogger logs every request.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithTurns sets the initial script.
func WithTurns(turns ...Turn) Option {
	return func(s *Server) { s.script = turns }
}

// NewHandler builds the server without listening, for use with a caller-owned listener.
func NewHandler(opts ...Option) *Server {
	s := &Server{
		records: make(map[string]*record),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// New starts a server on a loopback port. Call Close when done.
func New(opts ...Option) *Server {
	s := NewHandler(opts...)
	s.srv = httptest.NewServer(s.router)
	return s
}

// URL is the API base URL, including APIPrefix.
func (s *Server) URL() string {
	return s.srv.URL + APIPrefix
}

// Client returns an HTTP client configured for the server.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// Close shuts the listener down.
func (s *Server) Close() {
	if s.srv != nil {
		s.srv.Close()
	}
}

// ServeHTTP exposes the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Script replaces the remaining turns. Once the script runs out the last
// turn repeats.
func (s *Server) Script(turns ...Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = turns
	s.next = 0
}

// Requests returns the create requests received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Interaction returns a stored interaction.
func (s *Server) Interaction(id string) (*interactions.Interaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return rec.interaction, true
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(s.checkAPIKey)
		r.Post("/interactions", s.handleCreate)
		r.Get("/interactions/{id}", s.handleGet)
		r.Delete("/interactions/{id}", s.handleDelete)
		// {id}:cancel is a custom method suffix, not a path segment.
		r.Post("/interactions/{id}", s.handleAction)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
		)
	})
}

func (s *Server) checkAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("x-goog-api-key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "API key not valid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body interactions.CreateInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request: "+err.Error())
		return
	}
	if err := body.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	stream := body.Stream || r.URL.Query().Get("alt") == "sse"

	turn, in := s.take(RecordedRequest{APIKey: r.Header.Get("x-goog-api-key"), Stream: stream, Body: body})
	if turn.HTTPStatus != 0 {
		writeError(w, turn.HTTPStatus, http.StatusText(turn.HTTPStatus), "scripted failure")
		return
	}

	if !stream {
		writeJSON(w, http.StatusOK, in)
		return
	}

	frames := buildFrames(in, turn)
	s.mu.Lock()
	if rec, ok := s.records[in.ID]; ok {
		rec.frames = frames
	}
	s.mu.Unlock()

	if turn.CutAfter > 0 && turn.CutAfter < len(frames) {
		frames = frames[:turn.CutAfter]
	}
	writeFrames(w, frames)
}

// take consumes the next scripted turn and materializes its interaction.
func (s *Server) take(req RecordedRequest) (Turn, *interactions.Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)

	var turn Turn
	if len(s.script) > 0 {
		turn = s.script[min(s.next, len(s.script)-1)]
		s.next++
	}

	status := turn.Status
	if status == "" {
		status = interactions.StatusCompleted
		for _, part := range turn.Outputs {
			if _, ok := part.(interactions.FunctionCallContent); ok {
				status = interactions.StatusRequiresAction
				break
			}
		}
	}

	in := &interactions.Interaction{
		Model:                 req.Body.Model,
		Agent:                 req.Body.Agent,
		Outputs:               turn.Outputs,
		Status:                status,
		Usage:                 turn.Usage,
		PreviousInteractionID: req.Body.PreviousInteractionID,
	}
	if !turn.NoID && turn.HTTPStatus == 0 {
		in.ID = "int_" + uuid.NewString()
		s.records[in.ID] = &record{interaction: in}
	}
	return turn, in
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	var (
		in     *interactions.Interaction
		frames []frame
	)
	rec, ok := s.records[id]
	if ok {
		in, frames = rec.interaction, rec.frames
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "interaction "+id+" not found")
		return
	}

	q := r.URL.Query()
	if q.Get("stream") != "true" {
		writeJSON(w, http.StatusOK, in)
		return
	}

	if last := q.Get("last_event_id"); last != "" {
		for i, f := range frames {
			if f.id == last {
				frames = frames[i+1:]
				break
			}
		}
	}
	writeFrames(w, frames)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.records[id]
	delete(s.records, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "interaction "+id+" not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(chi.URLParam(r, "id"), ":cancel")
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown method")
		return
	}

	s.mu.Lock()
	rec, found := s.records[id]
	var out interactions.Interaction
	if found {
		cancelled := *rec.interaction
		if !cancelled.Status.IsTerminal() {
			cancelled.Status = interactions.StatusCancelled
		}
		rec.interaction = &cancelled
		out = cancelled
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "interaction "+id+" not found")
		return
	}
	writeJSON(w, http.StatusOK, &out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": status, "message": message, "status": code},
	})
}
