// Package api is the JSON HTTP boundary of the review server.
//
// Routes are registered on a plain [http.ServeMux] using Go 1.22 method
// patterns. Handlers translate between wire JSON and the domain packages and
// do all web-form normalisation (empty-string range bounds become nil here,
// never inside the calculators). Business rules live in
// [transcript.Service]; this package only maps errors to status codes.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Shloimy15e/yiddish-cleaner/internal/asr"
	"github.com/Shloimy15e/yiddish-cleaner/internal/cleaner"
	"github.com/Shloimy15e/yiddish-cleaner/internal/review"
	"github.com/Shloimy15e/yiddish-cleaner/internal/suggest"
	"github.com/Shloimy15e/yiddish-cleaner/internal/transcript"
)

// maxAudioUpload bounds audio upload size (256 MiB).
const maxAudioUpload = 256 << 20

// Option is a functional option for configuring a [Server].
type Option func(*Server)

// WithASR enables the audio upload and forced-alignment endpoints.
func WithASR(p asr.Provider) Option {
	return func(s *Server) {
		s.asr = p
	}
}

// WithCleaner enables the document-cleaning preview endpoint.
func WithCleaner(c *cleaner.Cleaner) Option {
	return func(s *Server) {
		s.cleaner = c
	}
}

// WithRanker enables the spelling-suggestion endpoint.
func WithRanker(r *suggest.Ranker) Option {
	return func(s *Server) {
		s.ranker = r
	}
}

// WithLogger sets the structured logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// Server holds the handler dependencies. Optional subsystems (ASR, cleaner,
// ranker) may be nil; their endpoints then answer 501.
type Server struct {
	svc     *transcript.Service
	asr     asr.Provider
	cleaner *cleaner.Cleaner
	ranker  *suggest.Ranker
	log     *slog.Logger
}

// NewServer creates a [Server] around the transcript service.
func NewServer(svc *transcript.Service, opts ...Option) *Server {
	s := &Server{
		svc: svc,
		log: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register adds all API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/transcripts", s.createTranscript)
	mux.HandleFunc("GET /api/transcripts", s.listTranscripts)
	mux.HandleFunc("GET /api/transcripts/{id}", s.getTranscript)
	mux.HandleFunc("DELETE /api/transcripts/{id}", s.deleteTranscript)
	mux.HandleFunc("PUT /api/transcripts/{id}/texts", s.setTexts)
	mux.HandleFunc("PUT /api/transcripts/{id}/range", s.setRange)
	mux.HandleFunc("POST /api/transcripts/{id}/recompute", s.recompute)
	mux.HandleFunc("GET /api/transcripts/{id}/metrics", s.metrics)
	mux.HandleFunc("GET /api/transcripts/{id}/diff", s.diff)
	mux.HandleFunc("POST /api/transcripts/{id}/audio", s.uploadAudio)
	mux.HandleFunc("POST /api/transcripts/{id}/align", s.alignAudio)
	mux.HandleFunc("POST /api/transcripts/{id}/clean", s.clean)

	mux.HandleFunc("GET /api/transcripts/{id}/words", s.listWords)
	mux.HandleFunc("POST /api/transcripts/{id}/words", s.insertWord)
	mux.HandleFunc("POST /api/transcripts/{id}/words/bulk", s.bulkWords)
	mux.HandleFunc("PUT /api/transcripts/{id}/words/{wordID}", s.correctWord)
	mux.HandleFunc("DELETE /api/transcripts/{id}/words/{wordID}", s.deleteWord)
	mux.HandleFunc("POST /api/transcripts/{id}/words/{wordID}/restore", s.restoreWord)
	mux.HandleFunc("POST /api/transcripts/{id}/words/{wordID}/critical", s.toggleCritical)

	mux.HandleFunc("GET /api/suggest", s.suggestions)
}

// optionalIndex is a range bound as it arrives from the wire: web forms post
// "" for an unset bound, JSON clients send a number or null. All three decode
// to the same thing; the calculators only ever see *int.
type optionalIndex struct {
	value *int
}

func (o *optionalIndex) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		o.value = nil
	case float64:
		n := int(v)
		o.value = &n
	case string:
		if v == "" {
			o.value = nil
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid index %q", v)
		}
		o.value = &n
	default:
		return fmt.Errorf("invalid index %v", raw)
	}
	return nil
}

// errorResponse is the JSON body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
	}
}

// writeError maps a domain error to its status code and writes the JSON
// error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, transcript.ErrNotFound), errors.Is(err, review.ErrWordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, transcript.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, review.ErrUnknownAction):
		status = http.StatusBadRequest
	case errors.Is(err, asr.ErrNotSupported):
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decode reads a JSON request body into v, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// badRequest writes a 400 with the given message.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// notConfigured writes a 501 for endpoints whose optional backend is absent.
func notConfigured(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotImplemented, errorResponse{Error: what + " is not configured"})
}
