package api

import (
	"net/http"
	"strings"

	"github.com/Shloimy15e/yiddish-cleaner/internal/review"
	"github.com/Shloimy15e/yiddish-cleaner/internal/suggest"
)

func (s *Server) listWords(w http.ResponseWriter, r *http.Request) {
	words, err := s.svc.ListWords(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if words == nil {
		words = []review.Word{}
	}
	writeJSON(w, http.StatusOK, words)
}

type insertWordRequest struct {
	AfterPosition int    `json:"after_position"`
	Text          string `json:"text"`
}

func (s *Server) insertWord(w http.ResponseWriter, r *http.Request) {
	var req insertWordRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text must not be empty")
		return
	}
	word, err := s.svc.InsertWord(r.Context(), r.PathValue("id"), req.AfterPosition, req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, word)
}

type bulkWordsRequest struct {
	Action review.BulkAction `json:"action"`
	IDs    []string          `json:"ids"`
}

type bulkWordsResponse struct {
	Affected int `json:"affected"`
}

func (s *Server) bulkWords(w http.ResponseWriter, r *http.Request) {
	var req bulkWordsRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	affected, err := s.svc.BulkWords(r.Context(), r.PathValue("id"), req.Action, req.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkWordsResponse{Affected: affected})
}

type correctWordRequest struct {
	CorrectedText string `json:"corrected_text"`
}

func (s *Server) correctWord(w http.ResponseWriter, r *http.Request) {
	var req correctWordRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	word, err := s.svc.SaveCorrection(r.Context(), r.PathValue("id"), r.PathValue("wordID"), req.CorrectedText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

func (s *Server) deleteWord(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteWord(r.Context(), r.PathValue("id"), r.PathValue("wordID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) restoreWord(w http.ResponseWriter, r *http.Request) {
	word, err := s.svc.RestoreWord(r.Context(), r.PathValue("id"), r.PathValue("wordID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

func (s *Server) toggleCritical(w http.ResponseWriter, r *http.Request) {
	word, err := s.svc.ToggleCritical(r.Context(), r.PathValue("id"), r.PathValue("wordID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

type suggestResponse struct {
	Word        string               `json:"word"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

func (s *Server) suggestions(w http.ResponseWriter, r *http.Request) {
	if s.ranker == nil {
		notConfigured(w, "suggestion lexicon")
		return
	}
	word := r.URL.Query().Get("word")
	if strings.TrimSpace(word) == "" {
		badRequest(w, `query parameter "word" is required`)
		return
	}
	out := s.ranker.Rank(word)
	if out == nil {
		out = []suggest.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestResponse{Word: word, Suggestions: out})
}
