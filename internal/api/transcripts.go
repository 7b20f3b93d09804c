package api

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Shloimy15e/yiddish-cleaner/internal/asr"
	"github.com/Shloimy15e/yiddish-cleaner/internal/score"
	"github.com/Shloimy15e/yiddish-cleaner/internal/transcript"
)

type createTranscriptRequest struct {
	Title          string `json:"title"`
	Language       string `json:"language"`
	ReferenceText  string `json:"reference_text"`
	HypothesisText string `json:"hypothesis_text"`
}

func (s *Server) createTranscript(w http.ResponseWriter, r *http.Request) {
	var req createTranscriptRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	rec, err := s.svc.Create(r.Context(), req.Title, req.Language, req.ReferenceText, req.HypothesisText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) listTranscripts(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []transcript.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) getTranscript(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteTranscript(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setTextsRequest struct {
	ReferenceText  string `json:"reference_text"`
	HypothesisText string `json:"hypothesis_text"`
}

func (s *Server) setTexts(w http.ResponseWriter, r *http.Request) {
	var req setTextsRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	rec, err := s.svc.SetTexts(r.Context(), r.PathValue("id"), req.ReferenceText, req.HypothesisText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type setRangeRequest struct {
	ReferenceStart  optionalIndex `json:"reference_start"`
	ReferenceEnd    optionalIndex `json:"reference_end"`
	HypothesisStart optionalIndex `json:"hypothesis_start"`
	HypothesisEnd   optionalIndex `json:"hypothesis_end"`
}

func (s *Server) setRange(w http.ResponseWriter, r *http.Request) {
	var req setRangeRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	rec, err := s.svc.SetRange(r.Context(), r.PathValue("id"), score.Range{
		ReferenceStart:  req.ReferenceStart.value,
		ReferenceEnd:    req.ReferenceEnd.value,
		HypothesisStart: req.HypothesisStart.value,
		HypothesisEnd:   req.HypothesisEnd.value,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) recompute(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Recompute(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Metrics(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type diffResponse struct {
	Spans []transcript.Span `json:"spans"`
}

func (s *Server) diff(w http.ResponseWriter, r *http.Request) {
	spans, err := s.svc.Diff(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if spans == nil {
		spans = []transcript.Span{}
	}
	writeJSON(w, http.StatusOK, diffResponse{Spans: spans})
}

// uploadAudio transcribes an uploaded recording and imports the result as
// the record's hypothesis.
func (s *Server) uploadAudio(w http.ResponseWriter, r *http.Request) {
	if s.asr == nil {
		notConfigured(w, "asr provider")
		return
	}
	file, header, err := s.audioFile(w, r)
	if err != nil {
		return // response already written
	}
	defer file.Close()

	t, err := s.asr.Transcribe(r.Context(), asr.Request{
		Audio:    file,
		Filename: header.Filename,
		Language: r.FormValue("language"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.ImportTranscription(r.Context(), r.PathValue("id"), t, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// alignAudio force-aligns the record's hypothesis text against an uploaded
// recording, refreshing the per-word timings without re-recognising the
// words.
func (s *Server) alignAudio(w http.ResponseWriter, r *http.Request) {
	if s.asr == nil {
		notConfigured(w, "asr provider")
		return
	}
	rec, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(rec.HypothesisText) == "" {
		badRequest(w, "transcript has no hypothesis text to align")
		return
	}
	file, header, err := s.audioFile(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	t, err := s.asr.Align(r.Context(), asr.Request{
		Audio:    file,
		Filename: header.Filename,
		Language: rec.Language,
		Text:     rec.HypothesisText,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err = s.svc.ImportTranscription(r.Context(), rec.ID, t, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type cleanResponse struct {
	CleanedText string            `json:"cleaned_text"`
	Edits       []cleanerEdit     `json:"edits"`
	Spans       []transcript.Span `json:"spans"`
}

type cleanerEdit struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Reason      string `json:"reason"`
}

// clean runs the LLM cleaning pass over the hypothesis text and returns a
// preview: the cleaned document, the itemised edits, and a line diff. The
// stored record is not touched; accepting the preview is a separate
// [Server.setTexts] call.
func (s *Server) clean(w http.ResponseWriter, r *http.Request) {
	if s.cleaner == nil {
		notConfigured(w, "cleaner")
		return
	}
	rec, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.cleaner.Clean(r.Context(), rec.HypothesisText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := cleanResponse{
		CleanedText: res.CleanedText,
		Edits:       make([]cleanerEdit, 0, len(res.Edits)),
		Spans:       transcript.DiffLines(rec.HypothesisText, res.CleanedText),
	}
	for _, e := range res.Edits {
		resp.Edits = append(resp.Edits, cleanerEdit(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// audioFile extracts the "file" part of a multipart upload. On failure the
// error response has already been written and the returned error is non-nil.
func (s *Server) audioFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequest(w, "parse multipart form: "+err.Error())
		return nil, nil, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, `multipart field "file" is required`)
		return nil, nil, err
	}
	return file, header, nil
}
