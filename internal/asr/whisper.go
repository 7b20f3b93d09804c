package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Shloimy15e/yiddish-cleaner/internal/observe"
)

const (
	defaultWhisperModel = "large-v2"

	transcribePath = "/transcribe"
	alignPath      = "/align"
)

// WhisperOption is a functional option for configuring a [Whisper] provider.
type WhisperOption func(*Whisper)

// WithWhisperModel sets the model size requested from the server
// ("base", "large-v2", …). Default: "large-v2".
func WithWhisperModel(model string) WhisperOption {
	return func(w *Whisper) {
		w.model = model
	}
}

// WithWhisperHTTPClient overrides the HTTP client. The default client has no
// timeout: transcription of long recordings is bounded by the request
// context instead.
func WithWhisperHTTPClient(c *http.Client) WhisperOption {
	return func(w *Whisper) {
		w.client = c
	}
}

// WithWhisperMetrics sets the metrics instance provider calls are recorded
// on. Default: [observe.DefaultMetrics].
func WithWhisperMetrics(m *observe.Metrics) WhisperOption {
	return func(w *Whisper) {
		w.metrics = m
	}
}

// Whisper is a [Provider] backed by a local whisper server: a small HTTP
// wrapper around Whisper (transcription) and a wav2vec2 forced-alignment
// model. Both endpoints take a multipart upload and answer JSON with
// word-level timings.
type Whisper struct {
	baseURL string
	model   string
	client  *http.Client
	metrics *observe.Metrics
}

// Compile-time interface check.
var _ Provider = (*Whisper)(nil)

// NewWhisper creates a [Whisper] provider for the server at baseURL
// (e.g. "http://localhost:9090"). baseURL must be non-empty.
func NewWhisper(baseURL string, opts ...WhisperOption) (*Whisper, error) {
	if baseURL == "" {
		return nil, errors.New("asr: whisper base URL must not be empty")
	}
	w := &Whisper{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   defaultWhisperModel,
		client:  &http.Client{},
		metrics: observe.DefaultMetrics(),
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// whisperResponse is the JSON envelope both server endpoints answer with.
// Transcription reports per-word "probability", alignment reports
// "confidence"; both mean the same thing here.
type whisperResponse struct {
	Error    string  `json:"error"`
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Words    []struct {
		Word        string   `json:"word"`
		Start       float64  `json:"start"`
		End         float64  `json:"end"`
		Probability *float64 `json:"probability"`
		Confidence  *float64 `json:"confidence"`
	} `json:"words"`
}

// Transcribe implements [Provider].
func (w *Whisper) Transcribe(ctx context.Context, req Request) (Transcription, error) {
	return w.call(ctx, transcribePath, req)
}

// Align implements [Provider]. The server aligns req.Text word by word
// against the audio using its wav2vec2 model for the requested language.
func (w *Whisper) Align(ctx context.Context, req Request) (Transcription, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Transcription{}, errors.New("asr: align: text must not be empty")
	}
	return w.call(ctx, alignPath, req)
}

func (w *Whisper) call(ctx context.Context, path string, req Request) (Transcription, error) {
	start := time.Now()
	t, err := w.post(ctx, path, req)
	w.metrics.ASRDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		w.metrics.RecordProviderError(ctx, "whisper")
		w.metrics.RecordProviderRequest(ctx, "whisper", "error")
		return Transcription{}, err
	}
	w.metrics.RecordProviderRequest(ctx, "whisper", "ok")
	return t, nil
}

func (w *Whisper) post(ctx context.Context, path string, req Request) (Transcription, error) {
	body, contentType, err := w.multipartBody(req)
	if err != nil {
		return Transcription{}, fmt.Errorf("asr: whisper request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+path, body)
	if err != nil {
		return Transcription{}, fmt.Errorf("asr: whisper request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return Transcription{}, fmt.Errorf("asr: whisper %s: %w", path, err)
	}
	defer resp.Body.Close()

	var wr whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return Transcription{}, fmt.Errorf("asr: whisper %s: decode response: %w", path, err)
	}
	if wr.Error != "" {
		return Transcription{}, fmt.Errorf("asr: whisper %s: %s", path, wr.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return Transcription{}, fmt.Errorf("asr: whisper %s: unexpected status %d", path, resp.StatusCode)
	}

	t := Transcription{
		Text:     strings.TrimSpace(wr.Text),
		Language: wr.Language,
		Duration: wr.Duration,
	}
	if t.Text == "" && path == alignPath {
		t.Text = req.Text
	}
	for _, word := range wr.Words {
		conf := word.Confidence
		if conf == nil {
			conf = word.Probability
		}
		t.Words = append(t.Words, WordTiming{
			Word:       strings.TrimSpace(word.Word),
			Start:      word.Start,
			End:        word.End,
			Confidence: conf,
		})
	}
	return t, nil
}

func (w *Whisper) multipartBody(req Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, req.Audio); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("model", w.model); err != nil {
		return nil, "", err
	}
	if req.Language != "" {
		if err := mw.WriteField("language", req.Language); err != nil {
			return nil, "", err
		}
	}
	if req.Text != "" {
		if err := mw.WriteField("text", req.Text); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
