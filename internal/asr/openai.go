package asr

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/Shloimy15e/yiddish-cleaner/internal/observe"
)

// OpenAIOption is a functional option for configuring an [OpenAI] provider.
type OpenAIOption func(*OpenAI)

// WithOpenAIModel sets the transcription model. Default:
// [oai.AudioModelWhisper1], the only hosted model that returns word
// timestamps.
func WithOpenAIModel(model string) OpenAIOption {
	return func(p *OpenAI) {
		p.model = model
	}
}

// WithOpenAIBaseURL overrides the API base URL, for OpenAI-compatible
// gateways.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(p *OpenAI) {
		p.baseURL = url
	}
}

// WithOpenAIMetrics sets the metrics instance provider calls are recorded
// on. Default: [observe.DefaultMetrics].
func WithOpenAIMetrics(m *observe.Metrics) OpenAIOption {
	return func(p *OpenAI) {
		p.metrics = m
	}
}

// OpenAI is a [Provider] backed by the hosted OpenAI transcription API.
// It requests verbose JSON with word-level timestamps. Forced alignment is
// not available on the hosted API.
type OpenAI struct {
	client  oai.Client
	model   string
	baseURL string
	metrics *observe.Metrics
}

// Compile-time interface check.
var _ Provider = (*OpenAI)(nil)

// NewOpenAI creates an [OpenAI] provider. apiKey must be non-empty.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("asr: openai api key must not be empty")
	}
	p := &OpenAI{
		model:   string(oai.AudioModelWhisper1),
		metrics: observe.DefaultMetrics(),
	}
	for _, o := range opts {
		o(p)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if p.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(p.baseURL))
	}
	p.client = oai.NewClient(reqOpts...)
	return p, nil
}

// Transcribe implements [Provider].
func (p *OpenAI) Transcribe(ctx context.Context, req Request) (Transcription, error) {
	contentType := mime.TypeByExtension(filepath.Ext(req.Filename))

	params := oai.AudioTranscriptionNewParams{
		File:                   oai.File(req.Audio, req.Filename, contentType),
		Model:                  oai.AudioModel(p.model),
		ResponseFormat:         oai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word"},
	}
	if req.Language != "" {
		params.Language = param.NewOpt(req.Language)
	}

	// The typed response only carries the plain text; the verbose body with
	// word timestamps is decoded separately.
	var verbose oai.TranscriptionVerbose
	start := time.Now()
	_, err := p.client.Audio.Transcriptions.New(ctx, params, option.WithResponseBodyInto(&verbose))
	p.metrics.ASRDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		p.metrics.RecordProviderError(ctx, "openai")
		p.metrics.RecordProviderRequest(ctx, "openai", "error")
		return Transcription{}, fmt.Errorf("asr: openai transcribe: %w", err)
	}
	p.metrics.RecordProviderRequest(ctx, "openai", "ok")

	t := Transcription{
		Text:     verbose.Text,
		Language: verbose.Language,
		Duration: verbose.Duration,
	}
	for _, w := range verbose.Words {
		t.Words = append(t.Words, WordTiming{
			Word:  w.Word,
			Start: w.Start,
			End:   w.End,
		})
	}
	return t, nil
}

// Align implements [Provider]. The hosted API has no forced-alignment
// endpoint, so this always returns [ErrNotSupported].
func (p *OpenAI) Align(context.Context, Request) (Transcription, error) {
	return Transcription{}, fmt.Errorf("asr: openai: forced alignment: %w", ErrNotSupported)
}
