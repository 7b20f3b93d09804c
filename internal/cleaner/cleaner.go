// Package cleaner implements a language-model cleaning pass over a whole
// transcript document.
//
// ASR output for Yiddish tends to carry systematic artifacts: YIVO vs.
// traditional spelling drift, Hebrew-alphabet homophone swaps, loshn-koydesh
// words rendered phonetically, and stray punctuation. The [Cleaner] sends the
// document to an LLM with a conservative system prompt and expects a
// structured JSON response containing the cleaned text and an itemised list
// of edits.
//
// Cleaning never mutates a stored transcript directly: callers diff the
// cleaned text against the original and let a reviewer accept or reject it.
// When the LLM response cannot be parsed, the cleaner returns the original
// text unchanged rather than surfacing an error.
package cleaner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Shloimy15e/yiddish-cleaner/internal/observe"
)

const defaultTemperature = 0.1

// systemPromptTemplate is the base system prompt. The language name is
// interpolated at call time.
const systemPromptTemplate = `You are a transcript cleaning assistant for %s texts.

Your task: fix transcription artifacts in the provided document.

Rules:
- ONLY fix clear transcription errors: misspellings, wrong homophones, broken words, stray punctuation.
- Do NOT rephrase, translate, summarise, or reorder anything.
- Do NOT change dialect, spelling convention, or wording that is merely unusual.
- Be conservative: when in doubt, leave the text unchanged.
- Preserve line breaks exactly.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "cleaned_text": "<full cleaned document>",
  "edits": [
    {"original": "<original fragment>", "replacement": "<replacement>", "reason": "<short reason>"}
  ]
}

If nothing needs fixing, return an empty edits array and cleaned_text equal to the input.`

// Edit captures a single fragment-level fix produced by the LLM.
type Edit struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Reason      string `json:"reason"`
}

// Result is the outcome of a cleaning pass.
type Result struct {
	// CleanedText is the full cleaned document. Equal to the input when the
	// model found nothing to fix or its response was unusable.
	CleanedText string `json:"cleaned_text"`

	// Edits itemises every fix in the cleaned text. Empty when CleanedText
	// equals the input.
	Edits []Edit `json:"edits"`
}

// llmResponse is the expected JSON structure returned by the model.
type llmResponse struct {
	CleanedText string `json:"cleaned_text"`
	Edits       []Edit `json:"edits"`
}

// Completer is the single-call seam to a language model. Satisfied by
// [*AnyLLM]; tests provide fakes.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Option is a functional option for configuring a [Cleaner].
type Option func(*Cleaner)

// WithLanguageName sets the human-readable language name used in the system
// prompt. Default: "Yiddish".
func WithLanguageName(name string) Option {
	return func(c *Cleaner) {
		c.language = name
	}
}

// WithMetrics sets the metrics instance cleaning calls are recorded on.
// Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Cleaner) {
		c.metrics = m
	}
}

// Cleaner runs the LLM cleaning pass. Safe for concurrent use.
type Cleaner struct {
	llm      Completer
	language string
	metrics  *observe.Metrics
}

// New returns a [Cleaner] backed by the given [Completer].
func New(llm Completer, opts ...Option) *Cleaner {
	c := &Cleaner{
		llm:      llm,
		language: "Yiddish",
		metrics:  observe.DefaultMetrics(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Clean sends text to the model and returns the cleaned document with its
// edit list.
//
// When the model response is unparseable, Clean returns the original text
// unchanged with a nil edit list and a nil error: a flaky model must never
// block the review flow. Context cancellation and transport errors are
// returned as non-nil errors.
func (c *Cleaner) Clean(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{CleanedText: text}, nil
	}

	start := time.Now()
	content, err := c.llm.Complete(ctx, fmt.Sprintf(systemPromptTemplate, c.language), text)
	c.metrics.CleanDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordProviderError(ctx, "cleaner")
		return Result{}, fmt.Errorf("cleaner: complete: %w", err)
	}

	var r llmResponse
	if err := json.Unmarshal([]byte(stripMarkdown(content)), &r); err != nil || r.CleanedText == "" {
		// Unusable response: degrade to the original, no error.
		return Result{CleanedText: text}, nil
	}

	edits := make([]Edit, 0, len(r.Edits))
	for _, e := range r.Edits {
		if e.Original == "" || e.Original == e.Replacement {
			continue
		}
		edits = append(edits, e)
	}
	return Result{CleanedText: r.CleanedText, Edits: edits}, nil
}

// stripMarkdown removes optional markdown code fences (```json ... ```) that
// some models wrap around JSON output.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
