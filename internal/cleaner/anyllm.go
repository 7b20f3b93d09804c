package cleaner

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"
)

// AnyLLM is a [Completer] backed by github.com/mozilla-ai/any-llm-go, a
// unified multi-provider interface. Local Ollama works for offline cleaning;
// hosted providers handle the heavier models.
type AnyLLM struct {
	backend     anyllmlib.Provider
	model       string
	temperature float64
}

// Compile-time interface check.
var _ Completer = (*AnyLLM)(nil)

// AnyLLMOption is a functional option for configuring an [AnyLLM].
type AnyLLMOption func(*AnyLLM)

// WithTemperature sets the sampling temperature. Lower values produce more
// deterministic cleaning. Default: 0.1.
func WithTemperature(t float64) AnyLLMOption {
	return func(a *AnyLLM) {
		a.temperature = t
	}
}

// NewAnyLLM creates an [AnyLLM] for the given provider name and model.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama".
// backendOpts are any-llm-go options (e.g. anyllmlib.WithAPIKey,
// anyllmlib.WithBaseURL); without an API key option the provider falls back
// to its environment variable (OPENAI_API_KEY, ANTHROPIC_API_KEY, …).
func NewAnyLLM(providerName, model string, opts []AnyLLMOption, backendOpts ...anyllmlib.Option) (*AnyLLM, error) {
	if model == "" {
		return nil, fmt.Errorf("cleaner: model must not be empty")
	}
	backend, err := createBackend(providerName, backendOpts...)
	if err != nil {
		return nil, fmt.Errorf("cleaner: create %q backend: %w", providerName, err)
	}

	a := &AnyLLM{
		backend:     backend,
		model:       model,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama", providerName)
	}
}

// Complete implements [Completer].
func (a *AnyLLM) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	temp := a.temperature
	params := anyllmlib.CompletionParams{
		Model: a.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: systemPrompt},
			{Role: anyllmlib.RoleUser, Content: userMessage},
		},
		Temperature: &temp,
	}

	resp, err := a.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("cleaner: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("cleaner: empty choices in response")
	}
	return resp.Choices[0].Message.ContentString(), nil
}
