package config_test

import (
	"strings"
	"testing"

	"github.com/Shloimy15e/yiddish-cleaner/internal/config"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: info
storage:
  postgres_dsn: "postgres://localhost:5432/transcripts"
asr:
  provider: whisper
  base_url: "http://localhost:9090"
  model: large-v2
  language: yi
cleaner:
  provider: ollama
  model: llama3.1
  temperature: 0.2
review:
  max_tokens: 50000
suggest:
  lexicon_path: lexicon.txt
  phonetic_threshold: 0.70
  fuzzy_threshold: 0.85
  limit: 5
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("LogLevel = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.ASR.Provider != config.ASRWhisper || cfg.ASR.Model != "large-v2" {
		t.Errorf("ASR = %+v, want whisper/large-v2", cfg.ASR)
	}
	if cfg.Cleaner.Provider != config.CleanerOllama || cfg.Cleaner.Temperature != 0.2 {
		t.Errorf("Cleaner = %+v, want ollama with temperature 0.2", cfg.Cleaner)
	}
	if cfg.Review.MaxTokens != 50000 {
		t.Errorf("MaxTokens = %d, want 50000", cfg.Review.MaxTokens)
	}
	if cfg.Suggest.Limit != 5 {
		t.Errorf("Suggest.Limit = %d, want 5", cfg.Suggest.Limit)
	}
}

func TestLoadFromReader_MinimalConfig(t *testing.T) {
	t.Parallel()

	// Everything optional: an empty document is a valid in-memory,
	// no-subsystems setup.
	cfg, err := config.LoadFromReader(strings.NewReader(`server: {listen_addr: ":9000"}`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Storage.PostgresDSN != "" {
		t.Errorf("PostgresDSN = %q, want empty", cfg.Storage.PostgresDSN)
	}
	if cfg.ASR.Provider != "" {
		t.Errorf("ASR.Provider = %q, want empty", cfg.ASR.Provider)
	}
}

func TestLoadFromReader_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
server:
  listen_addr: ":8080"
  banana: true
`))
	if err == nil {
		t.Fatal("LoadFromReader accepted an unknown field")
	}
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name:    "bad log level",
			yaml:    "server: {log_level: loud}",
			wantMsg: "server.log_level",
		},
		{
			name:    "tls missing key file",
			yaml:    "server: {tls: {cert_file: cert.pem}}",
			wantMsg: "server.tls",
		},
		{
			name:    "unknown asr provider",
			yaml:    "asr: {provider: deepgram}",
			wantMsg: "asr.provider",
		},
		{
			name:    "whisper without base url",
			yaml:    "asr: {provider: whisper}",
			wantMsg: "asr.base_url",
		},
		{
			name:    "openai asr without key",
			yaml:    "asr: {provider: openai}",
			wantMsg: "asr.api_key",
		},
		{
			name:    "unknown cleaner provider",
			yaml:    "cleaner: {provider: bedrock, model: x}",
			wantMsg: "cleaner.provider",
		},
		{
			name:    "cleaner without model",
			yaml:    "cleaner: {provider: ollama}",
			wantMsg: "cleaner.model",
		},
		{
			name:    "cleaner temperature out of range",
			yaml:    "cleaner: {provider: ollama, model: llama3.1, temperature: 3.5}",
			wantMsg: "cleaner.temperature",
		},
		{
			name:    "negative max tokens",
			yaml:    "review: {max_tokens: -1}",
			wantMsg: "review.max_tokens",
		},
		{
			name:    "phonetic threshold out of range",
			yaml:    "suggest: {phonetic_threshold: 1.5}",
			wantMsg: "suggest.phonetic_threshold",
		},
		{
			name:    "fuzzy threshold out of range",
			yaml:    "suggest: {fuzzy_threshold: -0.1}",
			wantMsg: "suggest.fuzzy_threshold",
		},
		{
			name:    "negative suggest limit",
			yaml:    "suggest: {limit: -2}",
			wantMsg: "suggest.limit",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			if err == nil {
				t.Fatalf("LoadFromReader accepted invalid config:\n%s", tc.yaml)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error = %v, want mention of %q", err, tc.wantMsg)
			}
		})
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
server: {log_level: loud}
review: {max_tokens: -1}
`))
	if err == nil {
		t.Fatal("LoadFromReader accepted invalid config")
	}
	for _, want := range []string{"server.log_level", "review.max_tokens"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error missing %q: %v", want, err)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := config.Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("Load of a missing file returned nil error")
	}
}
