package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if tls := cfg.Server.TLS; tls != nil {
		if tls.CertFile == "" || tls.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Storage
	if cfg.Storage.PostgresDSN == "" {
		slog.Warn("storage.postgres_dsn is empty; using in-memory stores, data is lost on restart")
	}

	// ASR
	if cfg.ASR.Provider != "" {
		if !cfg.ASR.Provider.IsValid() {
			errs = append(errs, fmt.Errorf("asr.provider %q is invalid; valid values: whisper, openai", cfg.ASR.Provider))
		}
		if cfg.ASR.Provider == ASRWhisper && cfg.ASR.BaseURL == "" {
			errs = append(errs, errors.New("asr.base_url is required when asr.provider is whisper"))
		}
		if cfg.ASR.Provider == ASROpenAI && cfg.ASR.APIKey == "" {
			errs = append(errs, errors.New("asr.api_key is required when asr.provider is openai"))
		}
	}

	// Cleaner
	if cfg.Cleaner.Provider != "" {
		if !cfg.Cleaner.Provider.IsValid() {
			errs = append(errs, fmt.Errorf("cleaner.provider %q is invalid; valid values: openai, anthropic, gemini, ollama", cfg.Cleaner.Provider))
		}
		if cfg.Cleaner.Model == "" {
			errs = append(errs, errors.New("cleaner.model is required when cleaner.provider is set"))
		}
		if cfg.Cleaner.Temperature < 0 || cfg.Cleaner.Temperature > 2 {
			errs = append(errs, fmt.Errorf("cleaner.temperature %.2f is out of range [0, 2]", cfg.Cleaner.Temperature))
		}
	}

	// Review
	if cfg.Review.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("review.max_tokens %d must not be negative", cfg.Review.MaxTokens))
	}

	// Suggest
	if t := cfg.Suggest.PhoneticThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("suggest.phonetic_threshold %.2f is out of range [0, 1]", t))
	}
	if t := cfg.Suggest.FuzzyThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("suggest.fuzzy_threshold %.2f is out of range [0, 1]", t))
	}
	if cfg.Suggest.Limit < 0 {
		errs = append(errs, fmt.Errorf("suggest.limit %d must not be negative", cfg.Suggest.Limit))
	}

	return errors.Join(errs...)
}
