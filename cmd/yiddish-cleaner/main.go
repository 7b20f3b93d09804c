// Command yiddish-cleaner is the transcript review and error-metric server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Shloimy15e/yiddish-cleaner/internal/api"
	"github.com/Shloimy15e/yiddish-cleaner/internal/asr"
	"github.com/Shloimy15e/yiddish-cleaner/internal/cleaner"
	"github.com/Shloimy15e/yiddish-cleaner/internal/config"
	"github.com/Shloimy15e/yiddish-cleaner/internal/health"
	"github.com/Shloimy15e/yiddish-cleaner/internal/observe"
	"github.com/Shloimy15e/yiddish-cleaner/internal/review"
	"github.com/Shloimy15e/yiddish-cleaner/internal/suggest"
	"github.com/Shloimy15e/yiddish-cleaner/internal/transcript"
)

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "yiddish-cleaner: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "yiddish-cleaner: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("yiddish-cleaner starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otelShutdown(sctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Storage ───────────────────────────────────────────────────────────────
	var (
		transcripts transcript.Store
		reviews     review.Store
		pool        *pgxpool.Pool
	)
	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			slog.Error("failed to create connection pool", "err", err)
			return 1
		}
		defer pool.Close()

		tstore := transcript.NewPostgresStore(pool)
		rstore := review.NewPostgresStore(pool)
		if err := tstore.Migrate(ctx); err != nil {
			slog.Error("migration failed", "err", err)
			return 1
		}
		if err := rstore.Migrate(ctx); err != nil {
			slog.Error("migration failed", "err", err)
			return 1
		}
		transcripts, reviews = tstore, rstore
		slog.Info("storage ready", "backend", "postgres")
	} else {
		transcripts, reviews = transcript.NewMemStore(), review.NewMemStore()
		slog.Info("storage ready", "backend", "memory")
	}

	// ── Service ───────────────────────────────────────────────────────────────
	var svcOpts []transcript.ServiceOption
	if cfg.Review.MaxTokens > 0 {
		svcOpts = append(svcOpts, transcript.WithMaxTokens(cfg.Review.MaxTokens))
	}
	svc := transcript.NewService(transcripts, reviews, svcOpts...)

	// ── Optional subsystems ───────────────────────────────────────────────────
	apiOpts, err := buildOptionalSubsystems(cfg)
	if err != nil {
		slog.Error("failed to build subsystems", "err", err)
		return 1
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	api.NewServer(svc, apiOpts...).Register(mux)

	var checkers []health.Checker
	if pool != nil {
		checkers = append(checkers, health.Database(pool))
	}
	health.New(checkers...).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: observe.Middleware(observe.DefaultMetrics())(mux),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", addr)
		var serveErr error
		if tls := cfg.Server.TLS; tls != nil {
			serveErr = srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			serveErr = srv.ListenAndServe()
		}
		if errors.Is(serveErr, http.ErrServerClosed) {
			return nil
		}
		return serveErr
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildOptionalSubsystems constructs the ASR provider, cleaner, and
// suggestion ranker named in cfg. Unconfigured subsystems are simply absent;
// their endpoints answer 501.
func buildOptionalSubsystems(cfg *config.Config) ([]api.Option, error) {
	var opts []api.Option

	// ── ASR ───────────────────────────────────────────────────────────────────
	switch cfg.ASR.Provider {
	case config.ASRWhisper:
		var wopts []asr.WhisperOption
		if cfg.ASR.Model != "" {
			wopts = append(wopts, asr.WithWhisperModel(cfg.ASR.Model))
		}
		p, err := asr.NewWhisper(cfg.ASR.BaseURL, wopts...)
		if err != nil {
			return nil, fmt.Errorf("create whisper provider: %w", err)
		}
		opts = append(opts, api.WithASR(p))
		slog.Info("asr provider created", "name", "whisper", "base_url", cfg.ASR.BaseURL)
	case config.ASROpenAI:
		var oopts []asr.OpenAIOption
		if cfg.ASR.Model != "" {
			oopts = append(oopts, asr.WithOpenAIModel(cfg.ASR.Model))
		}
		if cfg.ASR.BaseURL != "" {
			oopts = append(oopts, asr.WithOpenAIBaseURL(cfg.ASR.BaseURL))
		}
		p, err := asr.NewOpenAI(cfg.ASR.APIKey, oopts...)
		if err != nil {
			return nil, fmt.Errorf("create openai asr provider: %w", err)
		}
		opts = append(opts, api.WithASR(p))
		slog.Info("asr provider created", "name", "openai", "model", cfg.ASR.Model)
	}

	// ── Cleaner ───────────────────────────────────────────────────────────────
	if cfg.Cleaner.Provider != "" {
		var backendOpts []anyllmlib.Option
		if cfg.Cleaner.APIKey != "" {
			backendOpts = append(backendOpts, anyllmlib.WithAPIKey(cfg.Cleaner.APIKey))
		}
		if cfg.Cleaner.BaseURL != "" {
			backendOpts = append(backendOpts, anyllmlib.WithBaseURL(cfg.Cleaner.BaseURL))
		}
		var llmOpts []cleaner.AnyLLMOption
		if cfg.Cleaner.Temperature > 0 {
			llmOpts = append(llmOpts, cleaner.WithTemperature(cfg.Cleaner.Temperature))
		}
		llm, err := cleaner.NewAnyLLM(string(cfg.Cleaner.Provider), cfg.Cleaner.Model, llmOpts, backendOpts...)
		if err != nil {
			return nil, fmt.Errorf("create cleaner backend: %w", err)
		}
		var copts []cleaner.Option
		if cfg.Cleaner.LanguageName != "" {
			copts = append(copts, cleaner.WithLanguageName(cfg.Cleaner.LanguageName))
		}
		opts = append(opts, api.WithCleaner(cleaner.New(llm, copts...)))
		slog.Info("cleaner created", "provider", cfg.Cleaner.Provider, "model", cfg.Cleaner.Model)
	}

	// ── Suggestions ───────────────────────────────────────────────────────────
	if cfg.Suggest.LexiconPath != "" {
		lexicon, err := loadLexicon(cfg.Suggest.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		var sopts []suggest.Option
		if cfg.Suggest.PhoneticThreshold > 0 {
			sopts = append(sopts, suggest.WithPhoneticThreshold(cfg.Suggest.PhoneticThreshold))
		}
		if cfg.Suggest.FuzzyThreshold > 0 {
			sopts = append(sopts, suggest.WithFuzzyThreshold(cfg.Suggest.FuzzyThreshold))
		}
		if cfg.Suggest.Limit > 0 {
			sopts = append(sopts, suggest.WithLimit(cfg.Suggest.Limit))
		}
		opts = append(opts, api.WithRanker(suggest.New(lexicon, sopts...)))
		slog.Info("suggestion ranker created", "lexicon", cfg.Suggest.LexiconPath, "entries", len(lexicon))
	}

	return opts, nil
}

// loadLexicon reads one canonical spelling per line, skipping blanks and
// '#' comments.
func loadLexicon(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
