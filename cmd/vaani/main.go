// Command vaani is the main entry point for the Vaani voice booking
// assistant server.
package main

import (
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

	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"golang.org/x/sync/errgroup"

	"github.com/vaanilabs/vaani/internal/booking"
	"github.com/vaanilabs/vaani/internal/catalog"
	"github.com/vaanilabs/vaani/internal/config"
	"github.com/vaanilabs/vaani/internal/health"
	"github.com/vaanilabs/vaani/internal/nlu"
	"github.com/vaanilabs/vaani/internal/nlu/llmintent"
	"github.com/vaanilabs/vaani/internal/nlu/translit"
	"github.com/vaanilabs/vaani/internal/observe"
	"github.com/vaanilabs/vaani/internal/ragstore"
	"github.com/vaanilabs/vaani/internal/ragstore/postgres"
	"github.com/vaanilabs/vaani/internal/resilience"
	"github.com/vaanilabs/vaani/internal/server"
	"github.com/vaanilabs/vaani/pkg/provider/embeddings"
	ollamaembed "github.com/vaanilabs/vaani/pkg/provider/embeddings/ollama"
	oaembed "github.com/vaanilabs/vaani/pkg/provider/embeddings/openai"
	"github.com/vaanilabs/vaani/pkg/provider/llm"
	"github.com/vaanilabs/vaani/pkg/provider/llm/anyllm"
	"github.com/vaanilabs/vaani/pkg/provider/stt"
	sttmock "github.com/vaanilabs/vaani/pkg/provider/stt/mock"
	"github.com/vaanilabs/vaani/pkg/provider/stt/sarvam"
	"github.com/vaanilabs/vaani/pkg/provider/stt/whisper"
)

const serviceVersion = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// API keys usually live in a local .env rather than the YAML file.
	_ = godotenv.Load()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "vaani: config file %q not found — copy config.example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "vaani: %v\n", err)
		}
		return 1
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("vaani starting",
		"version", serviceVersion,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "vaani",
		ServiceVersion: serviceVersion,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	srv, cleanup, err := buildServer(ctx, cfg, reg)
	if err != nil {
		slog.Error("failed to assemble server", "err", err)
		return 1
	}
	defer cleanup()

	// ── HTTP server ───────────────────────────────────────────────────────────
	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", cfg.Server.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the provider
// from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("sarvam", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []sarvam.Option
		if entry.BaseURL != "" {
			opts = append(opts, sarvam.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, sarvam.WithModel(entry.Model))
		}
		p, err := sarvam.New(envOr(entry.APIKey, "SARVAM_API_KEY"), opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		p, err := whisper.New(entry.BaseURL, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	// mock returns a canned transcription; useful for demos without speech
	// credentials.
	reg.RegisterSTT("mock", func(entry config.ProviderEntry) (stt.Provider, error) {
		return &sttmock.Provider{
			Text:     optString(entry.Options, "text"),
			Language: optString(entry.Options, "language"),
		}, nil
	})

	// ── LLM ───────────────────────────────────────────────────────────────────
	// The hosted backends share the same pattern: optional APIKey + BaseURL.
	for _, providerName := range []string{
		"openai", "anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			p, err := anyllm.New(providerName, entry.Model, opts...)
			if err != nil {
				return nil, err
			}
			return p, nil
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		p, err := anyllm.NewOllama(entry.Model, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	// ── Embeddings ────────────────────────────────────────────────────────────

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		p, err := oaembed.New(envOr(entry.APIKey, "OPENAI_API_KEY"), entry.Model, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	reg.RegisterEmbeddings("ollama", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []ollamaembed.Option
		if dims := optInt(entry.Options, "dimensions"); dims > 0 {
			opts = append(opts, ollamaembed.WithDimensions(dims))
		}
		p, err := ollamaembed.New(entry.BaseURL, entry.Model, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// buildServer instantiates every configured component and assembles the HTTP
// server around it. The returned cleanup closes anything the server does not
// own, currently the Postgres retrieval store.
func buildServer(ctx context.Context, cfg *config.Config, reg *config.Registry) (*server.Server, func(), error) {
	cleanup := func() {}
	// ── Rule engine data ──────────────────────────────────────────────────────
	cat := catalog.Default()
	if cfg.NLU.StationsFile != "" {
		loaded, err := catalog.Load(cfg.NLU.StationsFile)
		if err != nil {
			return nil, nil, err
		}
		cat = loaded
	}

	var procOpts []nlu.ProcessorOption
	if cfg.NLU.DefaultLanguage != "" {
		lang, err := nlu.ParseLanguage(cfg.NLU.DefaultLanguage)
		if err != nil {
			return nil, nil, err
		}
		procOpts = append(procOpts, nlu.WithDefaultLanguage(lang))
	}
	if cfg.NLU.RulesFile != "" {
		rules, err := nlu.LoadRules(cfg.NLU.RulesFile)
		if err != nil {
			return nil, nil, err
		}
		procOpts = append(procOpts, nlu.WithRules(rules))
	}
	processor := nlu.NewProcessor(cat, procOpts...)
	bookings := booking.NewService()

	var srvOpts []server.Option
	var checkers []health.Checker

	// ── Speech-to-text ────────────────────────────────────────────────────────
	var translitOpts []translit.Option
	if name := cfg.Providers.STT.Name; name != "" {
		primary, err := reg.CreateSTT(cfg.Providers.STT)
		if err != nil {
			return nil, nil, fmt.Errorf("create stt provider %q: %w", name, err)
		}
		slog.Info("provider created", "kind", "stt", "name", name)

		// The Sarvam client doubles as the online transliteration backend.
		if sp, ok := primary.(*sarvam.Provider); ok {
			translitOpts = append(translitOpts, translit.WithService(sarvamTranslit{sp}))
		}

		speech := stt.Provider(primary)
		if fbName := cfg.Providers.STTFallback.Name; fbName != "" {
			fallback, err := reg.CreateSTT(cfg.Providers.STTFallback)
			if err != nil {
				return nil, nil, fmt.Errorf("create stt fallback %q: %w", fbName, err)
			}
			group := resilience.NewSTTFallback(primary, resilience.FallbackConfig{})
			group.AddFallback(fallback)
			speech = group
			slog.Info("provider created", "kind", "stt_fallback", "name", fbName)
		}
		srvOpts = append(srvOpts, server.WithSTT(speech))
	}
	srvOpts = append(srvOpts, server.WithTransliterator(translit.New(translitOpts...)))

	// ── Intent retrieval and LLM recovery ─────────────────────────────────────
	if name := cfg.Providers.LLM.Name; name != "" {
		llmProvider, err := reg.CreateLLM(cfg.Providers.LLM)
		if err != nil {
			return nil, nil, fmt.Errorf("create llm provider %q: %w", name, err)
		}
		slog.Info("provider created", "kind", "llm", "name", name, "model", cfg.Providers.LLM.Model)

		embedder, err := reg.CreateEmbeddings(cfg.Providers.Embeddings)
		if err != nil {
			return nil, nil, fmt.Errorf("create embeddings provider %q: %w", cfg.Providers.Embeddings.Name, err)
		}
		slog.Info("provider created", "kind", "embeddings", "name", cfg.Providers.Embeddings.Name)

		var store ragstore.Store
		if dsn := cfg.Retrieval.PostgresDSN; dsn != "" {
			pg, err := postgres.NewStore(ctx, dsn, cfg.Retrieval.EmbeddingDimensions)
			if err != nil {
				return nil, nil, fmt.Errorf("open retrieval store: %w", err)
			}
			store = pg
			cleanup = pg.Close
			checkers = append(checkers, health.Checker{
				Name: "ragstore",
				Check: func(ctx context.Context) error {
					_, err := pg.Count(ctx)
					return err
				},
			})
		} else {
			store = ragstore.NewMemoryStore()
		}

		var clsOpts []llmintent.Option
		if cfg.Retrieval.TopK > 0 {
			clsOpts = append(clsOpts, llmintent.WithTopK(cfg.Retrieval.TopK))
		}
		classifier, err := llmintent.New(llmProvider, embedder, store, clsOpts...)
		if err != nil {
			return nil, nil, err
		}
		if err := classifier.Seed(ctx); err != nil {
			return nil, nil, fmt.Errorf("seed intent examples: %w", err)
		}
		srvOpts = append(srvOpts, server.WithClassifier(classifier))
	}

	srvOpts = append(srvOpts, server.WithHealth(health.New(checkers...)))
	return server.New(processor, cat, bookings, srvOpts...), cleanup, nil
}

// sarvamTranslit adapts the Sarvam client to the transliteration Service
// interface.
type sarvamTranslit struct {
	p *sarvam.Provider
}

func (s sarvamTranslit) Transliterate(ctx context.Context, text string, lang nlu.Language) (string, error) {
	return s.p.Transliterate(ctx, text, string(lang))
}

// ── Logger ─────────────────────────────────────────────────────────────────────

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

// ── Helpers ───────────────────────────────────────────────────────────────────

// envOr returns value when non-empty, otherwise the named environment
// variable.
func envOr(value, envKey string) string {
	if value != "" {
		return value
	}
	return os.Getenv(envKey)
}

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a
// string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	s, _ := opts[key].(string)
	return s
}

// optInt extracts an integer value from a provider Options map. YAML decodes
// integers as int; anything else yields zero.
func optInt(opts map[string]any, key string) int {
	if opts == nil {
		return 0
	}
	n, _ := opts[key].(int)
	return n
}
