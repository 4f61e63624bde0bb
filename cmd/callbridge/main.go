// Command callbridge runs the voice-agent dispatch service: health and
// metrics endpoints for the session framework, and optionally the function
// catalog as an MCP server on stdio.
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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/novanode-ai/callbridge/internal/analytics"
	"github.com/novanode-ai/callbridge/internal/assistant"
	"github.com/novanode-ai/callbridge/internal/bridge"
	"github.com/novanode-ai/callbridge/internal/config"
	"github.com/novanode-ai/callbridge/internal/factory"
	"github.com/novanode-ai/callbridge/internal/health"
	"github.com/novanode-ai/callbridge/internal/mcpserver"
	"github.com/novanode-ai/callbridge/internal/observe"
	"github.com/novanode-ai/callbridge/internal/profile"
)

// version is stamped via -ldflags at release time.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file (optional; env vars always apply)")
	mcpStdio := flag.Bool("mcp-stdio", false, "serve the function catalog as an MCP server on stdin/stdout")
	validate := flag.Bool("validate", false, "resolve the agent profile and build providers, then exit")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "callbridge: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// The level lives in a LevelVar so the config watcher can adjust it on a
	// running service.
	logLevel := new(slog.LevelVar)
	logLevel.Set(cfg.Server.LogLevel.Level())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("callbridge starting",
		"version", version,
		"config", *configPath,
		"backend", cfg.Backend.BaseURL,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Required credentials ──────────────────────────────────────────────────
	if cfg.Credentials.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required; it backs the default provider for every capability")
		return 1
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.SetupTelemetry(ctx, observe.TelemetryConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Dispatch bridge ───────────────────────────────────────────────────────
	client, err := bridge.NewClient(cfg.Backend.BaseURL)
	if err != nil {
		slog.Error("failed to create backend client", "err", err)
		return 1
	}
	dispatcher := bridge.New(client, logger, bridge.WithMetrics(metrics))

	// ── Profile store ─────────────────────────────────────────────────────────
	sources, cleanup := buildProfileSources(ctx, cfg, logger)
	defer cleanup()
	store := profile.NewStore(logger, sources...)

	// ── Provider factory ──────────────────────────────────────────────────────
	providers, err := factory.New(factory.Credentials{
		OpenAIAPIKey:     cfg.Credentials.OpenAIAPIKey,
		ElevenLabsAPIKey: cfg.Credentials.ElevenLabsAPIKey,
		DeepgramAPIKey:   cfg.Credentials.DeepgramAPIKey,
		SileroModelPath:  cfg.Credentials.SileroModelPath,
	}, logger)
	if err != nil {
		slog.Error("failed to create provider factory", "err", err)
		return 1
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg, store.ListNames(ctx))

	if *validate {
		return runValidate(ctx, cfg, store, providers, logger)
	}

	// ── Config watcher ────────────────────────────────────────────────────────
	// Log level changes apply live; anything else is reported as needing a
	// restart. A missing config file just means nothing to watch.
	watcher, err := config.NewWatcher(*configPath, func(diff config.ConfigDiff, _ *config.Config) {
		diff.HotApply(logLevel, logger)
	}, config.WithLogger(logger))
	if err != nil {
		logger.Warn("config file not watched, runtime changes will be ignored",
			"path", *configPath, "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Servers ───────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	mux := http.NewServeMux()
	health.New(health.Endpoint("backend", cfg.Backend.BaseURL)).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		slog.Info("health and metrics server listening", "addr", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if *mcpStdio {
		mcpSrv, err := mcpserver.New(dispatcher, logger)
		if err != nil {
			slog.Error("failed to create MCP server", "err", err)
			return 1
		}
		g.Go(func() error {
			if err := mcpSrv.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Profile source wiring ─────────────────────────────────────────────────────

// buildProfileSources assembles the profile source cascade from config:
// remote → postgres → file. A source that cannot be constructed is skipped
// with a warning; the store's built-in default always remains.
func buildProfileSources(ctx context.Context, cfg *config.Config, log *slog.Logger) (sources []profile.Source, cleanup func()) {
	cleanup = func() {}

	if cfg.Profiles.UseRemote {
		src, err := profile.NewRemoteSource(cfg.Backend.BaseURL)
		if err != nil {
			log.Warn("remote profile source unavailable", "err", err)
		} else {
			sources = append(sources, src)
			log.Info("profile source enabled", "source", "remote", "base_url", cfg.Backend.BaseURL)
		}
	}

	if dsn := cfg.Profiles.PostgresDSN; dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			log.Warn("postgres profile source unavailable", "err", err)
		} else {
			src := profile.NewPostgresSource(pool)
			if err := src.Migrate(ctx); err != nil {
				log.Warn("postgres profile migration failed", "err", err)
			}
			sources = append(sources, src)
			cleanup = pool.Close
			log.Info("profile source enabled", "source", "postgres")
		}
	}

	if path := cfg.Profiles.File; path != "" {
		src, err := profile.NewFileSource(path)
		if err != nil {
			log.Warn("file profile source unavailable", "path", path, "err", err)
		} else {
			sources = append(sources, src)
			log.Info("profile source enabled", "source", "file", "path", path)
		}
	}

	return sources, cleanup
}

// ── Validate mode ─────────────────────────────────────────────────────────────

// runValidate resolves the configured agent profile and builds every provider
// once, reporting what a real session would get. Useful as a deploy preflight.
func runValidate(ctx context.Context, cfg *config.Config, store *profile.Store, providers *factory.Factory, log *slog.Logger) int {
	var opts []assistant.Option
	if cfg.Agent.Name != "" {
		opts = append(opts, assistant.WithProfileName(cfg.Agent.Name))
	}
	if cfg.Agent.Mode != "" {
		opts = append(opts, assistant.WithModeOverride(cfg.Agent.Mode))
	}
	a := assistant.New(store, analytics.NewReporter(cfg.Backend.BaseURL, log), log, opts...)

	if err := a.Configure(ctx); err != nil {
		slog.Error("profile resolution failed", "err", err)
		return 1
	}
	p := a.Profile()

	tts := providers.BuildTTS(p)
	stt := providers.BuildSTT(p)
	llm := providers.BuildLLM(p)
	vad := providers.BuildVAD(p)

	slog.Info("validation passed",
		"agent", p.Name,
		"mode", a.Mode(),
		"tools", len(a.ToolDefinitions()),
		"tts", fmt.Sprintf("%T", tts),
		"stt", fmt.Sprintf("%T", stt),
		"llm", fmt.Sprintf("%T", llm),
		"vad", fmt.Sprintf("%T", vad),
	)
	return 0
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, agents []string) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        callbridge — startup summary   ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printRow("Backend", cfg.Backend.BaseURL)
	printRow("Agent", orDefault(cfg.Agent.Name, "(default)"))
	printRow("Mode", orDefault(cfg.Agent.Mode, "(from profile)"))
	printRow("ElevenLabs", gated(cfg.Credentials.ElevenLabsAPIKey))
	printRow("Deepgram", gated(cfg.Credentials.DeepgramAPIKey))
	printRow("Silero VAD", gated(cfg.Credentials.SileroModelPath))
	fmt.Printf("║  Agent profiles  : %-19d ║\n", len(agents))
	printRow("Listen addr", cfg.Server.ListenAddr)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printRow(label, value string) {
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-14s  : %-19s ║\n", label, value)
}

func gated(credential string) string {
	if credential == "" {
		return "(disabled)"
	}
	return "enabled"
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
