package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/midiaz/brandscope/internal/adapters/http/api"
	"github.com/midiaz/brandscope/internal/adapters/http/swagger"
	"github.com/midiaz/brandscope/internal/adapters/llm"
	"github.com/midiaz/brandscope/internal/adapters/store"
	app "github.com/midiaz/brandscope/internal/app"
	"github.com/midiaz/brandscope/internal/config"
	"github.com/midiaz/brandscope/internal/reports"
	"github.com/midiaz/brandscope/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 120 * time.Second // report generation waits on the LLM
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Local development convenience; a missing .env file is not an error.
	_ = godotenv.Load()

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Record fetcher against the remote store.
	fetcher := store.NewClient(cfg.StoreURL, cfg.StoreAPIKey,
		store.WithTimeout(time.Duration(cfg.StoreTimeoutSeconds)*time.Second),
	)

	// Prompt templates are required even when generation is disabled, so a
	// broken deploy surfaces at boot rather than on the first report request.
	prompts, err := reports.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		os.Stderr.WriteString("failed to load prompts: " + err.Error() + "\n")
		return
	}

	// Narrative generation is optional; without an API key the report
	// endpoints answer 503 while everything else keeps working.
	var reportSvc *reports.Service
	if cfg.OpenAIAPIKey != "" {
		generator, err := llm.NewClient(cfg.OpenAIAPIKey,
			llm.WithBaseURL(cfg.OpenAIBaseURL),
			llm.WithModel(cfg.OpenAIModel),
			llm.WithMaxTokens(cfg.OpenAIMaxTokens),
		)
		if err != nil {
			os.Stderr.WriteString("failed to create llm client: " + err.Error() + "\n")
			return
		}
		reportSvc = reports.New(fetcher, generator, prompts,
			reports.WithEventLimit(cfg.EventPageSize),
			reports.WithPersonLimit(cfg.PersonPageSize),
			reports.WithItemLimit(cfg.ItemPageSize),
		)
		log.Info(ctx, "report generation enabled", logger.String("model", cfg.OpenAIModel))
	} else {
		log.Warn(ctx, "report generation disabled: no completion API key configured")
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithFetcher(fetcher),
		app.WithReports(reportSvc, cfg.OpenAIModel),
		app.WithEventPageSize(cfg.EventPageSize),
		app.WithPersonPageSize(cfg.PersonPageSize),
		app.WithItemPageSize(cfg.ItemPageSize),
		app.WithMaxListLimit(cfg.MaxListLimit),
	)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.CORS(mux),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
