package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/seoscore/analyzer"
	"github.com/seo-optimizer/seoscore/api"
	"github.com/seo-optimizer/seoscore/logging"
	"github.com/seo-optimizer/seoscore/middleware"
	"github.com/seo-optimizer/seoscore/stats"
)

// retainMonths is how many calendar months of counters survive startup cleanup.
const retainMonths = 2

var flagPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&flagPort, "port", 0, "Listen port (overrides SEO_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = flagPort
	}

	slog.Info("seoscore starting",
		"version", Version,
		"addr", cfg.Addr(),
		"mode", cfg.Server.Mode,
		"render", cfg.Render.Enabled,
		"tls_fingerprint", cfg.Fetch.Fingerprint,
	)

	// ── Statistics ──────────────────────────────────────────────────
	storage, err := stats.NewStorage(cfg.Stats.DataDir)
	if err != nil {
		return fmt.Errorf("init statistics storage: %w", err)
	}
	storage.Cleanup(retainMonths)
	requests := logging.NewStatistics(filepath.Join(cfg.Stats.DataDir, "requests.json"))

	// ── Router ──────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go limiter.Run(ctx)

	router := api.NewRouter(api.Deps{
		Analyzer: newAnalyzer(cfg, analyzer.WithObserver(storage)),
		Stats:    requests,
		Monthly:  storage,
		Limiter:  limiter,
		Mode:     cfg.Server.Mode,
		DevMode:  cfg.Server.DevMode,
		Version:  Version,
	})

	// ── HTTP server ─────────────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			_ = storage.Shutdown()
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// ── Graceful shutdown ───────────────────────────────────────────
	// An analysis can take a static timeout plus a render timeout.
	grace := cfg.Fetch.Timeout + cfg.Render.NavigationTimeout + 5*time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	if err := storage.Shutdown(); err != nil {
		slog.Error("failed to persist monthly statistics", "error", err)
	}
	if err := requests.Save(); err != nil {
		slog.Error("failed to persist request statistics", "error", err)
	}

	slog.Info("seoscore stopped")
	return nil
}
