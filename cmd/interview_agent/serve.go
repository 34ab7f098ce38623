package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/interview-prep/internal/config"
	"github.com/jonathan/interview-prep/internal/jobstore"
	"github.com/jonathan/interview-prep/internal/pipeline"
	"github.com/jonathan/interview-prep/internal/responses"
	"github.com/jonathan/interview-prep/internal/server"
	"github.com/jonathan/interview-prep/internal/server/ratelimit"
	"github.com/jonathan/interview-prep/internal/stages"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// shutdownGrace is how long running jobs get to finish after a stop signal.
const shutdownGrace = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that accepts résumé uploads, runs preparation jobs in the
background, and serves job status, history, saved answers and grading.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("db-url", "", "PostgreSQL connection URL (in-memory storage when empty)")
	serveCmd.Flags().Bool("use-browser", false, "Render script-heavy pages in headless Chrome")
	serveCmd.Flags().Bool("log-json", false, "Write logs as JSON")
	serveCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"port":         "port",
		"database_url": "db-url",
		"use_browser":  "use-browser",
		"log_json":     "log-json",
		"log_level":    "log-level",
	})
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	caller, closeCaller, err := newCaller(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCaller()

	orch := pipeline.NewOrchestrator(
		stages.Deps{Caller: caller, Pages: newFetcher(cfg, log), Log: log},
		st.jobs,
		pipeline.WithLogger(log),
	)
	runner := pipeline.NewRunner(orch, st.jobs, log)

	var jwtService *server.JWTService
	if cfg.JWTSecret != "" {
		jwtConfig, err := cfg.JWT()
		if err != nil {
			return err
		}
		jwtService = server.NewJWTService(jwtConfig)
	} else {
		log.Warnw("JWT_SECRET not set, all requests are anonymous")
	}

	srv := server.New(server.Config{
		Port:           cfg.Port,
		MaxUploadBytes: cfg.MaxUploadBytes,
		HistoryLimit:   cfg.HistoryLimit,
		RateLimit:      ratelimit.NewConfig(cfg.RateLimit),
		JWT:            jwtService,
	}, server.Deps{
		Store:     st.jobs,
		Runner:    runner,
		Responses: responses.NewService(st.responses, st.jobs, caller, log),
		Log:       log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		sweepLoop(gctx, st.jobs, cfg, log)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := runner.Shutdown(shutdownCtx); err != nil {
			log.Warnw("Jobs cancelled before finishing", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// sweepLoop periodically deletes expired artifacts and evicts finished in-memory jobs.
func sweepLoop(ctx context.Context, store *jobstore.Store, cfg *config.Config, log *zap.SugaredLogger) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce(ctx, store, cfg.InflightRetention, log)
		}
	}
}

func sweepOnce(ctx context.Context, store *jobstore.Store, retention time.Duration, log *zap.SugaredLogger) {
	deleted, err := store.SweepExpired(ctx)
	if err != nil {
		log.Warnw("Artifact sweep failed", "error", err)
	}
	evicted := store.EvictFinished(retention)
	if deleted > 0 || evicted > 0 {
		log.Infow("Sweep finished", "artifacts_deleted", deleted, "jobs_evicted", evicted)
	}
}
