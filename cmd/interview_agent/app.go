package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/interview-prep/internal/config"
	"github.com/jonathan/interview-prep/internal/db"
	"github.com/jonathan/interview-prep/internal/fetch"
	"github.com/jonathan/interview-prep/internal/jobstore"
	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/logging"
	"github.com/jonathan/interview-prep/internal/responses"
	"github.com/jonathan/interview-prep/internal/schemas"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// browserTimeout bounds one headless render of a script-heavy page.
const browserTimeout = 45 * time.Second

// settings is shared by every command so flags, env and the config file merge in one place.
var settings = config.New()

// bindFlags maps config keys onto the named flags of cmd.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q for key %q", flag, key)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", flag, err)
		}
	}
	return nil
}

// loadConfig binds the command's flags and decodes the merged configuration.
func loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	if err := bindFlags(settings, cmd, keys); err != nil {
		return nil, err
	}
	return config.Load(settings, configFile)
}

func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	log, err := logging.New(cfg.LogJSON, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// stores bundles the job store and the answer store with whatever closes them.
type stores struct {
	jobs      *jobstore.Store
	responses responses.Store
	close     func()
}

// openStores connects to PostgreSQL when a database URL is configured and applies
// pending migrations. Without one, in-memory stores are used and nothing survives a restart.
func openStores(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*stores, error) {
	opts := []jobstore.Option{jobstore.WithTTL(cfg.ArtifactTTL), jobstore.WithLogger(log)}

	if cfg.DatabaseURL == "" {
		log.Warnw("DATABASE_URL not set, using in-memory storage")
		return &stores{
			jobs:      jobstore.New(jobstore.NewMemoryArtifacts(), opts...),
			responses: responses.NewMemoryStore(),
			close:     func() {},
		}, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	applied, err := database.Migrate(ctx, log)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Infow("Database ready", "migrations_applied", applied)

	return &stores{
		jobs:      jobstore.New(database, opts...),
		responses: database,
		close:     database.Close,
	}, nil
}

// openDatabase connects for the maintenance commands, which have no in-memory mode.
func openDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}
	return db.Connect(ctx, cfg.DatabaseURL)
}

// newCaller builds the schema-checked Gemini caller. The returned func releases the client.
func newCaller(ctx context.Context, cfg *config.Config) (llm.Caller, func(), error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, nil, err
	}
	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, err
	}
	gen := llm.NewGenerator(client, schemas.NewRegistry(), llm.WithTimeout(cfg.GenerationTimeout))
	return gen, func() { _ = client.Close() }, nil
}

// newFetcher returns the page fetcher, with the headless browser fallback when enabled.
func newFetcher(cfg *config.Config, log *zap.SugaredLogger) *fetch.Fetcher {
	var render fetch.Renderer
	if cfg.UseBrowser {
		render = fetch.ChromeRenderer(browserTimeout)
	}
	return fetch.NewFetcher(fetch.DefaultOptions(), render, log)
}
