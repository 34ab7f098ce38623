package db

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the embedded migration file names in apply order.
func Migrations() ([]string, error) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Migrate applies every pending migration, each in its own transaction.
// Returns the number of migrations applied.
func (db *DB) Migrate(ctx context.Context, logger *zap.SugaredLogger) (int, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	files, err := Migrations()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, filename := range files {
		version := strings.SplitN(filename, "_", 2)[0]

		// schema_migrations is created by 000
		var exists bool
		err := db.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&exists)
		if err != nil {
			if version != "000" {
				return applied, &PersistenceError{Op: "check migration " + filename, Cause: err}
			}
		} else if exists {
			logger.Debugw("Skipping migration (already applied)", "migration", filename, "version", version)
			continue
		}

		sqlBytes, err := migrations.ReadFile(path.Join("migrations", filename))
		if err != nil {
			return applied, fmt.Errorf("failed to read %s: %w", filename, err)
		}

		logger.Infow("Applying migration", "migration", filename, "version", version)

		tx, err := db.pool.Begin(ctx)
		if err != nil {
			return applied, &PersistenceError{Op: "begin " + filename, Cause: err}
		}
		if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback(ctx)
			return applied, &PersistenceError{Op: "execute " + filename, Cause: err}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`, version,
		); err != nil {
			_ = tx.Rollback(ctx)
			return applied, &PersistenceError{Op: "record " + filename, Cause: err}
		}
		if err := tx.Commit(ctx); err != nil {
			return applied, &PersistenceError{Op: "commit " + filename, Cause: err}
		}
		applied++
	}

	logger.Infow("Migrations complete", "total_migrations", len(files), "applied", applied)
	return applied, nil
}
