package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/solatis/codematch/internal/core/config"
	"github.com/solatis/codematch/internal/core/db"
	"github.com/solatis/codematch/internal/templates"
)

// loadRegistry builds the registry from built-ins plus configured templates.
// Templates that fail to compile are logged and skipped.
func loadRegistry() (*templates.Registry, *config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	registry := templates.NewRegistry()
	if err := registry.Load(cfg.Templates); err != nil {
		for _, e := range unjoin(err) {
			log.Warn().Err(e).Msg("skipping template")
		}
	}

	log.Debug().
		Int("configured", len(cfg.Templates)).
		Int("active", len(registry.Templates())).
		Msg("template registry loaded")

	return registry, cfg, nil
}

func unjoin(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

// openDB opens --db-url and loads named queries.
func openDB(ctx context.Context) (*sqlx.DB, *db.Queries, error) {
	if dbURL == "" {
		return nil, nil, fmt.Errorf("--db-url required")
	}
	database, err := db.Open(ctx, dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return database, queries, nil
}

// requireMigrated fails when any embedded migration is pending.
func requireMigrated(ctx context.Context, database *sqlx.DB) error {
	statuses, err := db.MigrateStatus(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			return fmt.Errorf("migration %s not applied - run 'codematch migrate' first", s.ID)
		}
	}
	return nil
}
