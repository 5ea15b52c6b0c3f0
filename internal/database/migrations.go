package database

import (
	"context"
	"fmt"
)

// RunMigrations creates the database schema. Every statement is idempotent.
func RunMigrations(ctx context.Context, db PGXDB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS rate_tables (
			id TEXT PRIMARY KEY,
			version_label TEXT NOT NULL UNIQUE,
			created_by TEXT,
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// At most one table may be active at any time.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_rate_tables_single_active
			ON rate_tables (is_active) WHERE is_active`,

		`CREATE TABLE IF NOT EXISTS rate_items (
			id TEXT PRIMARY KEY,
			rate_table_id TEXT NOT NULL REFERENCES rate_tables(id),
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			description TEXT NOT NULL,
			cost_sgd NUMERIC NOT NULL CHECK (cost_sgd >= 0),
			cost_myr NUMERIC NOT NULL CHECK (cost_myr >= 0),
			UNIQUE (rate_table_id, description)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_rate_items_rate_table_id ON rate_items(rate_table_id)`,

		`CREATE TABLE IF NOT EXISTS quotations (
			id TEXT PRIMARY KEY,
			lineage_id TEXT NOT NULL,
			version INTEGER NOT NULL CHECK (version > 0),
			client_id TEXT,
			project_type TEXT NOT NULL,
			line_items JSONB NOT NULL,
			cost_version_id TEXT NOT NULL REFERENCES rate_tables(id),
			currency TEXT NOT NULL DEFAULT 'SGD',
			total_cost NUMERIC NOT NULL,
			breakdown JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (lineage_id, version)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_quotations_client_id ON quotations(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_quotations_created_at ON quotations(created_at)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
