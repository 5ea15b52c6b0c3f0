// Package repository persists rate tables and quotations in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/database"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/logger"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/store"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// RateTableRepository handles rate table database operations. A table and
// its items are written in one transaction, so readers never see a table
// without all of its items.
type RateTableRepository struct {
	db database.TxDB
}

// NewRateTableRepository creates a new RateTableRepository.
func NewRateTableRepository(db database.TxDB) *RateTableRepository {
	return &RateTableRepository{db: db}
}

// AppendRateTable stores a new rate table version, optionally making it the
// only active one.
func (r *RateTableRepository) AppendRateTable(ctx context.Context, table models.RateTable, activate bool) (models.RateTable, error) {
	table = table.Clone()
	if err := table.Validate(); err != nil {
		return models.RateTable{}, fmt.Errorf("%w: %w", store.ErrInvalidRateTable, err)
	}
	if table.ID == "" {
		table.ID = uuid.NewString()
	}
	if table.CreatedAt.IsZero() {
		table.CreatedAt = time.Now().UTC()
	}
	for i := range table.Items {
		if table.Items[i].ID == "" {
			table.Items[i].ID = uuid.NewString()
		}
	}
	table.IsActive = activate

	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if activate {
			if _, err := tx.Exec(ctx, `UPDATE rate_tables SET is_active = FALSE WHERE is_active`); err != nil {
				return fmt.Errorf("failed to deactivate rate tables: %w", err)
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO rate_tables (id, version_label, created_by, is_active, created_at)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		`, table.ID, table.VersionLabel, table.CreatedBy, table.IsActive, table.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: rate table %s (%s)", store.ErrDuplicate, table.ID, table.VersionLabel)
			}
			return fmt.Errorf("failed to insert rate table: %w", err)
		}

		batch := &pgx.Batch{}
		for i, item := range table.Items {
			batch.Queue(`
				INSERT INTO rate_items (id, rate_table_id, position, kind, description, cost_sgd, cost_myr)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, item.ID, table.ID, i, string(item.Kind), item.Description, item.CostSGD, item.CostMYR)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert rate items: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.RateTable{}, err
	}

	log := logger.Component("repository")
	log.Info().
		Str("rate_table", table.ID).
		Str("version", table.VersionLabel).
		Int("items", len(table.Items)).
		Bool("active", activate).
		Msg("Rate table appended")

	return table, nil
}

// ActivateRateTable makes id the only active rate table in one transaction.
func (r *RateTableRepository) ActivateRateTable(ctx context.Context, id string) (models.RateTable, error) {
	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rate_tables WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to look up rate table: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: rate table %s", store.ErrNotFound, id)
		}
		if _, err := tx.Exec(ctx, `UPDATE rate_tables SET is_active = FALSE WHERE is_active AND id <> $1`, id); err != nil {
			return fmt.Errorf("failed to deactivate rate tables: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE rate_tables SET is_active = TRUE WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to activate rate table: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.RateTable{}, err
	}

	table, err := r.RateTableByID(ctx, id)
	if err != nil {
		return models.RateTable{}, err
	}
	log := logger.Component("repository")
	log.Info().
		Str("rate_table", id).
		Str("version", table.VersionLabel).
		Msg("Rate table activated")
	return table, nil
}

const rateTableColumns = `id, version_label, COALESCE(created_by, ''), is_active, created_at`

// ActiveRateTable returns the active rate table or store.ErrNotFound.
func (r *RateTableRepository) ActiveRateTable(ctx context.Context) (models.RateTable, error) {
	return r.getOne(ctx, `SELECT `+rateTableColumns+` FROM rate_tables WHERE is_active`, "active")
}

// RateTableByID returns one rate table version.
func (r *RateTableRepository) RateTableByID(ctx context.Context, id string) (models.RateTable, error) {
	return r.getOne(ctx, `SELECT `+rateTableColumns+` FROM rate_tables WHERE id = $1`, id, id)
}

func (r *RateTableRepository) getOne(ctx context.Context, query, what string, args ...any) (models.RateTable, error) {
	var t models.RateTable
	err := r.db.QueryRow(ctx, query, args...).
		Scan(&t.ID, &t.VersionLabel, &t.CreatedBy, &t.IsActive, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.RateTable{}, fmt.Errorf("%w: rate table %s", store.ErrNotFound, what)
	}
	if err != nil {
		return models.RateTable{}, fmt.Errorf("failed to get rate table: %w", err)
	}

	items, err := r.items(ctx, []string{t.ID})
	if err != nil {
		return models.RateTable{}, err
	}
	t.Items = items[t.ID]
	return t, nil
}

// RateTables returns every rate table version, newest first.
func (r *RateTableRepository) RateTables(ctx context.Context) ([]models.RateTable, error) {
	rows, err := r.db.Query(ctx, `SELECT `+rateTableColumns+` FROM rate_tables ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate tables: %w", err)
	}
	defer rows.Close()

	var tables []models.RateTable
	var ids []string
	for rows.Next() {
		var t models.RateTable
		if err := rows.Scan(&t.ID, &t.VersionLabel, &t.CreatedBy, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rate table: %w", err)
		}
		tables = append(tables, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate tables: %w", err)
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tables {
		tables[i].Items = items[tables[i].ID]
	}
	return tables, nil
}

// items loads the rate items of the given tables in their stored order.
func (r *RateTableRepository) items(ctx context.Context, tableIDs []string) (map[string][]models.RateItem, error) {
	out := make(map[string][]models.RateItem, len(tableIDs))
	if len(tableIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT rate_table_id, id, kind, description, cost_sgd, cost_myr
		FROM rate_items
		WHERE rate_table_id = ANY($1)
		ORDER BY rate_table_id, position
	`, tableIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableID, kind string
		var item models.RateItem
		if err := rows.Scan(&tableID, &item.ID, &kind, &item.Description, &item.CostSGD, &item.CostMYR); err != nil {
			return nil, fmt.Errorf("failed to scan rate item: %w", err)
		}
		item.Kind = models.RateKind(kind)
		out[tableID] = append(out[tableID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate items: %w", err)
	}
	return out, nil
}
