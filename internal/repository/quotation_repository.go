package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/database"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/store"
)

// QuotationRepository handles quotation database operations. Quotations are
// append-only: a revision is a new row with the next version.
type QuotationRepository struct {
	db database.TxDB
}

// NewQuotationRepository creates a new QuotationRepository.
func NewQuotationRepository(db database.TxDB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

const quotationColumns = `id, lineage_id, version, COALESCE(client_id, ''), project_type, line_items,
	cost_version_id, currency, total_cost, breakdown, created_at, updated_at`

// CreateQuotation stores q as the next version of its lineage.
func (r *QuotationRepository) CreateQuotation(ctx context.Context, q *models.Quotation) error {
	if q.LineageID == "" || q.Version < 1 {
		return fmt.Errorf("%w: quotation needs a lineage and a positive version", store.ErrInvalidRecord)
	}

	lineItems, err := json.Marshal(q.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}
	breakdown, err := json.Marshal(q.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}
	if q.Breakdown == nil {
		breakdown = []byte("[]")
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = q.CreatedAt
	}

	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM quotations WHERE lineage_id = $1`, q.LineageID).
			Scan(&current)
		if err != nil {
			return fmt.Errorf("failed to read lineage version: %w", err)
		}
		if q.Version != current+1 {
			return fmt.Errorf("%w: lineage %s is at version %d, got %d",
				store.ErrVersionConflict, q.LineageID, current, q.Version)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO quotations (id, lineage_id, version, client_id, project_type, line_items,
				cost_version_id, currency, total_cost, breakdown, created_at, updated_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12)
		`, q.ID, q.LineageID, q.Version, q.ClientID, string(q.ProjectType), lineItems,
			q.CostVersionID, string(q.Currency), q.TotalCost, breakdown, q.CreatedAt, q.UpdatedAt)
		if isUniqueViolation(err) {
			// A concurrent writer took this version first.
			return fmt.Errorf("%w: lineage %s version %d", store.ErrVersionConflict, q.LineageID, q.Version)
		}
		if err != nil {
			return fmt.Errorf("failed to create quotation: %w", err)
		}
		return nil
	})
}

// QuotationByID retrieves a quotation version by id.
func (r *QuotationRepository) QuotationByID(ctx context.Context, id string) (models.Quotation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id)
	if err != nil {
		return models.Quotation{}, fmt.Errorf("failed to get quotation: %w", err)
	}
	defer rows.Close()

	quotes, err := scanQuotations(rows)
	if err != nil {
		return models.Quotation{}, err
	}
	if len(quotes) == 0 {
		return models.Quotation{}, fmt.Errorf("%w: quotation %s", store.ErrNotFound, id)
	}
	return quotes[0], nil
}

// LatestQuotation returns the highest version of a lineage.
func (r *QuotationRepository) LatestQuotation(ctx context.Context, lineageID string) (models.Quotation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quotationColumns+` FROM quotations
		WHERE lineage_id = $1
		ORDER BY version DESC
		LIMIT 1
	`, lineageID)
	if err != nil {
		return models.Quotation{}, fmt.Errorf("failed to get latest quotation: %w", err)
	}
	defer rows.Close()

	quotes, err := scanQuotations(rows)
	if err != nil {
		return models.Quotation{}, err
	}
	if len(quotes) == 0 {
		return models.Quotation{}, fmt.Errorf("%w: quotation lineage %s", store.ErrNotFound, lineageID)
	}
	return quotes[0], nil
}

// QuotationLineage returns every version of a lineage, oldest first.
func (r *QuotationRepository) QuotationLineage(ctx context.Context, lineageID string) ([]models.Quotation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quotationColumns+` FROM quotations
		WHERE lineage_id = $1
		ORDER BY version
	`, lineageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotation lineage: %w", err)
	}
	defer rows.Close()

	quotes, err := scanQuotations(rows)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: quotation lineage %s", store.ErrNotFound, lineageID)
	}
	return quotes, nil
}

// Quotations lists stored quotations, newest first.
func (r *QuotationRepository) Quotations(ctx context.Context, f store.QuotationFilter) ([]models.Quotation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quotationColumns+` FROM quotations q
		WHERE ($1 = '' OR client_id = $1)
		  AND ($2 = '' OR project_type = $2)
		  AND (NOT $3 OR version = (SELECT MAX(version) FROM quotations l WHERE l.lineage_id = q.lineage_id))
		ORDER BY created_at DESC, lineage_id, version DESC
	`, f.ClientID, string(f.ProjectType), f.LatestOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotations: %w", err)
	}
	defer rows.Close()

	return scanQuotations(rows)
}

// scanQuotations decodes quotation rows, restoring each row's line items in
// the shape of its project type.
func scanQuotations(rows pgx.Rows) ([]models.Quotation, error) {
	var quotes []models.Quotation
	for rows.Next() {
		var q models.Quotation
		var projectType, currency string
		var lineItems, breakdown []byte

		if err := rows.Scan(
			&q.ID, &q.LineageID, &q.Version, &q.ClientID, &projectType, &lineItems,
			&q.CostVersionID, &currency, &q.TotalCost, &breakdown, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quotation: %w", err)
		}

		q.ProjectType = models.ProjectType(projectType)
		q.Currency = models.Currency(currency)

		items, err := models.DecodeLineItems(q.ProjectType, lineItems)
		if err != nil {
			return nil, fmt.Errorf("failed to decode quotation %s: %w", q.ID, err)
		}
		q.LineItems = items

		if err := json.Unmarshal(breakdown, &q.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode quotation %s breakdown: %w", q.ID, err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quotations: %w", err)
	}
	return quotes, nil
}
