// Package costing derives project costs from the active rate table and
// finalizes them into versioned quotations.
package costing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/logger"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/store"
	"github.com/shopspring/decimal"
)

// RateTableSource is the read side of the rate table collection. Missing
// records are reported with errors wrapping store.ErrNotFound.
type RateTableSource interface {
	ActiveRateTable(ctx context.Context) (models.RateTable, error)
	RateTableByID(ctx context.Context, id string) (models.RateTable, error)
	RateTables(ctx context.Context) ([]models.RateTable, error)
}

// QuotationStore keeps finalized quotations.
type QuotationStore interface {
	LatestQuotation(ctx context.Context, lineageID string) (models.Quotation, error)
	CreateQuotation(ctx context.Context, q *models.Quotation) error
}

// Engine prices line items and assembles quotations. It holds no pricing
// state between calls: the active table is re-read on every call, and only
// the description index of each (immutable) table version is cached.
type Engine struct {
	tables     RateTableSource
	quotations QuotationStore
	now        func() time.Time

	mu      sync.RWMutex
	indexes map[string]rateIndex // rate table id -> index
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used to stamp quotations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine reading rate tables from tables and storing
// quotations in quotations.
func NewEngine(tables RateTableSource, quotations QuotationStore, opts ...Option) *Engine {
	e := &Engine{
		tables:     tables,
		quotations: quotations,
		now:        func() time.Time { return time.Now().UTC() },
		indexes:    make(map[string]rateIndex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ActiveTable returns the rate table flagged active right now.
func (e *Engine) ActiveTable(ctx context.Context) (models.RateTable, error) {
	table, err := e.tables.ActiveRateTable(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return models.RateTable{}, ErrNoActiveRateTable
	}
	if err != nil {
		return models.RateTable{}, fmt.Errorf("failed to load active rate table: %w", err)
	}
	return table, nil
}

// History returns every rate table version, newest first.
func (e *Engine) History(ctx context.Context) ([]models.RateTable, error) {
	tables, err := e.tables.RateTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate table history: %w", err)
	}
	store.SortNewestFirst(tables)
	return tables, nil
}

// RateFor returns the active cost of the rate item named description in
// currency. An unmatched description costs zero.
func (e *Engine) RateFor(ctx context.Context, description string, currency models.Currency) (decimal.Decimal, error) {
	if !currency.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, currency)
	}
	table, err := e.ActiveTable(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return pricer{rates: e.index(table), currency: currency}.rate(description), nil
}

// Compute returns the total cost of items against the active rate table.
func (e *Engine) Compute(ctx context.Context, projectType models.ProjectType, items models.LineItems, currency models.Currency) (decimal.Decimal, error) {
	breakdown, _, err := e.ComputeBreakdown(ctx, projectType, items, currency)
	if err != nil {
		return decimal.Zero, err
	}
	return breakdown.Total(), nil
}

// ComputeBreakdown is Compute with the per-component detail and the rate
// table that priced it.
func (e *Engine) ComputeBreakdown(
	ctx context.Context,
	projectType models.ProjectType,
	items models.LineItems,
	currency models.Currency,
) (models.Breakdown, models.RateTable, error) {
	// Argument errors take precedence over a missing rate table.
	if err := checkInput(projectType, items, currency); err != nil {
		return nil, models.RateTable{}, err
	}

	table, err := e.ActiveTable(ctx)
	if err != nil {
		return nil, models.RateTable{}, err
	}
	breakdown, err := calculate(e.index(table), projectType, items, currency)
	if err != nil {
		return nil, models.RateTable{}, err
	}

	logger.Log.Debug().
		Str("project_type", string(projectType)).
		Str("currency", string(currency)).
		Str("rate_table", table.ID).
		Str("total", breakdown.Total().String()).
		Msg("Computed cost")

	return breakdown, table, nil
}

// FinalizeRequest is the input of Finalize.
type FinalizeRequest struct {
	ProjectType models.ProjectType
	LineItems   models.LineItems
	Currency    models.Currency
	// LineageID names the logical quotation being revised. Empty starts a new
	// lineage; an id with no stored versions starts that lineage at version 1.
	LineageID string
	// ClientID defaults to the prior version's client on a revision.
	ClientID string
}

// Finalize prices the request against the active rate table and stores the
// result as the next version of its lineage.
func (e *Engine) Finalize(ctx context.Context, req FinalizeRequest) (models.Quotation, error) {
	if req.Currency == "" {
		req.Currency = models.DefaultCurrency
	}
	breakdown, table, err := e.ComputeBreakdown(ctx, req.ProjectType, req.LineItems, req.Currency)
	if err != nil {
		return models.Quotation{}, err
	}

	q := models.Quotation{
		ID:            uuid.NewString(),
		LineageID:     strings.TrimSpace(req.LineageID),
		Version:       1,
		ClientID:      req.ClientID,
		ProjectType:   req.ProjectType,
		LineItems:     models.CloneLineItems(req.LineItems),
		CostVersionID: table.ID,
		Currency:      req.Currency,
		TotalCost:     breakdown.Total(),
		Breakdown:     breakdown,
	}
	if q.LineItems == nil {
		q.LineItems, _ = req.ProjectType.NewLineItems()
	}

	if q.LineageID == "" {
		q.LineageID = uuid.NewString()
	} else {
		prior, err := e.quotations.LatestQuotation(ctx, q.LineageID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// First version of a caller-named lineage.
		case err != nil:
			return models.Quotation{}, fmt.Errorf("failed to load prior quotation: %w", err)
		default:
			q.Version = prior.Version + 1
			if q.ClientID == "" {
				q.ClientID = prior.ClientID
			}
		}
	}

	now := e.now()
	q.CreatedAt, q.UpdatedAt = now, now

	if err := e.quotations.CreateQuotation(ctx, &q); err != nil {
		return models.Quotation{}, fmt.Errorf("failed to store quotation: %w", err)
	}

	logger.Log.Info().
		Str("quotation", q.ID).
		Str("lineage", q.LineageID).
		Int("version", q.Version).
		Str("client", logger.HashID(q.ClientID)).
		Str("rate_table", q.CostVersionID).
		Str("total", q.TotalCost.String()).
		Str("currency", string(q.Currency)).
		Msg("Quotation finalized")

	return q, nil
}

// Reprice recomputes a stored quotation against the rate table version it
// references, never the active one.
func (e *Engine) Reprice(ctx context.Context, q models.Quotation) (models.Breakdown, error) {
	table, err := e.tables.RateTableByID(ctx, q.CostVersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate table %s: %w", q.CostVersionID, err)
	}
	return calculate(e.index(table), q.ProjectType, q.LineItems, q.Currency)
}

// Verify reports whether a stored quotation's total is reproduced by
// repricing it against its own rate table version.
func (e *Engine) Verify(ctx context.Context, q models.Quotation) (bool, error) {
	breakdown, err := e.Reprice(ctx, q)
	if err != nil {
		return false, err
	}
	return breakdown.Total().Equal(q.TotalCost), nil
}

// index returns the cached description index of table, building it once per
// table id.
func (e *Engine) index(table models.RateTable) rateIndex {
	e.mu.RLock()
	idx, ok := e.indexes[table.ID]
	e.mu.RUnlock()
	if ok {
		return idx
	}

	idx = newRateIndex(table)
	if table.ID == "" {
		return idx
	}
	e.mu.Lock()
	e.indexes[table.ID] = idx
	e.mu.Unlock()
	return idx
}
