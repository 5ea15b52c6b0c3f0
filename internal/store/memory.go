package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/logger"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
)

// Memory is the in-memory record store. Every mutation happens under one
// lock, so readers never observe a half-applied change such as two active
// rate tables. All reads return copies.
type Memory struct {
	mu  sync.RWMutex
	now func() time.Time

	rateTables []models.RateTable
	quotations map[string][]models.Quotation // lineage id -> versions ascending

	roles   map[string]models.Role
	staff   map[string]models.Staff
	clients map[string]models.Client
	pocs    map[string]models.ClientPOC
}

// Option configures a Memory store.
type Option func(*Memory)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an empty store.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		now:        func() time.Time { return time.Now().UTC() },
		quotations: make(map[string][]models.Quotation),
		roles:      make(map[string]models.Role),
		staff:      make(map[string]models.Staff),
		clients:    make(map[string]models.Client),
		pocs:       make(map[string]models.ClientPOC),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AppendRateTable stores a new rate table version. Missing ids and the
// creation time are filled in. When activate is set the new table becomes
// the only active one in the same step.
func (m *Memory) AppendRateTable(_ context.Context, table models.RateTable, activate bool) (models.RateTable, error) {
	table = table.Clone()
	if err := table.Validate(); err != nil {
		return models.RateTable{}, fmt.Errorf("%w: %w", ErrInvalidRateTable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if table.ID == "" {
		table.ID = uuid.NewString()
	}
	if m.rateTableIndexLocked(table.ID) >= 0 {
		return models.RateTable{}, fmt.Errorf("%w: rate table %s", ErrDuplicate, table.ID)
	}
	if table.CreatedBy != "" {
		if _, ok := m.staff[table.CreatedBy]; !ok {
			return models.RateTable{}, fmt.Errorf("%w: staff %s", ErrNotFound, table.CreatedBy)
		}
	}
	if table.CreatedAt.IsZero() {
		table.CreatedAt = m.now()
	}
	for i := range table.Items {
		if table.Items[i].ID == "" {
			table.Items[i].ID = uuid.NewString()
		}
	}

	table.IsActive = activate
	if activate {
		for i := range m.rateTables {
			m.rateTables[i].IsActive = false
		}
	}
	m.rateTables = append(m.rateTables, table)

	logger.Log.Info().
		Str("rate_table", table.ID).
		Str("version", table.VersionLabel).
		Int("items", len(table.Items)).
		Bool("active", activate).
		Msg("Rate table appended")

	return table.Clone(), nil
}

// ActivateRateTable makes id the only active rate table.
func (m *Memory) ActivateRateTable(_ context.Context, id string) (models.RateTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.rateTableIndexLocked(id)
	if idx < 0 {
		return models.RateTable{}, fmt.Errorf("%w: rate table %s", ErrNotFound, id)
	}
	for i := range m.rateTables {
		m.rateTables[i].IsActive = i == idx
	}

	logger.Log.Info().
		Str("rate_table", id).
		Str("version", m.rateTables[idx].VersionLabel).
		Msg("Rate table activated")

	return m.rateTables[idx].Clone(), nil
}

// ActiveRateTable returns the active rate table or ErrNotFound.
func (m *Memory) ActiveRateTable(_ context.Context) (models.RateTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.rateTables {
		if t.IsActive {
			return t.Clone(), nil
		}
	}
	return models.RateTable{}, fmt.Errorf("%w: no active rate table", ErrNotFound)
}

// RateTableByID returns one rate table version.
func (m *Memory) RateTableByID(_ context.Context, id string) (models.RateTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.rateTableIndexLocked(id)
	if idx < 0 {
		return models.RateTable{}, fmt.Errorf("%w: rate table %s", ErrNotFound, id)
	}
	return m.rateTables[idx].Clone(), nil
}

// RateTables returns every rate table version, newest first.
func (m *Memory) RateTables(_ context.Context) ([]models.RateTable, error) {
	m.mu.RLock()
	out := make([]models.RateTable, 0, len(m.rateTables))
	for _, t := range m.rateTables {
		out = append(out, t.Clone())
	}
	m.mu.RUnlock()

	SortNewestFirst(out)
	return out, nil
}

// SortNewestFirst orders rate tables by creation time descending, ties by id.
func SortNewestFirst(tables []models.RateTable) {
	slices.SortStableFunc(tables, func(a, b models.RateTable) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

func (m *Memory) rateTableIndexLocked(id string) int {
	return slices.IndexFunc(m.rateTables, func(t models.RateTable) bool {
		return t.ID == id
	})
}

// CreateQuotation stores a finalized quotation. The (lineage, version) pair
// must be new, and versions must follow each other without gaps.
func (m *Memory) CreateQuotation(_ context.Context, q *models.Quotation) error {
	if q.LineageID == "" || q.Version < 1 {
		return fmt.Errorf("%w: quotation needs a lineage and a positive version", ErrInvalidRecord)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	lineage := m.quotations[q.LineageID]
	if q.Version != len(lineage)+1 {
		return fmt.Errorf("%w: lineage %s is at version %d, got %d",
			ErrVersionConflict, q.LineageID, len(lineage), q.Version)
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = m.now()
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = q.CreatedAt
	}
	m.quotations[q.LineageID] = append(lineage, q.Clone())
	return nil
}

// QuotationByID finds a quotation version by its id.
func (m *Memory) QuotationByID(_ context.Context, id string) (models.Quotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, lineage := range m.quotations {
		for _, q := range lineage {
			if q.ID == id {
				return q.Clone(), nil
			}
		}
	}
	return models.Quotation{}, fmt.Errorf("%w: quotation %s", ErrNotFound, id)
}

// LatestQuotation returns the highest version of a lineage.
func (m *Memory) LatestQuotation(_ context.Context, lineageID string) (models.Quotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lineage := m.quotations[lineageID]
	if len(lineage) == 0 {
		return models.Quotation{}, fmt.Errorf("%w: quotation lineage %s", ErrNotFound, lineageID)
	}
	return lineage[len(lineage)-1].Clone(), nil
}

// QuotationLineage returns every version of a lineage, oldest first.
func (m *Memory) QuotationLineage(_ context.Context, lineageID string) ([]models.Quotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lineage := m.quotations[lineageID]
	if len(lineage) == 0 {
		return nil, fmt.Errorf("%w: quotation lineage %s", ErrNotFound, lineageID)
	}
	out := make([]models.Quotation, len(lineage))
	for i, q := range lineage {
		out[i] = q.Clone()
	}
	return out, nil
}

// QuotationFilter narrows Quotations. Zero fields match everything.
type QuotationFilter struct {
	ClientID    string
	ProjectType models.ProjectType
	LatestOnly  bool
}

// Quotations lists stored quotations, newest first.
func (m *Memory) Quotations(_ context.Context, f QuotationFilter) ([]models.Quotation, error) {
	m.mu.RLock()
	var out []models.Quotation
	for _, lineage := range m.quotations {
		versions := lineage
		if f.LatestOnly {
			versions = lineage[len(lineage)-1:]
		}
		for _, q := range versions {
			if f.ClientID != "" && q.ClientID != f.ClientID {
				continue
			}
			if f.ProjectType != "" && q.ProjectType != f.ProjectType {
				continue
			}
			out = append(out, q.Clone())
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Quotation) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.LineageID, b.LineageID); c != 0 {
			return c
		}
		return cmp.Compare(b.Version, a.Version)
	})
	return out, nil
}
