package costing

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// RateUpdate changes one item of a draft rate table. An update for an
// unknown description adds the item; Remove drops an existing one.
type RateUpdate struct {
	Description string
	Kind        models.RateKind
	CostSGD     decimal.Decimal
	CostMYR     decimal.Decimal
	Remove      bool
}

// DraftRateTable builds a new, inactive rate table that supersedes base.
// Item and table ids are cleared so the store assigns fresh ones; base is
// left untouched.
func DraftRateTable(base models.RateTable, label, createdBy string, updates []RateUpdate) (models.RateTable, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.RateTable{}, fmt.Errorf("%w: version label is required", ErrInvalidDraft)
	}
	if label == base.VersionLabel {
		return models.RateTable{}, fmt.Errorf("%w: label %q is already used by the base table", ErrInvalidDraft, label)
	}

	draft := models.RateTable{
		VersionLabel: label,
		CreatedBy:    createdBy,
		Items:        make([]models.RateItem, 0, len(base.Items)+len(updates)),
	}
	for _, item := range base.Items {
		item.ID = ""
		draft.Items = append(draft.Items, item)
	}

	for _, u := range updates {
		idx := slices.IndexFunc(draft.Items, func(i models.RateItem) bool {
			return i.Description == u.Description
		})
		switch {
		case u.Remove && idx < 0:
			return models.RateTable{}, fmt.Errorf("%w: cannot remove unknown item %q", ErrInvalidDraft, u.Description)
		case u.Remove:
			draft.Items = slices.Delete(draft.Items, idx, idx+1)
		case idx < 0:
			draft.Items = append(draft.Items, models.RateItem{
				Kind:        u.Kind,
				Description: u.Description,
				CostSGD:     u.CostSGD,
				CostMYR:     u.CostMYR,
			})
		default:
			if u.Kind != "" {
				draft.Items[idx].Kind = u.Kind
			}
			draft.Items[idx].CostSGD = u.CostSGD
			draft.Items[idx].CostMYR = u.CostMYR
		}
	}

	if err := draft.Validate(); err != nil {
		return models.RateTable{}, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	return draft, nil
}

// DraftFromActive drafts a successor of the currently active rate table.
func (e *Engine) DraftFromActive(ctx context.Context, label, createdBy string, updates []RateUpdate) (models.RateTable, error) {
	active, err := e.ActiveTable(ctx)
	if err != nil {
		return models.RateTable{}, err
	}
	return DraftRateTable(active, label, createdBy, updates)
}

// ChangeKind classifies a RateChange.
type ChangeKind string

// Change kinds.
const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeUpdated ChangeKind = "updated"
)

// RateChange is the difference of one description between two rate tables.
type RateChange struct {
	Description string
	Kind        ChangeKind
	Before      *models.RateItem
	After       *models.RateItem
}

// DiffRateTables lists how newer differs from older, sorted by description.
// Item ids are ignored; only kind and costs count as an update.
func DiffRateTables(older, newer models.RateTable) []RateChange {
	before := newRateIndex(older)
	after := newRateIndex(newer)

	var changes []RateChange
	for desc, b := range before {
		a, ok := after[desc]
		switch {
		case !ok:
			changes = append(changes, RateChange{Description: desc, Kind: ChangeRemoved, Before: &b})
		case a.Kind != b.Kind || !a.CostSGD.Equal(b.CostSGD) || !a.CostMYR.Equal(b.CostMYR):
			changes = append(changes, RateChange{Description: desc, Kind: ChangeUpdated, Before: &b, After: &a})
		}
	}
	for desc, a := range after {
		if _, ok := before[desc]; !ok {
			changes = append(changes, RateChange{Description: desc, Kind: ChangeAdded, After: &a})
		}
	}

	slices.SortFunc(changes, func(x, y RateChange) int { return cmp.Compare(x.Description, y.Description) })
	return changes
}
