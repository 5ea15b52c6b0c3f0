package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RateKind describes how a rate item is charged.
type RateKind string

// Rate kinds.
const (
	RateKindPerManHour RateKind = "per_man_hour"
	RateKindFixed      RateKind = "fixed"
)

// Rate item descriptions the calculators look up.
const (
	RateUniquePages     = "Unique Pages"
	RateRepetitivePages = "Repetitive Pages"
	RateShortPages      = "Short Pages"
	RateDesign          = "Design"
	RateProgramming     = "Programming"
)

// RateItem is one priced catalog entry. Items are never edited; a new
// RateTable supersedes them.
type RateItem struct {
	ID          string
	Kind        RateKind
	Description string
	CostSGD     decimal.Decimal
	CostMYR     decimal.Decimal
}

// Cost returns the item cost in currency c, or zero for an unsupported currency.
func (i RateItem) Cost(c Currency) decimal.Decimal {
	switch c {
	case CurrencySGD:
		return i.CostSGD
	case CurrencyMYR:
		return i.CostMYR
	default:
		return decimal.Zero
	}
}

// RateTable is an immutable, versioned snapshot of rate items.
type RateTable struct {
	ID           string
	VersionLabel string
	CreatedAt    time.Time
	CreatedBy    string
	IsActive     bool
	Items        []RateItem
}

// Clone returns a copy that shares no slices with t.
func (t RateTable) Clone() RateTable {
	t.Items = append([]RateItem(nil), t.Items...)
	return t
}

// Item returns the item whose description matches exactly.
func (t RateTable) Item(description string) (RateItem, bool) {
	for _, item := range t.Items {
		if item.Description == description {
			return item, true
		}
	}
	return RateItem{}, false
}

// RateFor returns the cost of the item named description in currency c.
// An unmatched description costs zero.
func (t RateTable) RateFor(description string, c Currency) decimal.Decimal {
	item, ok := t.Item(description)
	if !ok {
		return decimal.Zero
	}
	return item.Cost(c)
}

// Validate checks the structural rules every stored table must satisfy:
// a version label, known kinds, unique non-empty descriptions and
// non-negative costs.
func (t RateTable) Validate() error {
	var errs []error
	if strings.TrimSpace(t.VersionLabel) == "" {
		errs = append(errs, errors.New("version label is required"))
	}
	seen := make(map[string]struct{}, len(t.Items))
	for i, item := range t.Items {
		if item.Description == "" {
			errs = append(errs, fmt.Errorf("item %d: description is required", i))
			continue
		}
		if _, dup := seen[item.Description]; dup {
			errs = append(errs, fmt.Errorf("item %q: duplicate description", item.Description))
		}
		seen[item.Description] = struct{}{}
		if item.Kind != RateKindPerManHour && item.Kind != RateKindFixed {
			errs = append(errs, fmt.Errorf("item %q: unknown kind %q", item.Description, item.Kind))
		}
		if item.CostSGD.IsNegative() || item.CostMYR.IsNegative() {
			errs = append(errs, fmt.Errorf("item %q: costs must not be negative", item.Description))
		}
	}
	return errors.Join(errs...)
}
