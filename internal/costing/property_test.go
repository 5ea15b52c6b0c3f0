package costing

import (
	"context"
	"testing"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/fixtures"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// hoursGen draws non-negative quantities with up to two decimal places.
func hoursGen() *rapid.Generator[decimal.Decimal] {
	return rapid.Custom(func(t *rapid.T) decimal.Decimal {
		return decimal.New(rapid.Int64Range(0, 100_000).Draw(t, "cents"), -2)
	})
}

func hourEntryGen() *rapid.Generator[models.HourEntry] {
	return rapid.Custom(func(t *rapid.T) models.HourEntry {
		return models.HourEntry{
			Description: rapid.StringMatching(`[A-Za-z ]{0,12}`).Draw(t, "description"),
			ManHours:    hoursGen().Draw(t, "manHours"),
		}
	})
}

func addOnGen() *rapid.Generator[models.AddOn] {
	return rapid.Custom(func(t *rapid.T) models.AddOn {
		return models.AddOn{
			Description:      rapid.StringMatching(`[A-Za-z ]{0,12}`).Draw(t, "description"),
			Kind:             rapid.SampledFrom([]models.AddOnKind{models.AddOnInternal, models.AddOnExternal, ""}).Draw(t, "kind"),
			DesignHours:      hoursGen().Draw(t, "designHours"),
			ProgrammingHours: hoursGen().Draw(t, "programmingHours"),
			Price:            hoursGen().Draw(t, "price"),
		}
	})
}

func thirdPartyGen() *rapid.Generator[models.ThirdPartyCost] {
	return rapid.Custom(func(t *rapid.T) models.ThirdPartyCost {
		return models.ThirdPartyCost{
			Description: rapid.StringMatching(`[A-Za-z ]{0,12}`).Draw(t, "description"),
			Cost:        hoursGen().Draw(t, "cost"),
		}
	})
}

// quoteGen draws a project type together with line items of its shape.
func quoteGen() *rapid.Generator[models.QuoteInput] {
	return rapid.Custom(func(t *rapid.T) models.QuoteInput {
		pt := rapid.SampledFrom(models.ProjectTypes).Draw(t, "projectType")
		var items models.LineItems
		switch pt.Shape() {
		case models.ShapePackage:
			items = &models.PackageItems{}
		case models.ShapeCorporateWebsite:
			items = &models.CorporateWebsiteItems{
				UniquePages:     hoursGen().Draw(t, "uniquePages"),
				RepetitivePages: hoursGen().Draw(t, "repetitivePages"),
				ShortPages:      hoursGen().Draw(t, "shortPages"),
				AddOns:          rapid.SliceOfN(addOnGen(), 0, 4).Draw(t, "addOns"),
				ThirdPartyCosts: rapid.SliceOfN(thirdPartyGen(), 0, 3).Draw(t, "thirdParty"),
				Maintenance:     rapid.SliceOfN(hourEntryGen(), 0, 3).Draw(t, "maintenance"),
			}
		case models.ShapeDesign:
			items = &models.DesignItems{Items: rapid.SliceOfN(hourEntryGen(), 0, 5).Draw(t, "items")}
		default:
			items = &models.CustomSolutionItems{
				Modules:         rapid.SliceOfN(hourEntryGen(), 0, 4).Draw(t, "modules"),
				AddOns:          rapid.SliceOfN(addOnGen(), 0, 4).Draw(t, "addOns"),
				ThirdPartyCosts: rapid.SliceOfN(thirdPartyGen(), 0, 3).Draw(t, "thirdParty"),
				APIIntegrations: rapid.SliceOfN(hourEntryGen(), 0, 3).Draw(t, "apis"),
				Maintenance:     rapid.SliceOfN(hourEntryGen(), 0, 3).Draw(t, "maintenance"),
			}
		}
		return models.QuoteInput{ProjectType: pt, LineItems: items}
	})
}

func TestProperty_CalculateIsDeterministic(t *testing.T) {
	t.Parallel()
	table := currentTable()

	rapid.Check(t, func(t *rapid.T) {
		in := quoteGen().Draw(t, "quote")
		cur := rapid.SampledFrom([]models.Currency{models.CurrencySGD, models.CurrencyMYR}).Draw(t, "currency")

		first, err := Calculate(table, in.ProjectType, in.LineItems, cur)
		if err != nil {
			t.Fatalf("calculate: %v", err)
		}
		second, err := Calculate(table, in.ProjectType, models.CloneLineItems(in.LineItems), cur)
		if err != nil {
			t.Fatalf("calculate clone: %v", err)
		}
		if !first.Total().Equal(second.Total()) {
			t.Fatalf("totals differ: %s vs %s", first.Total(), second.Total())
		}
		if first.Total().IsNegative() {
			t.Fatalf("negative total %s for non-negative inputs", first.Total())
		}
	})
}

func TestProperty_AddOnsAreAdditive(t *testing.T) {
	t.Parallel()
	table := currentTable()

	rapid.Check(t, func(t *rapid.T) {
		base := &models.CorporateWebsiteItems{
			UniquePages: hoursGen().Draw(t, "uniquePages"),
			AddOns:      rapid.SliceOfN(addOnGen(), 0, 3).Draw(t, "addOns"),
		}
		extra := addOnGen().Draw(t, "extra")

		withExtra := base.CloneItems().(*models.CorporateWebsiteItems)
		withExtra.AddOns = append(withExtra.AddOns, extra)

		before, err := Calculate(table, models.ProjectTypeCorporateWebsites, base, models.CurrencySGD)
		if err != nil {
			t.Fatal(err)
		}
		after, err := Calculate(table, models.ProjectTypeCorporateWebsites, withExtra, models.CurrencySGD)
		if err != nil {
			t.Fatal(err)
		}

		want := extra.Price
		if extra.Kind == models.AddOnInternal {
			want = extra.DesignHours.Mul(table.RateFor(models.RateDesign, models.CurrencySGD)).
				Add(extra.ProgrammingHours.Mul(table.RateFor(models.RateProgramming, models.CurrencySGD)))
		}
		if got := after.Total().Sub(before.Total()); !got.Equal(want) {
			t.Fatalf("adding %+v changed total by %s, want %s", extra, got, want)
		}
	})
}

func TestProperty_StoredQuotationsReproduce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, fixtures.SeedRecords(ctx, mem))
	require.NoError(t, fixtures.SeedRateTables(ctx, mem))
	engine := NewEngine(mem, mem)

	rapid.Check(t, func(t *rapid.T) {
		in := quoteGen().Draw(t, "quote")
		activeID := rapid.SampledFrom([]string{fixtures.RateTableLegacyID, fixtures.RateTableCurrentID}).Draw(t, "active")
		if _, err := mem.ActivateRateTable(ctx, activeID); err != nil {
			t.Fatal(err)
		}

		q, err := engine.Finalize(ctx, FinalizeRequest{ProjectType: in.ProjectType, LineItems: in.LineItems})
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if q.CostVersionID != activeID {
			t.Fatalf("quotation priced with %s, active was %s", q.CostVersionID, activeID)
		}

		// Switching tables afterwards must not change what the quotation reprices to.
		other := fixtures.RateTableCurrentID
		if activeID == other {
			other = fixtures.RateTableLegacyID
		}
		if _, err := mem.ActivateRateTable(ctx, other); err != nil {
			t.Fatal(err)
		}
		ok, err := engine.Verify(ctx, q)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Fatalf("quotation %s no longer reproduces total %s", q.ID, q.TotalCost)
		}
	})
}
