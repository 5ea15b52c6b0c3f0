package costing

import (
	"fmt"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// rateIndex maps rate item descriptions to items for one table. The first
// item wins if a description repeats.
type rateIndex map[string]models.RateItem

func newRateIndex(table models.RateTable) rateIndex {
	idx := make(rateIndex, len(table.Items))
	for _, item := range table.Items {
		if _, seen := idx[item.Description]; !seen {
			idx[item.Description] = item
		}
	}
	return idx
}

// pricer binds a rate index to one currency so a total never mixes currencies.
type pricer struct {
	rates    rateIndex
	currency models.Currency
}

func (p pricer) rate(description string) decimal.Decimal {
	item, ok := p.rates[description]
	if !ok {
		return decimal.Zero
	}
	return item.Cost(p.currency)
}

// Calculate prices line items against table in currency. It is a pure
// function of its arguments: the same table and items always give the same
// breakdown. Descriptions missing from the table contribute zero.
func Calculate(table models.RateTable, projectType models.ProjectType, items models.LineItems, currency models.Currency) (models.Breakdown, error) {
	return calculate(newRateIndex(table), projectType, items, currency)
}

// checkInput reports argument errors without touching any rate table.
// Nil items are accepted for every project type.
func checkInput(projectType models.ProjectType, items models.LineItems, currency models.Currency) error {
	if !currency.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedCurrency, currency)
	}
	shape := projectType.Shape()
	if shape == "" {
		return fmt.Errorf("%w: %q", ErrUnknownProjectType, projectType)
	}
	if items != nil && items.Shape() != shape {
		return fmt.Errorf("%w: %s expects %s items, got %s",
			ErrLineItemsMismatch, projectType, shape, items.Shape())
	}
	return nil
}

func calculate(rates rateIndex, projectType models.ProjectType, items models.LineItems, currency models.Currency) (models.Breakdown, error) {
	if err := checkInput(projectType, items, currency); err != nil {
		return nil, err
	}
	if items == nil {
		var err error
		if items, err = projectType.NewLineItems(); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProjectType, projectType)
		}
	}

	p := pricer{rates: rates, currency: currency}

	switch v := items.(type) {
	case *models.PackageItems:
		name, _ := projectType.PackageRate()
		return models.Breakdown{{Label: name, Amount: p.rate(name)}}, nil
	case *models.CorporateWebsiteItems:
		if v == nil {
			v = &models.CorporateWebsiteItems{}
		}
		return p.corporateWebsite(v), nil
	case *models.DesignItems:
		if v == nil {
			v = &models.DesignItems{}
		}
		return p.design(v), nil
	case *models.CustomSolutionItems:
		if v == nil {
			v = &models.CustomSolutionItems{}
		}
		return p.customSolution(v), nil
	default:
		return nil, fmt.Errorf("%w: unsupported line item type %T", ErrLineItemsMismatch, items)
	}
}

func (p pricer) corporateWebsite(v *models.CorporateWebsiteItems) models.Breakdown {
	b := models.Breakdown{
		{Label: models.RateUniquePages, Amount: v.UniquePages.Mul(p.rate(models.RateUniquePages))},
		{Label: models.RateRepetitivePages, Amount: v.RepetitivePages.Mul(p.rate(models.RateRepetitivePages))},
		{Label: models.RateShortPages, Amount: v.ShortPages.Mul(p.rate(models.RateShortPages))},
	}
	b = append(b, p.addOns(v.AddOns)...)
	b = append(b, thirdParty(v.ThirdPartyCosts)...)
	b = append(b, p.programmingHours("Maintenance", v.Maintenance)...)
	return b
}

func (p pricer) design(v *models.DesignItems) models.Breakdown {
	designRate := p.rate(models.RateDesign)
	b := make(models.Breakdown, 0, len(v.Items))
	for _, item := range v.Items {
		b = append(b, models.CostComponent{
			Label:  label("Design", item.Description),
			Amount: item.ManHours.Mul(designRate),
		})
	}
	return b
}

func (p pricer) customSolution(v *models.CustomSolutionItems) models.Breakdown {
	var b models.Breakdown
	b = append(b, p.programmingHours("Module", v.Modules)...)
	b = append(b, p.addOns(v.AddOns)...)
	b = append(b, thirdParty(v.ThirdPartyCosts)...)
	b = append(b, p.programmingHours("API integration", v.APIIntegrations)...)
	b = append(b, p.programmingHours("Maintenance", v.Maintenance)...)
	return b
}

// addOnCost prices one add-on. Anything that is not internal is charged at
// its flat price, which is zero when absent.
func (p pricer) addOnCost(a models.AddOn) decimal.Decimal {
	if a.Kind == models.AddOnInternal {
		return a.DesignHours.Mul(p.rate(models.RateDesign)).
			Add(a.ProgrammingHours.Mul(p.rate(models.RateProgramming)))
	}
	return a.Price
}

func (p pricer) addOns(addOns []models.AddOn) models.Breakdown {
	b := make(models.Breakdown, 0, len(addOns))
	for _, a := range addOns {
		b = append(b, models.CostComponent{Label: label("Add-on", a.Description), Amount: p.addOnCost(a)})
	}
	return b
}

func (p pricer) programmingHours(prefix string, entries []models.HourEntry) models.Breakdown {
	programming := p.rate(models.RateProgramming)
	b := make(models.Breakdown, 0, len(entries))
	for _, e := range entries {
		b = append(b, models.CostComponent{Label: label(prefix, e.Description), Amount: e.ManHours.Mul(programming)})
	}
	return b
}

func thirdParty(costs []models.ThirdPartyCost) models.Breakdown {
	b := make(models.Breakdown, 0, len(costs))
	for _, c := range costs {
		b = append(b, models.CostComponent{Label: label("Third party", c.Description), Amount: c.Cost})
	}
	return b
}

func label(prefix, description string) string {
	if description == "" {
		return prefix
	}
	return prefix + ": " + description
}
