//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/costing"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/export"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/fixtures"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/shopspring/decimal"
)

func main() {
	tables := fixtures.RateTables()
	current := tables[len(tables)-1]

	items := &models.CorporateWebsiteItems{
		UniquePages:     decimal.NewFromInt(10),
		RepetitivePages: decimal.NewFromInt(20),
		ShortPages:      decimal.NewFromInt(5),
		AddOns: []models.AddOn{
			{Description: "Member portal", Kind: models.AddOnInternal, DesignHours: decimal.NewFromInt(8), ProgrammingHours: decimal.NewFromInt(16)},
			{Description: "Booking plugin", Kind: models.AddOnExternal, Price: decimal.NewFromInt(450)},
		},
		ThirdPartyCosts: []models.ThirdPartyCost{
			{Description: "Hosting (1 year)", Cost: decimal.NewFromInt(360)},
		},
	}

	breakdown, err := costing.Calculate(current, models.ProjectTypeCorporateWebsites, items, models.CurrencySGD)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	title := fmt.Sprintf("Corporate website - S$%s (rates %s)", breakdown.Total().StringFixed(2), current.VersionLabel)
	chartData, err := export.BreakdownChart(breakdown, title)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created graph.png - Example quotation breakdown chart")
}
