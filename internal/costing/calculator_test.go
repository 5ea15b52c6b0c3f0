package costing

import (
	"testing"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/fixtures"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func currentTable() models.RateTable {
	tables := fixtures.RateTables()
	return tables[len(tables)-1]
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculate_Packages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		projectType models.ProjectType
		currency    models.Currency
		want        string
	}{
		{models.ProjectTypeAIChatbot, models.CurrencySGD, "5000"},
		{models.ProjectTypeAIChatbot, models.CurrencyMYR, "17000"},
		{models.ProjectTypePSGPackageA, models.CurrencySGD, "8000"},
		{models.ProjectTypePSGPackageB, models.CurrencySGD, "12000"},
		{models.ProjectTypePSGPackageC, models.CurrencyMYR, "61200"},
		{models.ProjectTypeEcommerce, models.CurrencySGD, "15000"},
	}

	for _, tt := range tests {
		t.Run(string(tt.projectType)+"/"+string(tt.currency), func(t *testing.T) {
			t.Parallel()
			b, err := Calculate(currentTable(), tt.projectType, &models.PackageItems{}, tt.currency)
			require.NoError(t, err)
			require.Len(t, b, 1)
			require.Equal(t, tt.want, b.Total().String())
		})
	}

	t.Run("nil items use the empty shape", func(t *testing.T) {
		t.Parallel()
		b, err := Calculate(currentTable(), models.ProjectTypeAIChatbot, nil, models.CurrencySGD)
		require.NoError(t, err)
		require.Equal(t, "AI Chatbot", b[0].Label)
		require.Equal(t, "5000", b.Total().String())
	})

	t.Run("missing package rate costs zero", func(t *testing.T) {
		t.Parallel()
		b, err := Calculate(models.RateTable{}, models.ProjectTypePSGPackageA, nil, models.CurrencySGD)
		require.NoError(t, err)
		require.True(t, b.Total().IsZero())
	})
}

func TestCalculate_CorporateWebsites(t *testing.T) {
	t.Parallel()

	pages := func() *models.CorporateWebsiteItems {
		return &models.CorporateWebsiteItems{
			UniquePages:     decimal.NewFromInt(10),
			RepetitivePages: decimal.NewFromInt(20),
			ShortPages:      decimal.NewFromInt(5),
		}
	}

	t.Run("pages only", func(t *testing.T) {
		t.Parallel()
		b, err := Calculate(currentTable(), models.ProjectTypeCorporateWebsites, pages(), models.CurrencySGD)
		require.NoError(t, err)
		require.Equal(t, "3875", b.Total().String())
		require.Equal(t, []string{models.RateUniquePages, models.RateRepetitivePages, models.RateShortPages},
			[]string{b[0].Label, b[1].Label, b[2].Label})
		require.Equal(t, "1500", b[0].Amount.String())
		require.Equal(t, "2000", b[1].Amount.String())
		require.Equal(t, "375", b[2].Amount.String())
	})

	t.Run("internal add-on is priced by hours", func(t *testing.T) {
		t.Parallel()
		items := pages()
		items.AddOns = []models.AddOn{{
			Description:      "Member portal",
			Kind:             models.AddOnInternal,
			DesignHours:      decimal.NewFromInt(8),
			ProgrammingHours: decimal.NewFromInt(16),
			Price:            decimal.NewFromInt(99999),
		}}
		b, err := Calculate(currentTable(), models.ProjectTypeCorporateWebsites, items, models.CurrencySGD)
		require.NoError(t, err)
		require.Equal(t, "7075", b.Total().String())
		require.Equal(t, "Add-on: Member portal", b[3].Label)
		require.Equal(t, "3200", b[3].Amount.String())
	})

	t.Run("external add-on, third party and maintenance", func(t *testing.T) {
		t.Parallel()
		items := &models.CorporateWebsiteItems{
			AddOns: []models.AddOn{
				{Description: "Booking plugin", Kind: models.AddOnExternal, Price: dec("450.50")},
				{Description: "No price", Kind: models.AddOnExternal},
			},
			ThirdPartyCosts: []models.ThirdPartyCost{{Description: "Hosting", Cost: decimal.NewFromInt(360)}},
			Maintenance:     []models.HourEntry{{Description: "Monthly", ManHours: decimal.NewFromInt(3)}},
		}
		b, err := Calculate(currentTable(), models.ProjectTypeCorporateWebsites, items, models.CurrencySGD)
		require.NoError(t, err)
		require.Len(t, b, 7)
		require.Equal(t, "Third party: Hosting", b[5].Label)
		require.Equal(t, "Maintenance: Monthly", b[6].Label)
		require.Equal(t, "420", b[6].Amount.String())
		require.Equal(t, "1230.5", b.Total().String())
	})

	t.Run("MYR uses the MYR column only", func(t *testing.T) {
		t.Parallel()
		b, err := Calculate(currentTable(), models.ProjectTypeCorporateWebsites, pages(), models.CurrencyMYR)
		require.NoError(t, err)
		// 10*510 + 20*340 + 5*255
		require.Equal(t, "13175", b.Total().String())
	})

	t.Run("negative pages multiply through", func(t *testing.T) {
		t.Parallel()
		items := &models.CorporateWebsiteItems{UniquePages: decimal.NewFromInt(-2)}
		b, err := Calculate(currentTable(), models.ProjectTypeCorporateWebsites, items, models.CurrencySGD)
		require.NoError(t, err)
		require.Equal(t, "-300", b.Total().String())
	})

	t.Run("typed nil items", func(t *testing.T) {
		t.Parallel()
		var items *models.CorporateWebsiteItems
		b, err := Calculate(currentTable(), models.ProjectTypeCorporateWebsites, items, models.CurrencySGD)
		require.NoError(t, err)
		require.True(t, b.Total().IsZero())
	})
}

func TestCalculate_Design(t *testing.T) {
	t.Parallel()

	items := &models.DesignItems{Items: []models.HourEntry{
		{Description: "Social posts", ManHours: decimal.NewFromInt(10)},
		{Description: "Banner", ManHours: dec("2.5")},
	}}

	for _, pt := range []models.ProjectType{models.ProjectTypeDigitalMarketing, models.ProjectTypeGraphicDesigns} {
		t.Run(string(pt), func(t *testing.T) {
			t.Parallel()
			b, err := Calculate(currentTable(), pt, items, models.CurrencySGD)
			require.NoError(t, err)
			require.Equal(t, "Design: Social posts", b[0].Label)
			require.Equal(t, "1200", b[0].Amount.String())
			require.Equal(t, "1500", b.Total().String())
		})
	}
}

func TestCalculate_NegativeQuantities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		projectType models.ProjectType
		items       models.LineItems
		want        string
	}{
		{
			name:        "design hours",
			projectType: models.ProjectTypeGraphicDesigns,
			items:       &models.DesignItems{Items: []models.HourEntry{{Description: "Refund", ManHours: decimal.NewFromInt(-3)}}},
			want:        "-360",
		},
		{
			name:        "maintenance hours offset pages",
			projectType: models.ProjectTypeCorporateWebsites,
			items: &models.CorporateWebsiteItems{
				UniquePages: decimal.NewFromInt(2),
				Maintenance: []models.HourEntry{{ManHours: decimal.NewFromInt(-1)}},
			},
			want: "160",
		},
		{
			name:        "internal add-on with negative hours",
			projectType: models.ProjectTypeCustomSolutions,
			items: &models.CustomSolutionItems{AddOns: []models.AddOn{{
				Kind:             models.AddOnInternal,
				DesignHours:      decimal.NewFromInt(-1),
				ProgrammingHours: decimal.NewFromInt(-1),
			}}},
			want: "-260",
		},
		{
			name:        "negative third party cost",
			projectType: models.ProjectTypeCustomSolutions,
			items:       &models.CustomSolutionItems{ThirdPartyCosts: []models.ThirdPartyCost{{Cost: dec("-49.90")}}},
			want:        "-49.9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := Calculate(currentTable(), tt.projectType, tt.items, models.CurrencySGD)
			require.NoError(t, err)
			require.Equal(t, tt.want, b.Total().String())
		})
	}
}

func TestCalculate_CustomSolutions(t *testing.T) {
	t.Parallel()

	items := &models.CustomSolutionItems{
		Modules:         []models.HourEntry{{Description: "Auth", ManHours: decimal.NewFromInt(40)}},
		AddOns:          []models.AddOn{{Description: "SSO", Kind: models.AddOnInternal, DesignHours: decimal.NewFromInt(2), ProgrammingHours: decimal.NewFromInt(6)}},
		ThirdPartyCosts: []models.ThirdPartyCost{{Description: "SMS credits", Cost: decimal.NewFromInt(200)}},
		APIIntegrations: []models.HourEntry{{Description: "Stripe", ManHours: decimal.NewFromInt(8)}},
		Maintenance:     []models.HourEntry{{ManHours: decimal.NewFromInt(4)}},
	}

	b, err := Calculate(currentTable(), models.ProjectTypeCustomSolutions, items, models.CurrencySGD)
	require.NoError(t, err)

	labels := make([]string, len(b))
	for i, c := range b {
		labels[i] = c.Label
	}
	require.Equal(t, []string{"Module: Auth", "Add-on: SSO", "Third party: SMS credits", "API integration: Stripe", "Maintenance"}, labels)
	// 5600 + (240 + 840) + 200 + 1120 + 560
	require.Equal(t, "8560", b.Total().String())
}

func TestCalculate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		projectType models.ProjectType
		items       models.LineItems
		currency    models.Currency
		wantErr     error
	}{
		{"unknown project type", "mobile_app", nil, models.CurrencySGD, ErrUnknownProjectType},
		{"unsupported currency", models.ProjectTypeAIChatbot, nil, "USD", ErrUnsupportedCurrency},
		{"empty currency", models.ProjectTypeAIChatbot, nil, "", ErrUnsupportedCurrency},
		{"shape mismatch", models.ProjectTypeGraphicDesigns, &models.CorporateWebsiteItems{}, models.CurrencySGD, ErrLineItemsMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Calculate(currentTable(), tt.projectType, tt.items, tt.currency)
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestCalculate_FirstDuplicateDescriptionWins(t *testing.T) {
	t.Parallel()

	table := models.RateTable{Items: []models.RateItem{
		{Kind: models.RateKindFixed, Description: "AI Chatbot", CostSGD: decimal.NewFromInt(1)},
		{Kind: models.RateKindFixed, Description: "AI Chatbot", CostSGD: decimal.NewFromInt(2)},
	}}
	b, err := Calculate(table, models.ProjectTypeAIChatbot, nil, models.CurrencySGD)
	require.NoError(t, err)
	require.Equal(t, "1", b.Total().String())
}
