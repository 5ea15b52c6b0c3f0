package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/config"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/costing"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T) (*console, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{
		LogLevel:        "disabled",
		LogFormat:       config.LogFormatConsole,
		DefaultCurrency: models.CurrencySGD,
		SeedFixtures:    true,
		ExportDir:       t.TempDir(),
	}
	var out bytes.Buffer
	c, closeFn, err := newConsole(context.Background(), cfg, &out)
	require.NoError(t, err)
	t.Cleanup(closeFn)
	c.now = func() time.Time { return time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC) }
	return c, &out
}

func writeRequest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

type quotationOutput struct {
	LineageID     string `json:"lineageId"`
	Version       int    `json:"version"`
	ClientID      string `json:"clientId"`
	CostVersionID string `json:"costVersionId"`
	Currency      string `json:"currency"`
	TotalCost     string `json:"totalCost"`
}

func TestConsole_Rates(t *testing.T) {
	t.Parallel()
	c, out := newTestConsole(t)

	require.NoError(t, c.run(context.Background(), []string{"rates"}))
	require.Contains(t, out.String(), "2025.1,true,fixed,AI Chatbot,5000.00,17000.00")
}

func TestConsole_History(t *testing.T) {
	t.Parallel()
	c, out := newTestConsole(t)

	require.NoError(t, c.run(context.Background(), []string{"history"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "* 2025.1"))
	require.True(t, strings.HasPrefix(lines[1], "  2024.1"))
}

func TestConsole_Quote(t *testing.T) {
	t.Parallel()
	c, out := newTestConsole(t)
	ctx := context.Background()

	path := writeRequest(t, `{
		"projectType": "corporate_websites",
		"clientId": "client-001",
		"lineItems": {"uniquePages": 10, "repetitivePages": 20, "shortPages": 5}
	}`)

	require.NoError(t, c.run(ctx, []string{"quote", path}))

	var first quotationOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &first))
	require.Equal(t, 1, first.Version)
	require.Equal(t, "3875", first.TotalCost)
	require.Equal(t, "SGD", first.Currency)
	require.Equal(t, "client-001", first.ClientID)
	require.Equal(t, "cost-2025-01", first.CostVersionID)

	t.Run("revision increments the version", func(t *testing.T) {
		out.Reset()
		revision := writeRequest(t, `{
			"projectType": "corporate_websites",
			"lineageId": "`+first.LineageID+`",
			"currency": "myr",
			"lineItems": {"uniquePages": 1}
		}`)
		require.NoError(t, c.run(ctx, []string{"quote", revision}))

		var second quotationOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &second))
		require.Equal(t, first.LineageID, second.LineageID)
		require.Equal(t, 2, second.Version)
		require.Equal(t, "MYR", second.Currency)
		require.Equal(t, "510", second.TotalCost)
		require.Equal(t, "client-001", second.ClientID)
	})
}

func TestConsole_QuoteErrors(t *testing.T) {
	t.Parallel()
	c, _ := newTestConsole(t)
	ctx := context.Background()

	tests := []struct {
		name string
		body string
	}{
		{"unknown project type", `{"projectType": "mobile_app"}`},
		{"unsupported currency", `{"projectType": "ai_chatbot", "currency": "USD"}`},
		{"unknown client", `{"projectType": "ai_chatbot", "clientId": "client-404"}`},
		{"wrong line item shape", `{"projectType": "graphic_designs", "lineItems": {"uniquePages": 3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.run(ctx, []string{"quote", writeRequest(t, tt.body)})
			require.ErrorIs(t, err, costing.ErrInvalidArgument)
		})
	}
}

func TestConsole_Chart(t *testing.T) {
	t.Parallel()
	c, out := newTestConsole(t)

	req := writeRequest(t, `{
		"projectType": "custom_solutions",
		"lineItems": {
			"modules": [{"description": "Auth", "manHours": 40}],
			"addOns": [{"description": "Payments", "kind": "external", "price": 900}]
		}
	}`)
	png := filepath.Join(t.TempDir(), "breakdown.png")

	require.NoError(t, c.run(context.Background(), []string{"chart", req, png}))
	require.Contains(t, out.String(), "Created "+png)

	data, err := os.ReadFile(png)
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, data[:4])
}

func TestConsole_Export(t *testing.T) {
	t.Parallel()
	c, _ := newTestConsole(t)
	ctx := context.Background()

	require.NoError(t, c.run(ctx, []string{"quote", writeRequest(t, `{"projectType": "ai_chatbot", "clientId": "client-002"}`)}))

	for _, report := range []string{"staff", "quotations", "rates"} {
		t.Run(report, func(t *testing.T) {
			require.NoError(t, c.run(ctx, []string{"export", report}))
			data, err := os.ReadFile(filepath.Join(c.cfg.ExportDir, report+"_2026-01-31.csv"))
			require.NoError(t, err)
			require.NotEmpty(t, data)
		})
	}

	data, err := os.ReadFile(filepath.Join(c.cfg.ExportDir, "quotations_2026-01-31.csv"))
	require.NoError(t, err)
	require.Contains(t, string(data), "Kopi Kita Sdn Bhd")
}

func TestConsole_Usage(t *testing.T) {
	t.Parallel()
	c, _ := newTestConsole(t)
	ctx := context.Background()

	for _, args := range [][]string{nil, {"bogus"}, {"quote"}, {"chart", "a.json"}, {"export", "invoices"}} {
		require.ErrorIs(t, c.run(ctx, args), errUsage)
	}
}

func TestNewConsole_WithoutFixtures(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{DefaultCurrency: models.CurrencySGD, ExportDir: t.TempDir()}
	c, closeFn, err := newConsole(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	defer closeFn()

	err = c.run(context.Background(), []string{"rates"})
	require.ErrorIs(t, err, costing.ErrConfiguration)
}
