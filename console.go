package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/config"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/costing"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/database"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/export"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/fixtures"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/logger"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/repository"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/store"
)

const usage = `usage: costing-console <command>

commands:
  version                        print build information
  rates                          print the active rate table as CSV
  history                        list rate table versions, newest first
  quote <request.json>           price a request and store it as a quotation
  chart <request.json> <out.png> draw the cost breakdown of a request
  export staff|quotations|rates  write a CSV report to EXPORT_DIR`

var errUsage = errors.New(usage)

// rateTableStore is the rate table collection with its write side.
type rateTableStore interface {
	costing.RateTableSource
	fixtures.RateTableTarget
}

// quotationStore is the quotation collection including listing.
type quotationStore interface {
	costing.QuotationStore
	Quotations(ctx context.Context, f store.QuotationFilter) ([]models.Quotation, error)
}

// console wires the engine to its stores and runs one command.
type console struct {
	cfg        *config.Config
	engine     *costing.Engine
	records    *store.Memory
	quotations quotationStore
	out        io.Writer
	now        func() time.Time
}

// newConsole builds the stores selected by cfg. Staff and client records are
// always kept in memory; rate tables and quotations move to Postgres when a
// database is configured. The returned func releases the database pool.
func newConsole(ctx context.Context, cfg *config.Config, out io.Writer) (*console, func(), error) {
	records := store.NewMemory()
	if cfg.SeedFixtures {
		if err := fixtures.SeedRecords(ctx, records); err != nil {
			return nil, nil, err
		}
	}

	var (
		tables     rateTableStore = records
		quotations quotationStore = records
		closeFn                   = func() {}
	)

	if cfg.UsePostgres() {
		pool, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolOptions{MaxConns: cfg.DBMaxConns})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		tables = repository.NewRateTableRepository(pool)
		quotations = repository.NewQuotationRepository(pool)
		closeFn = pool.Close
		logger.Log.Info().Msg("Database initialized successfully")
	}

	if cfg.SeedFixtures {
		if err := seedRateTablesOnce(ctx, tables); err != nil {
			closeFn()
			return nil, nil, err
		}
	}

	return &console{
		cfg:        cfg,
		engine:     costing.NewEngine(tables, quotations),
		records:    records,
		quotations: quotations,
		out:        out,
		now:        time.Now,
	}, closeFn, nil
}

// seedRateTablesOnce loads the sample rate tables into an empty collection.
func seedRateTablesOnce(ctx context.Context, tables rateTableStore) error {
	existing, err := tables.RateTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rate tables: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	return fixtures.SeedRateTables(ctx, tables)
}

func (c *console) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "rates":
		return c.rates(ctx)
	case "history":
		return c.history(ctx)
	case "quote":
		if len(args) != 2 {
			return errUsage
		}
		return c.quote(ctx, args[1])
	case "chart":
		if len(args) != 3 {
			return errUsage
		}
		return c.chart(ctx, args[1], args[2])
	case "export":
		if len(args) != 2 {
			return errUsage
		}
		return c.export(ctx, args[1])
	default:
		return errUsage
	}
}

func (c *console) rates(ctx context.Context) error {
	table, err := c.engine.ActiveTable(ctx)
	if err != nil {
		return err
	}
	data, err := export.RateTableCSV(table)
	if err != nil {
		return err
	}
	_, err = c.out.Write(data)
	return err
}

func (c *console) history(ctx context.Context) error {
	tables, err := c.engine.History(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		marker := " "
		if t.IsActive {
			marker = "*"
		}
		if _, err := fmt.Fprintf(c.out, "%s %-10s %-14s %s %d items\n",
			marker, t.VersionLabel, t.ID, t.CreatedAt.Format("2006-01-02"), len(t.Items)); err != nil {
			return err
		}
	}
	return nil
}

// quoteRequest is the file format of quote and chart. Besides the project
// type and line items it may name a currency, a lineage to revise and a
// client.
type quoteRequest struct {
	Input     models.QuoteInput
	Currency  models.Currency
	LineageID string
	ClientID  string
}

func readQuoteRequest(path string, defaultCurrency models.Currency) (quoteRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return quoteRequest{}, fmt.Errorf("failed to read request: %w", err)
	}

	var req quoteRequest
	if err := json.Unmarshal(data, &req.Input); err != nil {
		return quoteRequest{}, fmt.Errorf("%w: %w", costing.ErrInvalidArgument, err)
	}

	var meta struct {
		Currency  string `json:"currency"`
		LineageID string `json:"lineageId"`
		ClientID  string `json:"clientId"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return quoteRequest{}, fmt.Errorf("%w: %w", costing.ErrInvalidArgument, err)
	}

	req.Currency = defaultCurrency
	if meta.Currency != "" {
		cur, err := models.ParseCurrency(meta.Currency)
		if err != nil {
			return quoteRequest{}, fmt.Errorf("%w: %w", costing.ErrUnsupportedCurrency, err)
		}
		req.Currency = cur
	}
	req.LineageID = meta.LineageID
	req.ClientID = meta.ClientID
	return req, nil
}

func (c *console) quote(ctx context.Context, path string) error {
	req, err := readQuoteRequest(path, c.cfg.DefaultCurrency)
	if err != nil {
		return err
	}
	if req.ClientID != "" {
		if _, err := c.records.Client(ctx, req.ClientID); err != nil {
			return fmt.Errorf("%w: %w", costing.ErrInvalidArgument, err)
		}
	}

	q, err := c.engine.Finalize(ctx, costing.FinalizeRequest{
		ProjectType: req.Input.ProjectType,
		LineItems:   req.Input.LineItems,
		Currency:    req.Currency,
		LineageID:   req.LineageID,
		ClientID:    req.ClientID,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(q)
}

func (c *console) chart(ctx context.Context, path, outPath string) error {
	req, err := readQuoteRequest(path, c.cfg.DefaultCurrency)
	if err != nil {
		return err
	}

	breakdown, table, err := c.engine.ComputeBreakdown(ctx, req.Input.ProjectType, req.Input.LineItems, req.Currency)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s - %s%s (rates %s)",
		req.Input.ProjectType, req.Currency.Symbol(), breakdown.Total().StringFixed(2), table.VersionLabel)
	png, err := export.BreakdownChart(breakdown, title)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, png, 0o600); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	_, err = fmt.Fprintf(c.out, "Created %s\n", outPath)
	return err
}

func (c *console) export(ctx context.Context, report string) error {
	var (
		data []byte
		err  error
	)

	switch report {
	case export.ReportStaff:
		data, err = c.exportStaff(ctx)
	case export.ReportQuotations:
		data, err = c.exportQuotations(ctx)
	case export.ReportRates:
		var table models.RateTable
		if table, err = c.engine.ActiveTable(ctx); err == nil {
			data, err = export.RateTableCSV(table)
		}
	default:
		return errUsage
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.cfg.ExportDir, 0o750); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(c.cfg.ExportDir, export.Filename(report, c.now()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	log := logger.Component("export")
	log.Info().Str("report", report).Str("path", path).Msg("Export written")
	_, err = fmt.Fprintf(c.out, "Created %s\n", path)
	return err
}

func (c *console) exportStaff(ctx context.Context) ([]byte, error) {
	staff, err := c.records.StaffList(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	roles, err := c.records.Roles(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	roleNames := make(map[string]string, len(roles))
	for _, r := range roles {
		roleNames[r.ID] = r.Name
	}
	return export.StaffCSV(staff, roleNames)
}

func (c *console) exportQuotations(ctx context.Context) ([]byte, error) {
	quotes, err := c.quotations.Quotations(ctx, store.QuotationFilter{})
	if err != nil {
		return nil, err
	}
	clients, err := c.records.Clients(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	clientNames := make(map[string]string, len(clients))
	for _, cl := range clients {
		clientNames[cl.ID] = cl.CompanyName
	}
	return export.QuotationsCSV(quotes, clientNames)
}
