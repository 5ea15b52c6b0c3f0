// Package export renders rate tables, quotations and staff as CSV files and
// cost breakdowns as PNG charts.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// Report kinds used in export file names.
const (
	ReportRates      = "rates"
	ReportQuotations = "quotations"
	ReportStaff      = "staff"
)

// Filename returns a dated export file name like "quotations_2026-01-31.csv".
func Filename(report string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", report, now.Format("2006-01-02"))
}

// RateTableCSV renders one rate table version, one row per rate item.
func RateTableCSV(table models.RateTable) ([]byte, error) {
	header := []string{"Version", "Active", "Kind", "Description", "Cost SGD", "Cost MYR"}
	rows := make([][]string, 0, len(table.Items))
	for _, item := range table.Items {
		rows = append(rows, []string{
			table.VersionLabel,
			strconv.FormatBool(table.IsActive),
			string(item.Kind),
			item.Description,
			item.CostSGD.StringFixed(2),
			item.CostMYR.StringFixed(2),
		})
	}
	return writeCSV(header, rows)
}

// QuotationsCSV renders quotations, one row per stored version. clientNames
// maps client ids to company names; unknown ids are written as-is.
func QuotationsCSV(quotes []models.Quotation, clientNames map[string]string) ([]byte, error) {
	header := []string{"Quotation", "Lineage", "Version", "Date", "Client", "Project Type", "Currency", "Total", "Rate Table"}
	rows := make([][]string, 0, len(quotes))
	for i := range quotes {
		q := &quotes[i]
		client := q.ClientID
		if name, ok := clientNames[q.ClientID]; ok {
			client = name
		}
		rows = append(rows, []string{
			q.ID,
			q.LineageID,
			strconv.Itoa(q.Version),
			q.CreatedAt.Format(timestampLayout),
			client,
			string(q.ProjectType),
			string(q.Currency),
			q.TotalCost.StringFixed(2),
			q.CostVersionID,
		})
	}
	return writeCSV(header, rows)
}

// StaffCSV renders the staff directory. roleNames maps role ids to names.
func StaffCSV(staff []models.Staff, roleNames map[string]string) ([]byte, error) {
	header := []string{"ID", "Name", "Email", "Department", "Role", "Status"}
	rows := make([][]string, 0, len(staff))
	for _, s := range staff {
		role := s.RoleID
		if name, ok := roleNames[s.RoleID]; ok {
			role = name
		}
		rows = append(rows, []string{s.ID, s.Name, s.Email, s.Department, role, s.Status})
	}
	return writeCSV(header, rows)
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
