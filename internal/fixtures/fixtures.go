// Package fixtures holds the console's sample dataset and loads it into a store.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// Fixture ids referenced by tests and the seeded rate tables.
const (
	StaffAdminID       = "staff-001"
	RateTableLegacyID  = "cost-2024-01"
	RateTableCurrentID = "cost-2025-01"
)

// RecordTarget receives seeded console records.
type RecordTarget interface {
	CreateRole(ctx context.Context, role *models.Role) error
	CreateStaff(ctx context.Context, s *models.Staff) error
	CreateClient(ctx context.Context, c *models.Client) error
	CreatePOC(ctx context.Context, p *models.ClientPOC) error
}

// RateTableTarget receives seeded rate tables.
type RateTableTarget interface {
	AppendRateTable(ctx context.Context, table models.RateTable, activate bool) (models.RateTable, error)
}

// Roles returns the sample roles.
func Roles() []models.Role {
	return []models.Role{
		{
			ID:          "role-admin",
			Name:        "Administrator",
			Description: "Full access to every screen",
			Permissions: append([]models.Permission(nil), models.AllPermissions...),
		},
		{
			ID:          "role-sales",
			Name:        "Sales",
			Description: "Prepares quotations for clients",
			Permissions: []models.Permission{
				models.PermClientsRead, models.PermClientsWrite,
				models.PermRatesRead,
				models.PermQuotationsRead, models.PermQuotationsWrite,
			},
		},
		{
			ID:          "role-finance",
			Name:        "Finance",
			Description: "Maintains cost rates",
			Permissions: []models.Permission{
				models.PermRatesRead, models.PermRatesWrite,
				models.PermQuotationsRead,
			},
		},
	}
}

// Staff returns the sample staff directory.
func Staff() []models.Staff {
	return []models.Staff{
		{ID: StaffAdminID, Name: "Aisha Rahman", Email: "aisha.rahman@example.com", Department: "Operations", RoleID: "role-admin"},
		{ID: "staff-002", Name: "Daniel Tan", Email: "daniel.tan@example.com", Department: "Sales", RoleID: "role-sales"},
		{ID: "staff-003", Name: "Mei Ling Wong", Email: "meiling.wong@example.com", Department: "Finance", RoleID: "role-finance"},
		{ID: "staff-004", Name: "Ravi Kumar", Email: "ravi.kumar@example.com", Department: "Engineering", RoleID: "role-sales", Status: models.StatusInactive},
	}
}

// Clients returns the sample client companies.
func Clients() []models.Client {
	return []models.Client{
		{ID: "client-001", CompanyName: "Harbourfront Logistics Pte Ltd", Industry: "Logistics", Address: "1 Harbourfront Ave, Singapore"},
		{ID: "client-002", CompanyName: "Kopi Kita Sdn Bhd", Industry: "Food & Beverage", Address: "Jalan Bukit Bintang, Kuala Lumpur"},
		{ID: "client-003", CompanyName: "Orchid Dental Clinic", Industry: "Healthcare", Address: "Orchard Road, Singapore", Status: models.StatusInactive},
	}
}

// POCs returns the sample client points of contact.
func POCs() []models.ClientPOC {
	return []models.ClientPOC{
		{ID: "poc-001", ClientID: "client-001", Name: "Jason Lim", Email: "jason.lim@harbourfront.example", Phone: "+65 6123 4567", Designation: "IT Manager", IsPrimary: true},
		{ID: "poc-002", ClientID: "client-001", Name: "Priya Nair", Email: "priya.nair@harbourfront.example", Designation: "Procurement"},
		{ID: "poc-003", ClientID: "client-002", Name: "Farid Hassan", Email: "farid@kopikita.example", Phone: "+60 3 2141 0000", Designation: "Founder", IsPrimary: true},
		{ID: "poc-004", ClientID: "client-003", Name: "Dr. Grace Ong", Email: "grace.ong@orchid.example", Designation: "Director", IsPrimary: true},
	}
}

func rate(kind models.RateKind, description, sgd, myr string) models.RateItem {
	return models.RateItem{
		Kind:        kind,
		Description: description,
		CostSGD:     decimal.RequireFromString(sgd),
		CostMYR:     decimal.RequireFromString(myr),
	}
}

// RateTables returns the sample rate table history, oldest first. Only the
// last one is meant to be active.
func RateTables() []models.RateTable {
	return []models.RateTable{
		{
			ID:           RateTableLegacyID,
			VersionLabel: "2024.1",
			CreatedAt:    time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			CreatedBy:    StaffAdminID,
			Items: []models.RateItem{
				rate(models.RateKindFixed, "AI Chatbot", "4500", "15300"),
				rate(models.RateKindFixed, "PSG Package A", "7500", "25500"),
				rate(models.RateKindFixed, "PSG Package B", "11000", "37400"),
				rate(models.RateKindFixed, "PSG Package C", "16500", "56100"),
				rate(models.RateKindFixed, "Ecommerce", "14000", "47600"),
				rate(models.RateKindFixed, models.RateUniquePages, "130", "442"),
				rate(models.RateKindFixed, models.RateRepetitivePages, "90", "306"),
				rate(models.RateKindFixed, models.RateShortPages, "65", "221"),
				rate(models.RateKindPerManHour, models.RateDesign, "110", "374"),
				rate(models.RateKindPerManHour, models.RateProgramming, "130", "442"),
			},
		},
		{
			ID:           RateTableCurrentID,
			VersionLabel: "2025.1",
			CreatedAt:    time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
			CreatedBy:    StaffAdminID,
			Items: []models.RateItem{
				rate(models.RateKindFixed, "AI Chatbot", "5000", "17000"),
				rate(models.RateKindFixed, "PSG Package A", "8000", "27200"),
				rate(models.RateKindFixed, "PSG Package B", "12000", "40800"),
				rate(models.RateKindFixed, "PSG Package C", "18000", "61200"),
				rate(models.RateKindFixed, "Ecommerce", "15000", "51000"),
				rate(models.RateKindFixed, models.RateUniquePages, "150", "510"),
				rate(models.RateKindFixed, models.RateRepetitivePages, "100", "340"),
				rate(models.RateKindFixed, models.RateShortPages, "75", "255"),
				rate(models.RateKindPerManHour, models.RateDesign, "120", "408"),
				rate(models.RateKindPerManHour, models.RateProgramming, "140", "476"),
			},
		},
	}
}

// SeedRecords inserts the sample roles, staff, clients and contacts.
func SeedRecords(ctx context.Context, target RecordTarget) error {
	for _, r := range Roles() {
		if err := target.CreateRole(ctx, &r); err != nil {
			return fmt.Errorf("failed to seed role %q: %w", r.Name, err)
		}
	}
	for _, s := range Staff() {
		if err := target.CreateStaff(ctx, &s); err != nil {
			return fmt.Errorf("failed to seed staff %q: %w", s.ID, err)
		}
	}
	for _, c := range Clients() {
		if err := target.CreateClient(ctx, &c); err != nil {
			return fmt.Errorf("failed to seed client %q: %w", c.ID, err)
		}
	}
	for _, p := range POCs() {
		if err := target.CreatePOC(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed contact %q: %w", p.ID, err)
		}
	}
	return nil
}

// SeedRateTables appends the sample rate table history and activates the
// newest version.
func SeedRateTables(ctx context.Context, target RateTableTarget) error {
	tables := RateTables()
	for i, t := range tables {
		if _, err := target.AppendRateTable(ctx, t, i == len(tables)-1); err != nil {
			return fmt.Errorf("failed to seed rate table %q: %w", t.VersionLabel, err)
		}
	}
	return nil
}
