package fixtures

import (
	"context"
	"testing"

	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/store"
	"github.com/stretchr/testify/require"
)

func TestRateTablesAreValid(t *testing.T) {
	t.Parallel()

	tables := RateTables()
	require.Len(t, tables, 2)
	require.Equal(t, RateTableLegacyID, tables[0].ID)
	require.Equal(t, RateTableCurrentID, tables[1].ID)
	require.True(t, tables[0].CreatedAt.Before(tables[1].CreatedAt))

	for _, table := range tables {
		t.Run(table.VersionLabel, func(t *testing.T) {
			t.Parallel()
			require.NoError(t, table.Validate())

			// Every description a calculator reads is present.
			for _, pt := range models.ProjectTypes {
				if name, ok := pt.PackageRate(); ok {
					_, found := table.Item(name)
					require.True(t, found, "missing package rate %q", name)
				}
			}
			for _, desc := range []string{
				models.RateUniquePages, models.RateRepetitivePages, models.RateShortPages,
				models.RateDesign, models.RateProgramming,
			} {
				_, found := table.Item(desc)
				require.True(t, found, "missing rate %q", desc)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, SeedRecords(ctx, m))
	require.NoError(t, SeedRateTables(ctx, m))

	staff, err := m.StaffList(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, staff, len(Staff()))

	inactive, err := m.StaffList(ctx, store.Filter{Status: models.StatusInactive})
	require.NoError(t, err)
	require.Len(t, inactive, 1)

	clients, err := m.Clients(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, clients, len(Clients()))

	pocs, err := m.POCs(ctx, store.Filter{ClientID: "client-001"})
	require.NoError(t, err)
	require.Len(t, pocs, 2)
	require.True(t, pocs[0].IsPrimary)

	active, err := m.ActiveRateTable(ctx)
	require.NoError(t, err)
	require.Equal(t, RateTableCurrentID, active.ID)

	admin, err := m.Role(ctx, "role-admin")
	require.NoError(t, err)
	for _, p := range models.AllPermissions {
		require.True(t, admin.HasPermission(p))
	}

	t.Run("seeding twice reports duplicates", func(t *testing.T) {
		require.ErrorIs(t, SeedRecords(ctx, m), store.ErrDuplicate)
		require.ErrorIs(t, SeedRateTables(ctx, m), store.ErrDuplicate)
	})
}
