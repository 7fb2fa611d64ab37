package testutil

import (
	"testing"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedChart_MapsEveryRole(t *testing.T) {
	db := NewSQLiteDB(t)
	companyID := uuid.New()

	chart := SeedChart(t, db, companyID)

	mappings, err := persistence.NewGormRoleMappingRepository(db).FindAll(t.Context(), companyID)
	require.NoError(t, err)
	assert.Len(t, mappings, len(ledger.AllRoles()))
	for _, role := range ledger.AllRoles() {
		require.Contains(t, chart, role)
	}
	assert.Equal(t, "0.00", AccountBalance(t, db, companyID, chart.ID(ledger.RoleCashBank)))
}

func TestSeedChart_CompaniesAreIsolated(t *testing.T) {
	db := NewSQLiteDB(t)
	first := SeedChart(t, db, uuid.New())
	other := uuid.New()
	second := SeedChart(t, db, other)

	assert.NotEqual(t, first.ID(ledger.RoleRevenue), second.ID(ledger.RoleRevenue))

	mappings, err := persistence.NewGormRoleMappingRepository(db).FindAll(t.Context(), other)
	require.NoError(t, err)
	for _, m := range mappings {
		assert.Equal(t, other, m.CompanyID)
	}
}
