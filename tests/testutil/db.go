package testutil

import (
	"context"
	"testing"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/infrastructure/persistence"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens an in-memory database with every table migrated. A
// single connection keeps the whole test on one memory database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Chart is a seeded chart of accounts keyed by role
type Chart map[ledger.AccountRole]*ledger.Account

// ID returns the account id mapped to role
func (c Chart) ID(role ledger.AccountRole) uuid.UUID {
	return c[role].ID
}

type chartRow struct {
	role ledger.AccountRole
	code string
	name string
	typ  ledger.AccountType
}

var standardChart = []chartRow{
	{ledger.RoleCashBank, "1-1000", "Cash", ledger.AccountTypeCashBank},
	{ledger.RoleReceivable, "1-1200", "Accounts Receivable", ledger.AccountTypeAsset},
	{ledger.RoleInventory, "1-1300", "Inventory", ledger.AccountTypeAsset},
	{ledger.RoleAsset, "1-2000", "Equipment", ledger.AccountTypeAsset},
	{ledger.RoleAccumulatedDepreciation, "1-2900", "Accumulated Depreciation", ledger.AccountTypeAsset},
	{ledger.RolePayable, "2-1000", "Accounts Payable", ledger.AccountTypeLiability},
	{ledger.RoleTax, "2-1100", "Tax Payable", ledger.AccountTypeLiability},
	{ledger.RoleCustomerDeposit, "2-1200", "Customer Deposits", ledger.AccountTypeLiability},
	{ledger.RoleRevenue, "4-1000", "Sales Revenue", ledger.AccountTypeRevenue},
	{ledger.RoleDiscount, "4-1100", "Sales Discount", ledger.AccountTypeExpense},
	{ledger.RoleCOGS, "5-1000", "Cost of Goods Sold", ledger.AccountTypeExpense},
	{ledger.RoleDepreciationExpense, "6-1000", "Depreciation Expense", ledger.AccountTypeExpense},
	{ledger.RoleInventoryAdjustment, "6-2000", "Inventory Adjustment", ledger.AccountTypeExpense},
}

// SeedChart creates one account per role and maps every role to it
func SeedChart(t *testing.T, db *gorm.DB, companyID uuid.UUID) Chart {
	t.Helper()
	ctx := context.Background()
	accounts := persistence.NewGormAccountRepository(db)
	mappings := persistence.NewGormRoleMappingRepository(db)

	chart := make(Chart, len(standardChart))
	for _, row := range standardChart {
		account, err := ledger.NewAccount(companyID, row.code, row.name, row.typ)
		require.NoError(t, err)
		require.NoError(t, accounts.Save(ctx, account))

		mapping, err := ledger.NewRoleMapping(companyID, row.role, "", account)
		require.NoError(t, err)
		require.NoError(t, mappings.Upsert(ctx, mapping))
		chart[row.role] = account
	}
	return chart
}

// AccountBalance reads the stored running balance of an account
func AccountBalance(t *testing.T, db *gorm.DB, companyID, accountID uuid.UUID) string {
	t.Helper()
	account, err := persistence.NewGormAccountRepository(db).FindByID(context.Background(), companyID, accountID)
	require.NoError(t, err)
	return account.Balance.StringFixed(2)
}
