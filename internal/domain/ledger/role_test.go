package ledger

import (
	"testing"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAccount(t *testing.T, companyID uuid.UUID, code, name string, typ AccountType) *Account {
	t.Helper()
	acc, err := NewAccount(companyID, code, name, typ)
	require.NoError(t, err)
	return acc
}

func TestNewRoleMapping(t *testing.T) {
	companyID := uuid.New()
	revenue := mustAccount(t, companyID, "4-1000", "Penjualan", AccountTypeRevenue)

	m, err := NewRoleMapping(companyID, RoleRevenue, "", revenue)
	require.NoError(t, err)
	assert.Equal(t, revenue.ID, m.AccountID)
	assert.Equal(t, "revenue", m.Key().String())

	_, err = NewRoleMapping(companyID, RolePayable, "", revenue)
	assertCode(t, err, "INCOMPATIBLE_ACCOUNT_TYPE")

	_, err = NewRoleMapping(companyID, "bonus", "", revenue)
	assertCode(t, err, "INVALID_ROLE")

	_, err = NewRoleMapping(uuid.New(), RoleRevenue, "", revenue)
	assertCode(t, err, "INVALID_ACCOUNT")

	revenue.Deactivate()
	_, err = NewRoleMapping(companyID, RoleRevenue, "", revenue)
	assertCode(t, err, "INACTIVE_ACCOUNT")
}

func TestMappingTable_QualifiedBeforeDefault(t *testing.T) {
	companyID := uuid.New()
	drawer := uuid.New()
	bank := uuid.New()
	methodID := uuid.New().String()

	table := NewMappingTable(companyID, []RoleMapping{
		{CompanyID: companyID, Role: RoleCashBank, AccountID: drawer},
		{CompanyID: companyID, Role: RoleCashBank, Qualifier: methodID, AccountID: bank},
		{CompanyID: uuid.New(), Role: RoleRevenue, AccountID: uuid.New()},
	})

	assert.Equal(t, 2, table.Len())

	id, ok := table.Resolve(RoleCashBank, methodID)
	require.True(t, ok)
	assert.Equal(t, bank, id)

	id, ok = table.Resolve(RoleCashBank, uuid.New().String())
	require.True(t, ok)
	assert.Equal(t, drawer, id)

	_, ok = table.Resolve(RoleRevenue, "")
	assert.False(t, ok, "rows of other companies are ignored")

	_, err := table.ResolveByRole(RoleRevenue, "")
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestCheckSetup_ListsEveryGap(t *testing.T) {
	companyID := uuid.New()
	table := NewMappingTable(companyID, []RoleMapping{
		{CompanyID: companyID, Role: RoleReceivable, AccountID: uuid.New()},
	})

	err := CheckSetup(table, Need(RoleReceivable), Need(RoleTax), Need(RoleRevenue), Need(RoleTax))
	require.Error(t, err)
	assert.Equal(t, shared.KindResolutionGap, shared.KindOf(err))
	assert.Contains(t, err.Error(), "revenue, tax")

	assert.Equal(t, []string{"asset:x"}, Missing(table, NeedFor(RoleAsset, "x")))
	assert.NoError(t, CheckSetup(table, Need(RoleReceivable)))
}

func TestRoleAccepts(t *testing.T) {
	assert.True(t, RoleCashBank.Accepts(AccountTypeCashBank))
	assert.True(t, RoleCashBank.Accepts(AccountTypeAsset))
	assert.False(t, RoleCashBank.Accepts(AccountTypeRevenue))
	assert.False(t, RoleCustomerDeposit.Accepts(AccountTypeAsset))
	assert.True(t, PolicyStrict.IsValid())
	assert.False(t, ResolutionPolicy("loose").IsValid())
}
