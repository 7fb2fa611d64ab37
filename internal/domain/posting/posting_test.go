package posting

import (
	"testing"
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var saleDate = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

// chart maps every role to its own account so tests can assert by role
type chart struct {
	companyID uuid.UUID
	accounts  map[ledger.RoleKey]uuid.UUID
}

func newChart(roles ...ledger.AccountRole) *chart {
	c := &chart{companyID: uuid.New(), accounts: make(map[ledger.RoleKey]uuid.UUID)}
	for _, r := range roles {
		c.accounts[ledger.Need(r)] = uuid.New()
	}
	return c
}

func fullChart() *chart {
	return newChart(ledger.AllRoles()...)
}

func (c *chart) with(role ledger.AccountRole, q string) uuid.UUID {
	id := uuid.New()
	c.accounts[ledger.NeedFor(role, q)] = id
	return id
}

func (c *chart) without(role ledger.AccountRole) *chart {
	delete(c.accounts, ledger.Need(role))
	return c
}

func (c *chart) table() *ledger.MappingTable {
	var rows []ledger.RoleMapping
	for k, id := range c.accounts {
		rows = append(rows, ledger.RoleMapping{CompanyID: c.companyID, Role: k.Role, Qualifier: k.Qualifier, AccountID: id})
	}
	return ledger.NewMappingTable(c.companyID, rows)
}

func (c *chart) id(role ledger.AccountRole) uuid.UUID {
	return c.accounts[ledger.Need(role)]
}

// side sums the lines of draft on account id
func side(draft ledger.EntryDraft, id uuid.UUID) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range draft.Lines {
		if l.AccountID == id {
			debit = debit.Add(l.Debit)
			credit = credit.Add(l.Credit)
		}
	}
	return debit, credit
}

func assertBalanced(t *testing.T, draft ledger.EntryDraft) {
	t.Helper()
	debit, credit := draft.Totals()
	assert.True(t, debit.Equal(credit), "debit %s != credit %s", debit, credit)
	assert.NoError(t, draft.Validate())
}

func TestBuild_StrictPolicyBlocksOnGap(t *testing.T) {
	c := fullChart().without(ledger.RoleCOGS).without(ledger.RoleInventory)
	sale := POSSale{
		TransactionID: uuid.New(),
		Date:          saleDate,
		GrandTotal:    dec("85000"),
		TotalCOGS:     dec("50000"),
		Payments:      []TenderedPayment{{PaymentMethodID: uuid.New(), Amount: dec("85000")}},
	}

	_, err := Build(sale, c.table(), ledger.PolicyStrict)
	require.Error(t, err)
	assert.Equal(t, shared.KindResolutionGap, shared.KindOf(err))
	assert.Contains(t, err.Error(), "cogs, inventory")
}

func TestBuild_NothingToPost(t *testing.T) {
	_, err := Build(OpnameAdjustment{OpnameID: uuid.New(), Date: saleDate}, fullChart().table(), ledger.PolicyStrict)
	assert.True(t, IsNothingToPost(err))
}
