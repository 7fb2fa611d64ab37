package ledger

import (
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is the classification of a ledger account
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
	AccountTypeCashBank  AccountType = "cash_bank"
)

// IsValid checks if the account type is one of the known types
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense, AccountTypeCashBank:
		return true
	}
	return false
}

func (t AccountType) String() string {
	return string(t)
}

// IsDebitNormal reports whether the balance of this type grows with debits
func (t AccountType) IsDebitNormal() bool {
	switch t {
	case AccountTypeAsset, AccountTypeExpense, AccountTypeCashBank:
		return true
	}
	return false
}

// BalanceDelta converts a posted debit/credit pair into the signed change of
// an account balance of this type.
func (t AccountType) BalanceDelta(debit, credit decimal.Decimal) decimal.Decimal {
	if t.IsDebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// CodeSeparator splits hierarchical account codes ("1-1100" is a child of "1")
const CodeSeparator = "-"

// Account is a ledger account in a company's chart of accounts
type Account struct {
	shared.CompanyAggregateRoot
	Code            string
	Name            string
	Type            AccountType
	ParentID        *uuid.UUID
	Balance         decimal.Decimal
	IsActive        bool
	HasTransactions bool
	Description     string
}

// NewAccount creates a new active account with a zero balance
func NewAccount(companyID uuid.UUID, code, name string, accountType AccountType) (*Account, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("INVALID_CODE", "Account code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("INVALID_CODE", "Account code cannot exceed 50 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewValidationError("INVALID_ACCOUNT_TYPE", "Invalid account type: "+string(accountType))
	}

	return &Account{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Code:                 code,
		Name:                 name,
		Type:                 accountType,
		Balance:              decimal.Zero,
		IsActive:             true,
	}, nil
}

// ParentCode derives the parent code from the prefix convention, or "" for a
// top-level account.
func (a *Account) ParentCode() string {
	i := strings.LastIndex(a.Code, CodeSeparator)
	if i <= 0 {
		return ""
	}
	return a.Code[:i]
}

// IsAncestorOf reports whether other sits below a in the code hierarchy
func (a *Account) IsAncestorOf(other *Account) bool {
	return strings.HasPrefix(other.Code, a.Code+CodeSeparator)
}

// SetParent links the account under parent. The parent must share the code
// prefix and the account type.
func (a *Account) SetParent(parent *Account) error {
	if parent == nil {
		a.ParentID = nil
		return nil
	}
	if parent.CompanyID != a.CompanyID {
		return shared.NewValidationError("INVALID_PARENT", "Parent account belongs to another company")
	}
	if !parent.IsAncestorOf(a) {
		return shared.NewValidationError("INVALID_PARENT", "Parent code must be a prefix of the account code")
	}
	if parent.Type != a.Type {
		return shared.NewValidationError("INVALID_PARENT", "Parent account must have the same type")
	}
	id := parent.ID
	a.ParentID = &id
	a.Touch()
	return nil
}

// Rename changes the display name
func (a *Account) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.Touch()
	a.IncrementVersion()
	return nil
}

// ChangeType reclassifies the account; only allowed before any line
// references it.
func (a *Account) ChangeType(accountType AccountType) error {
	if !accountType.IsValid() {
		return shared.NewValidationError("INVALID_ACCOUNT_TYPE", "Invalid account type: "+string(accountType))
	}
	if a.HasTransactions {
		return shared.NewInvalidStateError("ACCOUNT_TYPE_LOCKED", "Account type cannot change once transactions reference the account")
	}
	a.Type = accountType
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Deactivate hides the account from new postings
func (a *Account) Deactivate() {
	a.IsActive = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// Activate re-enables postings
func (a *Account) Activate() {
	a.IsActive = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// ApplyLine moves the in-memory balance by a posted line. Persistence applies
// the same delta with an atomic increment.
func (a *Account) ApplyLine(debit, credit decimal.Decimal) {
	a.Balance = a.Balance.Add(a.Type.BalanceDelta(debit, credit))
	a.HasTransactions = true
}
