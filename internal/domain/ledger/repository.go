package ledger

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountFilter narrows account listings
type AccountFilter struct {
	shared.Filter
	Type       *AccountType
	ActiveOnly bool
}

// AccountRepository persists the chart of accounts
type AccountRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*Account, error)
	FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]Account, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter AccountFilter) ([]Account, int64, error)
	ExistsByCode(ctx context.Context, companyID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, account *Account) error
	// ApplyBalanceDeltas adds each signed delta to the stored balance with a
	// single atomic UPDATE per account and flags the account as used.
	ApplyBalanceDeltas(ctx context.Context, companyID uuid.UUID, deltas map[uuid.UUID]decimal.Decimal) error
}

// RoleMappingRepository persists the role -> account table
type RoleMappingRepository interface {
	FindAll(ctx context.Context, companyID uuid.UUID) ([]RoleMapping, error)
	// Upsert replaces the mapping for the same (role, qualifier)
	Upsert(ctx context.Context, mapping *RoleMapping) error
	Delete(ctx context.Context, companyID uuid.UUID, role AccountRole, qualifier string) error
}

// JournalFilter narrows journal listings
type JournalFilter struct {
	shared.Filter
	ReferenceType *ReferenceType
	AccountID     *uuid.UUID
}

// TrialBalanceRow is the per-account total of posted lines
type TrialBalanceRow struct {
	AccountID   uuid.UUID
	AccountCode string
	AccountName string
	AccountType AccountType
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Balance returns the signed balance in the account's normal direction
func (r TrialBalanceRow) Balance() decimal.Decimal {
	return r.AccountType.BalanceDelta(r.Debit, r.Credit)
}

// JournalEntryRepository is the only writer of journal lines
type JournalEntryRepository interface {
	// Save inserts a new posted entry with its lines
	Save(ctx context.Context, entry *JournalEntry) error
	// MarkReversed records the reversal link on the original entry using its version
	MarkReversed(ctx context.Context, entry *JournalEntry) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*JournalEntry, error)
	FindByReference(ctx context.Context, companyID uuid.UUID, refType ReferenceType, refID uuid.UUID) (*JournalEntry, error)
	ExistsByReference(ctx context.Context, companyID uuid.UUID, refType ReferenceType, refID uuid.UUID) (bool, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter JournalFilter) ([]JournalEntry, int64, error)
	// NextSequence reserves the next entry number within a company and period
	NextSequence(ctx context.Context, companyID uuid.UUID, period string) (int, error)
	TrialBalance(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]TrialBalanceRow, error)
}
