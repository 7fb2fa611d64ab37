package ledger

import (
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents a request to add an account to the chart
type CreateAccountRequest struct {
	Code        string     `json:"code" binding:"required,min=1,max=50"`
	Name        string     `json:"name" binding:"required,min=1,max=200"`
	Type        string     `json:"type" binding:"required,oneof=asset liability equity revenue expense cash_bank"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Description string     `json:"description" binding:"max=500"`
}

// UpdateAccountRequest represents a request to rename or reclassify an account
type UpdateAccountRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Type     *string `json:"type" binding:"omitempty,oneof=asset liability equity revenue expense cash_bank"`
	IsActive *bool   `json:"is_active"`
}

// AccountListFilter represents filter options for account listings
type AccountListFilter struct {
	Search     string `form:"search"`
	Type       string `form:"type" binding:"omitempty,oneof=asset liability equity revenue expense cash_bank"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page" binding:"min=0"`
	PageSize   int    `form:"page_size" binding:"min=0,max=500"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	ParentID        *uuid.UUID      `json:"parent_id,omitempty"`
	ParentCode      string          `json:"parent_code,omitempty"`
	Balance         decimal.Decimal `json:"balance"`
	IsActive        bool            `json:"is_active"`
	HasTransactions bool            `json:"has_transactions"`
	Description     string          `json:"description,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToAccountResponse converts a domain Account to AccountResponse
func ToAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:              a.ID,
		Code:            a.Code,
		Name:            a.Name,
		Type:            string(a.Type),
		ParentID:        a.ParentID,
		ParentCode:      a.ParentCode(),
		Balance:         a.Balance,
		IsActive:        a.IsActive,
		HasTransactions: a.HasTransactions,
		Description:     a.Description,
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// SetRoleMappingRequest maps a role (optionally qualified) to an account
type SetRoleMappingRequest struct {
	Role      string    `json:"role" binding:"required"`
	Qualifier string    `json:"qualifier" binding:"max=100"`
	AccountID uuid.UUID `json:"account_id" binding:"required"`
}

// RoleMappingResponse represents one mapping row
type RoleMappingResponse struct {
	ID          uuid.UUID `json:"id"`
	Role        string    `json:"role"`
	Qualifier   string    `json:"qualifier,omitempty"`
	AccountID   uuid.UUID `json:"account_id"`
	AccountCode string    `json:"account_code,omitempty"`
	AccountName string    `json:"account_name,omitempty"`
}

// SetupStatusResponse reports whether posting is unblocked
type SetupStatusResponse struct {
	Complete bool     `json:"complete"`
	Policy   string   `json:"policy"`
	Mapped   int      `json:"mapped"`
	Missing  []string `json:"missing"`
}

// SuggestionResponse is a proposed mapping awaiting confirmation
type SuggestionResponse struct {
	Role        string `json:"role"`
	AccountID   string `json:"account_id"`
	AccountCode string `json:"account_code"`
	AccountName string `json:"account_name"`
	Keyword     string `json:"keyword"`
}

// JournalLineRequest is one line of a manual entry
type JournalLineRequest struct {
	AccountID   uuid.UUID       `json:"account_id" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description" binding:"max=500"`
}

// PostManualEntryRequest represents a manual journal entry
type PostManualEntryRequest struct {
	Date        time.Time            `json:"date" binding:"required"`
	Description string               `json:"description" binding:"required,max=500"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ReverseEntryRequest represents a request to reverse a posted entry
type ReverseEntryRequest struct {
	Date   *time.Time `json:"date"`
	Reason string     `json:"reason" binding:"max=500"`
}

// JournalListFilter represents filter options for journal listings
type JournalListFilter struct {
	ReferenceType string     `form:"reference_type"`
	AccountID     *uuid.UUID `form:"-"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"min=0"`
	PageSize      int        `form:"page_size" binding:"min=0,max=500"`
}

// JournalLineResponse represents a posted line
type JournalLineResponse struct {
	LineNo      int             `json:"line_no"`
	AccountID   uuid.UUID       `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntryResponse represents a posted entry
type JournalEntryResponse struct {
	ID            uuid.UUID             `json:"id"`
	EntryNumber   string                `json:"entry_number"`
	EntryDate     time.Time             `json:"entry_date"`
	Description   string                `json:"description"`
	ReferenceType string                `json:"reference_type"`
	ReferenceID   uuid.UUID             `json:"reference_id"`
	IsPosted      bool                  `json:"is_posted"`
	PostedAt      *time.Time            `json:"posted_at,omitempty"`
	ReversalOfID  *uuid.UUID            `json:"reversal_of_id,omitempty"`
	ReversedByID  *uuid.UUID            `json:"reversed_by_id,omitempty"`
	TotalDebit    decimal.Decimal       `json:"total_debit"`
	TotalCredit   decimal.Decimal       `json:"total_credit"`
	Lines         []JournalLineResponse `json:"lines"`
}

// ToJournalEntryResponse converts a domain JournalEntry
func ToJournalEntryResponse(e *ledger.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return JournalEntryResponse{
		ID:            e.ID,
		EntryNumber:   e.EntryNumber,
		EntryDate:     e.EntryDate,
		Description:   e.Description,
		ReferenceType: string(e.ReferenceType),
		ReferenceID:   e.ReferenceID,
		IsPosted:      e.IsPosted,
		PostedAt:      e.PostedAt,
		ReversalOfID:  e.ReversalOfID,
		ReversedByID:  e.ReversedByID,
		TotalDebit:    e.TotalDebit(),
		TotalCredit:   e.TotalCredit(),
		Lines:         lines,
	}
}

// TrialBalanceLine is one account row of the trial balance
type TrialBalanceLine struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	AccountType string          `json:"account_type"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceResponse totals every posted line up to AsOf
type TrialBalanceResponse struct {
	AsOf        time.Time          `json:"as_of"`
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
	Difference  decimal.Decimal    `json:"difference"`
	IsBalanced  bool               `json:"is_balanced"`
}
