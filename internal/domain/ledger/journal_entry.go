package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the precision of posted amounts
const AmountPlaces int32 = 2

// ReferenceType names the business event behind a journal entry
type ReferenceType string

const (
	RefSalesInvoice ReferenceType = "sales_invoice"
	RefPurchaseBill ReferenceType = "purchase_bill"
	RefPOSSale      ReferenceType = "pos_sale"
	RefPayment      ReferenceType = "payment"
	RefDepreciation ReferenceType = "depreciation"
	RefDeposit      ReferenceType = "deposit"
	RefStockOpname  ReferenceType = "stock_opname"
	RefManual       ReferenceType = "manual"
	RefReversal     ReferenceType = "reversal"
)

func (r ReferenceType) IsValid() bool {
	switch r {
	case RefSalesInvoice, RefPurchaseBill, RefPOSSale, RefPayment, RefDepreciation,
		RefDeposit, RefStockOpname, RefManual, RefReversal:
		return true
	}
	return false
}

func (r ReferenceType) String() string {
	return string(r)
}

// LineDraft is one proposed journal line. Exactly one of Debit/Credit is positive.
type LineDraft struct {
	AccountID   uuid.UUID
	Role        AccountRole
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// DebitLine builds a debit draft
func DebitLine(accountID uuid.UUID, role AccountRole, amount decimal.Decimal, description string) LineDraft {
	return LineDraft{AccountID: accountID, Role: role, Debit: amount, Credit: decimal.Zero, Description: description}
}

// CreditLine builds a credit draft
func CreditLine(accountID uuid.UUID, role AccountRole, amount decimal.Decimal, description string) LineDraft {
	return LineDraft{AccountID: accountID, Role: role, Debit: decimal.Zero, Credit: amount, Description: description}
}

// EntryDraft is the output of a posting rule and the only input of Post
type EntryDraft struct {
	Date          time.Time
	Description   string
	ReferenceType ReferenceType
	ReferenceID   uuid.UUID
	Lines         []LineDraft
}

// Totals sums both sides
func (d EntryDraft) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range d.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Validate enforces the posting preconditions: at least two lines, one
// positive side per line, no sub-cent amounts and equal totals.
func (d EntryDraft) Validate() error {
	if !d.ReferenceType.IsValid() {
		return shared.NewValidationError("INVALID_REFERENCE_TYPE", "Invalid reference type: "+string(d.ReferenceType))
	}
	if d.Date.IsZero() {
		return shared.NewValidationError("INVALID_ENTRY_DATE", "Entry date is required")
	}
	if len(d.Lines) < 2 {
		return shared.NewValidationError("TOO_FEW_LINES", "A journal entry needs at least two lines")
	}
	for i, l := range d.Lines {
		if l.AccountID == uuid.Nil {
			return shared.NewValidationError("INVALID_LINE", fmt.Sprintf("Line %d has no account", i+1))
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return shared.NewValidationError("INVALID_LINE", fmt.Sprintf("Line %d has a negative amount", i+1))
		}
		if l.Debit.IsPositive() == l.Credit.IsPositive() {
			return shared.NewValidationError("INVALID_LINE", fmt.Sprintf("Line %d must have exactly one of debit or credit", i+1))
		}
		if !l.Debit.Equal(l.Debit.Round(AmountPlaces)) || !l.Credit.Equal(l.Credit.Round(AmountPlaces)) {
			return shared.NewValidationError("INVALID_PRECISION", fmt.Sprintf("Line %d has more than %d decimals", i+1, AmountPlaces))
		}
	}
	debit, credit := d.Totals()
	if !debit.Equal(credit) {
		return shared.NewValidationError("UNBALANCED_ENTRY",
			fmt.Sprintf("Debits %s do not equal credits %s", debit.StringFixed(AmountPlaces), credit.StringFixed(AmountPlaces)))
	}
	return nil
}

// JournalEntryLine is a persisted line of a posted entry
type JournalEntryLine struct {
	ID          uuid.UUID
	EntryID     uuid.UUID
	LineNo      int
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// JournalEntry is a posted, immutable ledger entry. Corrections are made by
// reversing it, never by editing.
type JournalEntry struct {
	shared.CompanyAggregateRoot
	EntryNumber   string
	EntryDate     time.Time
	Description   string
	ReferenceType ReferenceType
	ReferenceID   uuid.UUID
	IsPosted      bool
	PostedAt      *time.Time
	ReversalOfID  *uuid.UUID
	ReversedByID  *uuid.UUID
	Lines         []JournalEntryLine
}

// Post validates draft and returns the posted entry
func Post(companyID uuid.UUID, entryNumber string, draft EntryDraft) (*JournalEntry, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if strings.TrimSpace(entryNumber) == "" {
		return nil, shared.NewValidationError("INVALID_ENTRY_NUMBER", "Entry number cannot be empty")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &JournalEntry{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		EntryNumber:          entryNumber,
		EntryDate:            draft.Date,
		Description:          draft.Description,
		ReferenceType:        draft.ReferenceType,
		ReferenceID:          draft.ReferenceID,
		IsPosted:             true,
		PostedAt:             &now,
	}
	entry.Lines = make([]JournalEntryLine, len(draft.Lines))
	for i, l := range draft.Lines {
		entry.Lines[i] = JournalEntryLine{
			ID:          uuid.New(),
			EntryID:     entry.ID,
			LineNo:      i + 1,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}

	entry.AddDomainEvent(NewJournalEntryPostedEvent(entry))
	return entry, nil
}

// TotalDebit sums the debit side
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums the credit side
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}
	return total
}

// IsBalanced re-checks the invariant on a loaded entry
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebit().Equal(e.TotalCredit())
}

// IsReversal reports whether this entry reverses another
func (e *JournalEntry) IsReversal() bool {
	return e.ReversalOfID != nil
}

// IsReversed reports whether a reversal already exists
func (e *JournalEntry) IsReversed() bool {
	return e.ReversedByID != nil
}

// AccountTotals groups the entry's lines per account
func (e *JournalEntry) AccountTotals() map[uuid.UUID]LineTotals {
	out := make(map[uuid.UUID]LineTotals)
	for _, l := range e.Lines {
		t := out[l.AccountID]
		t.Debit = t.Debit.Add(l.Debit)
		t.Credit = t.Credit.Add(l.Credit)
		out[l.AccountID] = t
	}
	return out
}

// LineTotals is the debit/credit sum of one account within an entry
type LineTotals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Reverse produces a new posted entry that mirrors e line by line and links
// the two. A reversal cannot itself be reversed, and an entry is reversed at
// most once.
func (e *JournalEntry) Reverse(entryNumber string, date time.Time, reason string) (*JournalEntry, error) {
	if e.IsReversal() {
		return nil, shared.NewInvalidStateError("REVERSAL_OF_REVERSAL", "A reversal entry cannot be reversed")
	}
	if e.IsReversed() {
		return nil, shared.NewInvalidStateError("ALREADY_REVERSED", "Entry "+e.EntryNumber+" is already reversed")
	}
	if date.IsZero() {
		date = time.Now()
	}

	description := "Reversal of " + e.EntryNumber
	if reason != "" {
		description += ": " + reason
	}
	draft := EntryDraft{
		Date:          date,
		Description:   description,
		ReferenceType: RefReversal,
		ReferenceID:   e.ID,
		Lines:         make([]LineDraft, len(e.Lines)),
	}
	for i, l := range e.Lines {
		draft.Lines[i] = LineDraft{
			AccountID:   l.AccountID,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Description: l.Description,
		}
	}

	reversal, err := Post(e.CompanyID, entryNumber, draft)
	if err != nil {
		return nil, err
	}
	originalID := e.ID
	reversal.ReversalOfID = &originalID

	reversalID := reversal.ID
	e.ReversedByID = &reversalID
	e.Touch()
	e.IncrementVersion()
	e.AddDomainEvent(NewJournalEntryReversedEvent(e, reversal))

	return reversal, nil
}

// FormatEntryNumber renders JE-YYYYMM-NNNNN
func FormatEntryNumber(date time.Time, seq int) string {
	return fmt.Sprintf("JE-%s-%05d", date.Format("200601"), seq)
}

// EntryPeriod is the numbering period of an entry date
func EntryPeriod(date time.Time) string {
	return date.Format("200601")
}
