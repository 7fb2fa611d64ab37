package ledger

import (
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeJournalEntry = "JournalEntry"

	EventTypeJournalEntryPosted   = "JournalEntryPosted"
	EventTypeJournalEntryReversed = "JournalEntryReversed"
)

// JournalEntryPostedEvent is raised for every posted entry, reversals included
type JournalEntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryNumber   string          `json:"entry_number"`
	ReferenceType ReferenceType   `json:"reference_type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
	Amount        decimal.Decimal `json:"amount"`
	LineCount     int             `json:"line_count"`
}

func NewJournalEntryPostedEvent(e *JournalEntry) *JournalEntryPostedEvent {
	return &JournalEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryPosted, AggregateTypeJournalEntry, e.ID, e.CompanyID),
		EntryNumber:     e.EntryNumber,
		ReferenceType:   e.ReferenceType,
		ReferenceID:     e.ReferenceID,
		Amount:          e.TotalDebit(),
		LineCount:       len(e.Lines),
	}
}

// JournalEntryReversedEvent is raised on the original entry when it is reversed
type JournalEntryReversedEvent struct {
	shared.BaseDomainEvent
	EntryNumber         string    `json:"entry_number"`
	ReversalID          uuid.UUID `json:"reversal_id"`
	ReversalEntryNumber string    `json:"reversal_entry_number"`
}

func NewJournalEntryReversedEvent(original, reversal *JournalEntry) *JournalEntryReversedEvent {
	return &JournalEntryReversedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeJournalEntryReversed, AggregateTypeJournalEntry, original.ID, original.CompanyID),
		EntryNumber:         original.EntryNumber,
		ReversalID:          reversal.ID,
		ReversalEntryNumber: reversal.EntryNumber,
	}
}
