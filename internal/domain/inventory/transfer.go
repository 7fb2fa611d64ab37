package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus is the transfer_status enumeration
type TransferStatus string

const (
	TransferDraft     TransferStatus = "draft"
	TransferPending   TransferStatus = "pending"
	TransferApproved  TransferStatus = "approved"
	TransferRejected  TransferStatus = "rejected"
	TransferCompleted TransferStatus = "completed"
)

func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferDraft, TransferPending, TransferApproved, TransferRejected, TransferCompleted:
		return true
	}
	return false
}

// TransferEvent drives the transfer machine
type TransferEvent string

const (
	EventSubmit   TransferEvent = "submit"
	EventApprove  TransferEvent = "approve"
	EventReject   TransferEvent = "reject"
	EventComplete TransferEvent = "complete"
)

func (e TransferEvent) IsValid() bool {
	switch e {
	case EventSubmit, EventApprove, EventReject, EventComplete:
		return true
	}
	return false
}

type transferTransition = shared.Transition[TransferStatus, TransferEvent]

// TransferMachine is the stock transfer transition table
var TransferMachine = shared.NewStateMachine("stock transfer",
	transferTransition{From: TransferDraft, Event: EventSubmit, To: TransferPending},
	transferTransition{From: TransferPending, Event: EventApprove, To: TransferApproved},
	transferTransition{From: TransferPending, Event: EventReject, To: TransferRejected},
	transferTransition{From: TransferApproved, Event: EventComplete, To: TransferCompleted},
)

// TransferItem is one product moved by a transfer
type TransferItem struct {
	ID          uuid.UUID
	TransferID  uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
}

// StockTransfer moves stock between two warehouses of one company
type StockTransfer struct {
	shared.CompanyAggregateRoot
	TransferNumber  string
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	Status          TransferStatus
	Items           []TransferItem
	Notes           string
	RequestedBy     uuid.UUID
	SubmittedAt     *time.Time
	DecidedBy       *uuid.UUID
	DecidedAt       *time.Time
	RejectReason    string
	CompletedAt     *time.Time
}

// TransferLine is the input of one transfer item
type TransferLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
}

// NewStockTransfer validates the request and submits it, so a new transfer
// is always pending. Nothing is built when validation fails.
func NewStockTransfer(companyID uuid.UUID, number string, from, to uuid.UUID, lines []TransferLine, requestedBy uuid.UUID, notes string) (*StockTransfer, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_TRANSFER_NUMBER", "Transfer number cannot be empty")
	}
	if from == uuid.Nil || to == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_WAREHOUSE", "Source and destination warehouses are required")
	}
	if from == to {
		return nil, shared.NewValidationError("SAME_WAREHOUSE", "Source and destination warehouse must differ")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_TRANSFER", "A transfer needs at least one item")
	}
	seen := make(map[uuid.UUID]bool, len(lines))
	for i, l := range lines {
		if l.ProductID == uuid.Nil {
			return nil, shared.NewValidationError("INVALID_PRODUCT", fmt.Sprintf("Item %d has no product", i+1))
		}
		if !l.Quantity.IsPositive() {
			return nil, shared.NewValidationError("INVALID_QUANTITY", fmt.Sprintf("Item %d needs a positive quantity", i+1))
		}
		if seen[l.ProductID] {
			return nil, shared.NewValidationError("DUPLICATE_PRODUCT", fmt.Sprintf("Item %d repeats a product", i+1))
		}
		seen[l.ProductID] = true
	}

	t := &StockTransfer{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		TransferNumber:       number,
		FromWarehouseID:      from,
		ToWarehouseID:        to,
		Status:               TransferDraft,
		RequestedBy:          requestedBy,
		Notes:                strings.TrimSpace(notes),
	}
	for _, l := range lines {
		t.Items = append(t.Items, TransferItem{
			ID:          uuid.New(),
			TransferID:  t.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
		})
	}
	if err := t.fire(EventSubmit); err != nil {
		return nil, err
	}
	now := time.Now()
	t.SubmittedAt = &now
	t.AddDomainEvent(NewStockTransferSubmittedEvent(t))
	return t, nil
}

func (t *StockTransfer) fire(event TransferEvent) error {
	next, err := TransferMachine.Transition(t.Status, event)
	if err != nil {
		return err
	}
	t.Status = next
	t.Touch()
	return nil
}

func (t *StockTransfer) checkDestinationPIC(actor uuid.UUID, destination *Warehouse) error {
	if destination == nil || destination.ID != t.ToWarehouseID {
		return shared.NewValidationError("INVALID_WAREHOUSE", "Destination warehouse does not match the transfer")
	}
	if !destination.IsPIC(actor) {
		return &shared.DomainError{
			Code:    "NOT_DESTINATION_PIC",
			Message: "Only the destination warehouse PIC can decide on this transfer",
			Kind:    shared.KindInvalidState,
		}
	}
	return nil
}

// Approve records the destination PIC's approval. The caller completes the
// transfer in the same write-set after applying Movements.
func (t *StockTransfer) Approve(actor uuid.UUID, destination *Warehouse) error {
	if _, err := TransferMachine.Transition(t.Status, EventApprove); err != nil {
		return err
	}
	if err := t.checkDestinationPIC(actor, destination); err != nil {
		return err
	}
	if err := t.fire(EventApprove); err != nil {
		return err
	}
	now := time.Now()
	t.DecidedBy = &actor
	t.DecidedAt = &now
	t.AddDomainEvent(NewStockTransferApprovedEvent(t))
	return nil
}

// Reject ends the transfer without any inventory effect
func (t *StockTransfer) Reject(actor uuid.UUID, destination *Warehouse, reason string) error {
	if _, err := TransferMachine.Transition(t.Status, EventReject); err != nil {
		return err
	}
	if err := t.checkDestinationPIC(actor, destination); err != nil {
		return err
	}
	if err := t.fire(EventReject); err != nil {
		return err
	}
	now := time.Now()
	t.DecidedBy = &actor
	t.DecidedAt = &now
	t.RejectReason = strings.TrimSpace(reason)
	t.AddDomainEvent(NewStockTransferRejectedEvent(t))
	return nil
}

// Movements returns the transfer_out / transfer_in pair of every item
func (t *StockTransfer) Movements() ([]StockMovement, error) {
	if t.Status != TransferApproved {
		return nil, shared.NewInvalidStateError("TRANSFER_NOT_APPROVED", "Movements are produced for approved transfers only")
	}
	out := make([]StockMovement, 0, 2*len(t.Items))
	for _, item := range t.Items {
		src, err := NewStockMovement(t.CompanyID, t.FromWarehouseID, item.ProductID, MovementTransferOut, item.Quantity, RefStockTransfer, t.ID)
		if err != nil {
			return nil, err
		}
		dst, err := NewStockMovement(t.CompanyID, t.ToWarehouseID, item.ProductID, MovementTransferIn, item.Quantity, RefStockTransfer, t.ID)
		if err != nil {
			return nil, err
		}
		src.CreatedBy, dst.CreatedBy = t.DecidedBy, t.DecidedBy
		src.Note = "Transfer " + t.TransferNumber
		dst.Note = src.Note
		out = append(out, src, dst)
	}
	return out, nil
}

// Complete marks the stock as moved
func (t *StockTransfer) Complete() error {
	if err := t.fire(EventComplete); err != nil {
		return err
	}
	now := time.Now()
	t.CompletedAt = &now
	t.AddDomainEvent(NewStockTransferCompletedEvent(t))
	return nil
}

// IsTerminal reports whether the transfer accepts no further events
func (t *StockTransfer) IsTerminal() bool {
	return TransferMachine.IsTerminal(t.Status)
}

// TotalQuantity sums item quantities
func (t *StockTransfer) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.Quantity)
	}
	return total
}
