package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/posting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpnameStatus is the opname_status enumeration
type OpnameStatus string

const (
	OpnameDraft      OpnameStatus = "draft"
	OpnameInProgress OpnameStatus = "in_progress"
	OpnameCompleted  OpnameStatus = "completed"
)

// OpnameEvent drives the stock count machine
type OpnameEvent string

const (
	EventStartCount    OpnameEvent = "start"
	EventCompleteCount OpnameEvent = "complete"
)

type opnameTransition = shared.Transition[OpnameStatus, OpnameEvent]

// OpnameMachine is the stock count transition table
var OpnameMachine = shared.NewStateMachine("stock opname",
	opnameTransition{From: OpnameDraft, Event: EventStartCount, To: OpnameInProgress},
	opnameTransition{From: OpnameInProgress, Event: EventCompleteCount, To: OpnameCompleted},
)

// OpnameItem is one counted product
type OpnameItem struct {
	ID             uuid.UUID
	OpnameID       uuid.UUID
	ProductID      uuid.UUID
	ProductName    string
	SystemQuantity decimal.Decimal
	ActualQuantity decimal.Decimal
	UnitCost       decimal.Decimal
	Counted        bool
	Remark         string
}

// Difference is actual minus system quantity
func (i OpnameItem) Difference() decimal.Decimal {
	if !i.Counted {
		return decimal.Zero
	}
	return i.ActualQuantity.Sub(i.SystemQuantity)
}

// DifferenceValue is the difference valued at unit cost
func (i OpnameItem) DifferenceValue() decimal.Decimal {
	return i.Difference().Mul(i.UnitCost)
}

// StockOpname is a physical count of one warehouse
type StockOpname struct {
	shared.CompanyAggregateRoot
	OpnameNumber string
	WarehouseID  uuid.UUID
	OpnameDate   time.Time
	Status       OpnameStatus
	Items        []OpnameItem
	StartedAt    *time.Time
	CompletedAt  *time.Time
	CompletedBy  *uuid.UUID
	Notes        string
}

// NewStockOpname starts a draft count sheet
func NewStockOpname(companyID, warehouseID uuid.UUID, number string, date time.Time) (*StockOpname, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_OPNAME_NUMBER", "Opname number cannot be empty")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &StockOpname{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		OpnameNumber:         number,
		WarehouseID:          warehouseID,
		OpnameDate:           date,
		Status:               OpnameDraft,
	}, nil
}

// AddItem snapshots the system quantity of a product
func (o *StockOpname) AddItem(productID uuid.UUID, productName string, systemQty, unitCost decimal.Decimal) error {
	if o.Status != OpnameDraft {
		return shared.NewInvalidStateError("OPNAME_NOT_DRAFT", "Items can only be added to a draft count")
	}
	if productID == uuid.Nil {
		return shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if systemQty.IsNegative() || unitCost.IsNegative() {
		return shared.NewValidationError("INVALID_QUANTITY", "System quantity and unit cost cannot be negative")
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return shared.NewValidationError("DUPLICATE_PRODUCT", "Product already exists in this count")
		}
	}
	o.Items = append(o.Items, OpnameItem{
		ID:             uuid.New(),
		OpnameID:       o.ID,
		ProductID:      productID,
		ProductName:    productName,
		SystemQuantity: systemQty,
		UnitCost:       unitCost,
	})
	o.Touch()
	return nil
}

// Start begins counting
func (o *StockOpname) Start() error {
	if len(o.Items) == 0 {
		return shared.NewValidationError("NO_ITEMS", "Cannot start counting with no items")
	}
	next, err := OpnameMachine.Transition(o.Status, EventStartCount)
	if err != nil {
		return err
	}
	now := time.Now()
	o.Status = next
	o.StartedAt = &now
	o.Touch()
	return nil
}

// RecordCount stores the counted quantity of a product
func (o *StockOpname) RecordCount(productID uuid.UUID, actual decimal.Decimal, remark string) error {
	if o.Status != OpnameInProgress {
		return shared.NewInvalidStateError("OPNAME_NOT_IN_PROGRESS", "Counts can only be recorded while counting")
	}
	if actual.IsNegative() {
		return shared.NewValidationError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items[i].ActualQuantity = actual
			o.Items[i].Counted = true
			o.Items[i].Remark = strings.TrimSpace(remark)
			o.Touch()
			return nil
		}
	}
	return shared.NewValidationError("ITEM_NOT_FOUND", "Product not found in this count")
}

// Uncounted lists items without a count
func (o *StockOpname) Uncounted() []OpnameItem {
	var out []OpnameItem
	for _, item := range o.Items {
		if !item.Counted {
			out = append(out, item)
		}
	}
	return out
}

// Complete closes the count. Every item must be counted.
func (o *StockOpname) Complete(actor uuid.UUID) error {
	if o.Status == OpnameInProgress {
		if n := len(o.Uncounted()); n > 0 {
			return shared.NewValidationError("INCOMPLETE_COUNT", fmt.Sprintf("%d of %d items are not counted", n, len(o.Items)))
		}
	}
	next, err := OpnameMachine.Transition(o.Status, EventCompleteCount)
	if err != nil {
		return err
	}
	now := time.Now()
	o.Status = next
	o.CompletedAt = &now
	o.CompletedBy = &actor
	o.Touch()
	o.AddDomainEvent(NewStockOpnameCompletedEvent(o))
	return nil
}

// Movements returns one adjustment movement per item with a difference
func (o *StockOpname) Movements() ([]StockMovement, error) {
	var out []StockMovement
	for _, item := range o.Items {
		diff := item.Difference()
		if diff.IsZero() {
			continue
		}
		typ := MovementAdjustmentIn
		if diff.IsNegative() {
			typ = MovementAdjustmentOut
		}
		m, err := NewStockMovement(o.CompanyID, o.WarehouseID, item.ProductID, typ, diff.Abs(), RefStockOpname, o.ID)
		if err != nil {
			return nil, err
		}
		m.CreatedBy = o.CompletedBy
		m.Note = "Opname " + o.OpnameNumber
		out = append(out, m)
	}
	return out, nil
}

// PostingEvent is the ledger event of the count
func (o *StockOpname) PostingEvent() posting.OpnameAdjustment {
	ev := posting.OpnameAdjustment{
		OpnameID:     o.ID,
		OpnameNumber: o.OpnameNumber,
		Date:         o.OpnameDate,
	}
	for _, item := range o.Items {
		if !item.Counted {
			continue
		}
		ev.Lines = append(ev.Lines, posting.CountedLine{
			ProductID:  item.ProductID,
			SystemQty:  item.SystemQuantity,
			CountedQty: item.ActualQuantity,
			UnitCost:   item.UnitCost,
		})
	}
	return ev
}
