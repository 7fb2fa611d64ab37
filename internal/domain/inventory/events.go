package inventory

import (
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeStockTransfer = "StockTransfer"
	AggregateTypeStockOpname   = "StockOpname"

	EventTypeStockTransferSubmitted = "StockTransferSubmitted"
	EventTypeStockTransferApproved  = "StockTransferApproved"
	EventTypeStockTransferRejected  = "StockTransferRejected"
	EventTypeStockTransferCompleted = "StockTransferCompleted"
	EventTypeStockOpnameCompleted   = "StockOpnameCompleted"
)

// StockTransferEvent is shared by every transfer status change
type StockTransferEvent struct {
	shared.BaseDomainEvent
	TransferNumber  string          `json:"transfer_number"`
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id"`
	Status          TransferStatus  `json:"status"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	ActorID         *uuid.UUID      `json:"actor_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
}

func newStockTransferEvent(eventType string, t *StockTransfer) *StockTransferEvent {
	return &StockTransferEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeStockTransfer, t.ID, t.CompanyID),
		TransferNumber:  t.TransferNumber,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Status:          t.Status,
		TotalQuantity:   t.TotalQuantity(),
		ActorID:         t.DecidedBy,
		Reason:          t.RejectReason,
	}
}

func NewStockTransferSubmittedEvent(t *StockTransfer) *StockTransferEvent {
	return newStockTransferEvent(EventTypeStockTransferSubmitted, t)
}

func NewStockTransferApprovedEvent(t *StockTransfer) *StockTransferEvent {
	return newStockTransferEvent(EventTypeStockTransferApproved, t)
}

func NewStockTransferRejectedEvent(t *StockTransfer) *StockTransferEvent {
	return newStockTransferEvent(EventTypeStockTransferRejected, t)
}

func NewStockTransferCompletedEvent(t *StockTransfer) *StockTransferEvent {
	return newStockTransferEvent(EventTypeStockTransferCompleted, t)
}

// StockOpnameCompletedEvent summarises a finished count
type StockOpnameCompletedEvent struct {
	shared.BaseDomainEvent
	OpnameNumber    string          `json:"opname_number"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	ItemCount       int             `json:"item_count"`
	DifferenceItems int             `json:"difference_items"`
	NetValue        decimal.Decimal `json:"net_value"`
}

func NewStockOpnameCompletedEvent(o *StockOpname) *StockOpnameCompletedEvent {
	diffItems := 0
	net := decimal.Zero
	for _, item := range o.Items {
		if !item.Difference().IsZero() {
			diffItems++
			net = net.Add(item.DifferenceValue())
		}
	}
	return &StockOpnameCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockOpnameCompleted, AggregateTypeStockOpname, o.ID, o.CompanyID),
		OpnameNumber:    o.OpnameNumber,
		WarehouseID:     o.WarehouseID,
		ItemCount:       len(o.Items),
		DifferenceItems: diffItems,
		NetValue:        net.Round(2),
	}
}
