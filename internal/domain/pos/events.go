package pos

import (
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypePOSTransaction = "POSTransaction"
	AggregateTypeCashSession    = "CashSession"

	EventTypePOSSaleCompleted  = "POSSaleCompleted"
	EventTypeCashSessionOpened = "CashSessionOpened"
	EventTypeCashSessionClosed = "CashSessionClosed"
)

// POSSaleCompletedEvent is raised once a sale is settled
type POSSaleCompletedEvent struct {
	shared.BaseDomainEvent
	ReceiptNumber  string          `json:"receipt_number"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	RoundingAmount decimal.Decimal `json:"rounding_amount"`
	ChangeAmount   decimal.Decimal `json:"change_amount"`
	ItemCount      int             `json:"item_count"`
}

func NewPOSSaleCompletedEvent(t *POSTransaction) *POSSaleCompletedEvent {
	return &POSSaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePOSSaleCompleted, AggregateTypePOSTransaction, t.ID, t.CompanyID),
		ReceiptNumber:   t.ReceiptNumber,
		WarehouseID:     t.WarehouseID,
		TotalAmount:     t.TotalAmount,
		RoundingAmount:  t.RoundingAmount,
		ChangeAmount:    t.ChangeAmount,
		ItemCount:       len(t.Items),
	}
}

// CashSessionOpenedEvent is raised when a drawer is opened
type CashSessionOpenedEvent struct {
	shared.BaseDomainEvent
	CashierID      uuid.UUID       `json:"cashier_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

func NewCashSessionOpenedEvent(s *CashSession) *CashSessionOpenedEvent {
	return &CashSessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashSessionOpened, AggregateTypeCashSession, s.ID, s.CompanyID),
		CashierID:       s.CashierID,
		OpeningBalance:  s.OpeningBalance,
	}
}

// CashSessionClosedEvent carries the reconciliation result
type CashSessionClosedEvent struct {
	shared.BaseDomainEvent
	CashierID       uuid.UUID       `json:"cashier_id"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	ClosingBalance  decimal.Decimal `json:"closing_balance"`
	Difference      decimal.Decimal `json:"difference"`
	Variance        VarianceClass   `json:"variance"`
}

func NewCashSessionClosedEvent(s *CashSession) *CashSessionClosedEvent {
	return &CashSessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashSessionClosed, AggregateTypeCashSession, s.ID, s.CompanyID),
		CashierID:       s.CashierID,
		ExpectedBalance: *s.ExpectedBalance,
		ClosingBalance:  *s.ClosingBalance,
		Difference:      *s.Difference,
		Variance:        s.Variance,
	}
}
