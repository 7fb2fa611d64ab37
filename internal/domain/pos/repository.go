package pos

import (
	"context"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows sale listings
type TransactionFilter struct {
	shared.Filter
	SessionID   *uuid.UUID
	WarehouseID *uuid.UUID
}

// TransactionRepository persists completed sales with their items and payments
type TransactionRepository interface {
	Save(ctx context.Context, tx *POSTransaction) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*POSTransaction, error)
	FindByReceipt(ctx context.Context, companyID uuid.UUID, receiptNumber string) (*POSTransaction, error)
	FindByIdempotencyKey(ctx context.Context, companyID uuid.UUID, key string) (*POSTransaction, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter TransactionFilter) ([]POSTransaction, int64, error)
	// NextReceiptSequence reserves the next receipt number for the day
	NextReceiptSequence(ctx context.Context, companyID uuid.UUID, period string) (int, error)
}

// PaymentMethodRepository persists tenders
type PaymentMethodRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*PaymentMethod, error)
	FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]PaymentMethod, error)
	FindAll(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]PaymentMethod, error)
	Save(ctx context.Context, method *PaymentMethod) error
}

// CashSessionRepository persists drawer sessions
type CashSessionRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*CashSession, error)
	// FindOpen returns the company's open session or shared.ErrNotFound
	FindOpen(ctx context.Context, companyID uuid.UUID) (*CashSession, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]CashSession, int64, error)
	Save(ctx context.Context, session *CashSession) error
	SaveWithLock(ctx context.Context, session *CashSession) error
}

// CashMovementRepository is append-only
type CashMovementRepository interface {
	Append(ctx context.Context, movements ...CashMovement) error
	ListBySession(ctx context.Context, companyID, sessionID uuid.UUID) ([]CashMovement, error)
	// SumBySession aggregates the signed movement total in the database
	SumBySession(ctx context.Context, companyID, sessionID uuid.UUID) (decimal.Decimal, error)
}
