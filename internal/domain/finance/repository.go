package finance

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentFilter narrows document listings
type DocumentFilter struct {
	shared.Filter
	Kind    *DocumentKind
	Status  *DocumentStatus
	PartyID *uuid.UUID
}

// DocumentRepository persists invoices and bills
type DocumentRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Document, error)
	FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]Document, error)
	FindByOrder(ctx context.Context, companyID, orderID uuid.UUID, kind DocumentKind) (*Document, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter DocumentFilter) ([]Document, int64, error)
	// FindOpen returns documents with a positive outstanding amount
	FindOpen(ctx context.Context, companyID uuid.UUID, kind DocumentKind, partyID *uuid.UUID) ([]Document, error)
	// FindPastDue returns sent/partial documents due before asOf across all companies
	FindPastDue(ctx context.Context, asOf time.Time, limit int) ([]Document, error)
	Save(ctx context.Context, doc *Document) error
	// SaveWithLock updates the document only if the stored version still
	// equals doc.Version, then bumps it; ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, doc *Document) error
	NextNumber(ctx context.Context, companyID uuid.UUID, kind DocumentKind, date time.Time) (string, error)
}

// PaymentRepository persists payments and their allocations
type PaymentRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Payment, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Payment, int64, error)
	Save(ctx context.Context, payment *Payment) error
	NextNumber(ctx context.Context, companyID uuid.UUID, date time.Time) (string, error)
}
