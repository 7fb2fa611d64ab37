package finance

import (
	"context"
	"time"

	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentService is the read side of invoices and bills plus cancellation
type DocumentService struct {
	scope  writeset.TransactionScope
	poster *ledgerapp.Poster
	logger *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(scope writeset.TransactionScope, poster *ledgerapp.Poster, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{scope: scope, poster: poster, logger: logger}
}

// GetByID returns one document
func (s *DocumentService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.scope.Repos().Documents().FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// List returns documents matching the filter
func (s *DocumentService) List(ctx context.Context, companyID uuid.UUID, f DocumentListFilter) (shared.Paginated[DocumentResponse], error) {
	filter := finance.DocumentFilter{Filter: shared.DefaultFilter(), PartyID: f.PartyID}
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Search = f.Search
	filter.OrderBy = "issue_date"
	if f.Kind != "" {
		k := finance.DocumentKind(f.Kind)
		filter.Kind = &k
	}
	if f.Status != "" {
		st := finance.DocumentStatus(f.Status)
		filter.Status = &st
	}

	docs, total, err := s.scope.Repos().Documents().FindAll(ctx, companyID, filter)
	if err != nil {
		return shared.Paginated[DocumentResponse]{}, err
	}
	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = ToDocumentResponse(&docs[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Cancel voids a document without payments. In the same write-set its
// journal entry is reversed and an invoiced order goes back to confirmed.
func (s *DocumentService) Cancel(ctx context.Context, companyID, id uuid.UUID, req CancelDocumentRequest) (*DocumentResponse, error) {
	var (
		doc      *finance.Document
		reversal *ledger.JournalEntry
	)
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		doc, err = repos.Documents().FindByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		if err := doc.Cancel(req.Reason); err != nil {
			return err
		}
		if err := writeset.Step("update document", repos.Documents().SaveWithLock(ctx, doc)); err != nil {
			return err
		}
		if doc.JournalEntryID != nil {
			entry, err := repos.Journals().FindByID(ctx, companyID, *doc.JournalEntryID)
			if err != nil {
				return err
			}
			// an operator may already have reversed it by hand
			if entry.ReversedByID == nil {
				reversal, err = s.poster.Reverse(ctx, repos, companyID, entry.ID, time.Now(),
					"Cancelled "+doc.Number+": "+req.Reason)
				if err != nil {
					return err
				}
			}
		}
		if doc.OrderID != nil {
			order, err := repos.Orders().FindByID(ctx, companyID, *doc.OrderID)
			if err != nil {
				return err
			}
			if order.DocumentID != nil && *order.DocumentID == doc.ID {
				if err := order.ReopenInvoice(doc.ID); err != nil {
					return err
				}
				if err := writeset.Step("update order", repos.Orders().SaveWithLock(ctx, order)); err != nil {
					return err
				}
				if err := writeset.RecordEvents(ctx, repos, order); err != nil {
					return err
				}
			}
		}
		return writeset.RecordEvents(ctx, repos, doc)
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("company_id", companyID.String()),
		zap.String("document_number", doc.Number),
	}
	if reversal != nil {
		fields = append(fields, zap.String("reversal_number", reversal.EntryNumber))
	}
	s.logger.Info("document cancelled", fields...)
	resp := ToDocumentResponse(doc)
	return &resp, nil
}
