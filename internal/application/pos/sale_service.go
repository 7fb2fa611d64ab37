package pos

import (
	"context"
	"errors"
	"time"

	inventoryapp "github.com/erp/accounting/internal/application/inventory"
	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService completes POS checkouts
type SaleService struct {
	scope          writeset.TransactionScope
	poster         *ledgerapp.Poster
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(scope writeset.TransactionScope, poster *ledgerapp.Poster, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{scope: scope, poster: poster, logger: logger, idempotencyTTL: shared.DefaultIdempotencyTTL}
}

// SetIdempotencyStore enables fast duplicate detection for client retries
func (s *SaleService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// PostPOSSale commits a checkout as one write-set: the transaction with its
// items and payments, the journal entry, stock-out movements with atomic
// level decrements and, for cash tenders, the drawer movement net of change.
// A retried request with the same idempotency key returns the stored sale.
func (s *SaleService) PostPOSSale(ctx context.Context, companyID uuid.UUID, req PostSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pos", "post_sale")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCompanyID, companyID.String(),
		telemetry.SpanAttrWarehouseID, req.WarehouseID.String(),
	)

	if req.IdempotencyKey != "" {
		if existing, err := s.replay(ctx, companyID, req.IdempotencyKey); err != nil || existing != nil {
			return existing, err
		}
	}
	release, err := s.claim(ctx, companyID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	var tx *pos.POSTransaction
	err = s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		methods, err := s.loadMethods(ctx, repos, companyID, req.Payments)
		if err != nil {
			return err
		}
		seq, err := repos.Sales().NextReceiptSequence(ctx, companyID, pos.ReceiptPeriod(date))
		if err != nil {
			return writeset.Step("reserve receipt number", err)
		}
		tx, err = pos.CompleteSale(companyID, pos.SaleInput{
			ReceiptNumber:  pos.FormatReceiptNumber(date, seq),
			CashierID:      req.CashierID,
			WarehouseID:    req.WarehouseID,
			Date:           date,
			Lines:          cartLines(req.Lines),
			Tenders:        tenders(req.Payments),
			IdempotencyKey: req.IdempotencyKey,
		}, methods)
		if err != nil {
			return err
		}

		session, err := repos.CashSessions().FindOpen(ctx, companyID)
		switch {
		case err == nil:
			tx.AttachSession(session.ID)
		case errors.Is(err, shared.ErrNotFound):
			if tx.HasCash() {
				return shared.NewInvalidStateError("NO_OPEN_SESSION", "Open a cash session before taking cash")
			}
		default:
			return err
		}

		entry, err := s.poster.Post(ctx, repos, companyID, tx.PostingEvent())
		if err != nil {
			return err
		}
		tx.AttachJournalEntry(entry.ID)
		if err := writeset.Step("save pos transaction", repos.Sales().Save(ctx, tx)); err != nil {
			return err
		}

		movements := make([]inventory.StockMovement, 0, len(tx.Items))
		for _, item := range tx.Items {
			m, err := inventory.NewStockMovement(companyID, tx.WarehouseID, item.ProductID, inventory.MovementSale,
				item.Quantity, inventory.RefPOSSale, tx.ID)
			if err != nil {
				return err
			}
			m.CreatedBy = &tx.CashierID
			movements = append(movements, m)
		}
		if err := inventoryapp.ApplyMovements(ctx, repos, movements...); err != nil {
			return err
		}

		if tx.HasCash() {
			cm, err := session.NewMovement(pos.MovementSale, tx.CashReceived, inventory.RefPOSSale, &tx.ID, "Sale "+tx.ReceiptNumber)
			if err != nil {
				return err
			}
			cm.CreatedBy = &tx.CashierID
			if err := writeset.Step("append cash movement", repos.CashMovements().Append(ctx, cm)); err != nil {
				return err
			}
		}
		return writeset.RecordEvents(ctx, repos, tx)
	})
	if err != nil {
		release(ctx)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("pos sale posted",
		zap.String("company_id", companyID.String()),
		zap.String("receipt_number", tx.ReceiptNumber),
		zap.String("total", tx.TotalAmount.StringFixed(2)),
		zap.String("change", tx.ChangeAmount.StringFixed(2)),
	)
	resp := ToSaleResponse(tx)
	return &resp, nil
}

func (s *SaleService) replay(ctx context.Context, companyID uuid.UUID, key string) (*SaleResponse, error) {
	existing, err := s.scope.Repos().Sales().FindByIdempotencyKey(ctx, companyID, key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(existing)
	resp.Replayed = true
	return &resp, nil
}

func (s *SaleService) claim(ctx context.Context, companyID uuid.UUID, key string) (func(context.Context), error) {
	noop := func(context.Context) {}
	if key == "" || s.idempotency == nil {
		return noop, nil
	}
	scoped := "pos-sale:" + companyID.String() + ":" + key
	fresh, err := s.idempotency.MarkProcessed(ctx, scoped, s.idempotencyTTL)
	if err != nil {
		// the unique key column still rejects duplicates
		s.logger.Warn("idempotency store unavailable", zap.Error(err))
		return noop, nil
	}
	if !fresh {
		return noop, shared.NewConflictError("DUPLICATE_REQUEST", "A sale with this idempotency key is already being processed")
	}
	return func(ctx context.Context) {
		if err := s.idempotency.Forget(ctx, scoped); err != nil {
			s.logger.Warn("failed to release idempotency key", zap.String("key", scoped), zap.Error(err))
		}
	}, nil
}

func (s *SaleService) loadMethods(ctx context.Context, repos writeset.Repositories, companyID uuid.UUID, in []TenderInput) (map[uuid.UUID]*pos.PaymentMethod, error) {
	ids := make([]uuid.UUID, 0, len(in))
	for _, t := range in {
		ids = append(ids, t.PaymentMethodID)
	}
	found, err := repos.PaymentMethods().FindByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	methods := make(map[uuid.UUID]*pos.PaymentMethod, len(found))
	for i := range found {
		if found[i].IsActive {
			methods[found[i].ID] = &found[i]
		}
	}
	return methods, nil
}

// GetByID returns one sale
func (s *SaleService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*SaleResponse, error) {
	tx, err := s.scope.Repos().Sales().FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(tx)
	return &resp, nil
}

// List returns sales, newest first
func (s *SaleService) List(ctx context.Context, companyID uuid.UUID, sessionID *uuid.UUID, page, pageSize int) (shared.Paginated[SaleResponse], error) {
	filter := pos.TransactionFilter{Filter: shared.DefaultFilter(), SessionID: sessionID}
	filter.OrderBy = "transaction_date"
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	txs, total, err := s.scope.Repos().Sales().FindAll(ctx, companyID, filter)
	if err != nil {
		return shared.Paginated[SaleResponse]{}, err
	}
	items := make([]SaleResponse, len(txs))
	for i := range txs {
		items[i] = ToSaleResponse(&txs[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func cartLines(in []SaleLineInput) []pos.CartLine {
	lines := make([]pos.CartLine, len(in))
	for i, l := range in {
		lines[i] = pos.CartLine{
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
			UnitCost:        l.UnitCost,
		}
	}
	return lines
}

func tenders(in []TenderInput) []pos.Tender {
	out := make([]pos.Tender, len(in))
	for i, t := range in {
		out[i] = pos.Tender{PaymentMethodID: t.PaymentMethodID, Amount: t.Amount}
	}
	return out
}
