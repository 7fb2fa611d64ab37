package inventory

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferService moves stock between warehouses
type TransferService struct {
	scope  writeset.TransactionScope
	logger *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(scope writeset.TransactionScope, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{scope: scope, logger: logger}
}

// Create submits a new transfer. Both warehouses must exist.
func (s *TransferService) Create(ctx context.Context, companyID uuid.UUID, req CreateTransferRequest) (*TransferResponse, error) {
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	lines := make([]inventory.TransferLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = inventory.TransferLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		}
	}

	var transfer *inventory.StockTransfer
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		for _, id := range []uuid.UUID{req.FromWarehouseID, req.ToWarehouseID} {
			if _, err := repos.Warehouses().FindByID(ctx, companyID, id); err != nil {
				return err
			}
		}
		number, err := repos.Transfers().NextNumber(ctx, companyID, date)
		if err != nil {
			return writeset.Step("reserve transfer number", err)
		}
		transfer, err = inventory.NewStockTransfer(companyID, number, req.FromWarehouseID, req.ToWarehouseID, lines, req.RequestedBy, req.Notes)
		if err != nil {
			return err
		}
		if err := writeset.Step("save transfer", repos.Transfers().Save(ctx, transfer)); err != nil {
			return err
		}
		return writeset.RecordEvents(ctx, repos, transfer)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock transfer submitted",
		zap.String("company_id", companyID.String()),
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("transfer_number", transfer.TransferNumber),
	)
	resp := ToTransferResponse(transfer)
	return &resp, nil
}

// TransitionStockTransfer fires event on a pending transfer. Approval moves
// the stock and completes the transfer in the same write-set, so an
// approved transfer is never left without its movements. Rejection is
// terminal and touches no stock.
func (s *TransferService) TransitionStockTransfer(ctx context.Context, companyID, transferID uuid.UUID, req TransitionTransferRequest) (*TransferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "TransitionStockTransfer")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCompanyID, companyID.String(), "transfer.event", req.Event)

	event := inventory.TransferEvent(req.Event)
	if event != inventory.EventApprove && event != inventory.EventReject {
		return nil, shared.NewValidationError("INVALID_EVENT", "Transfer event must be approve or reject")
	}

	var transfer *inventory.StockTransfer
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		transfer, err = repos.Transfers().FindByID(ctx, companyID, transferID)
		if err != nil {
			return err
		}
		destination, err := repos.Warehouses().FindByID(ctx, companyID, transfer.ToWarehouseID)
		if err != nil {
			return err
		}

		if event == inventory.EventReject {
			if err := transfer.Reject(req.ActorID, destination, req.Reason); err != nil {
				return err
			}
		} else {
			if err := transfer.Approve(req.ActorID, destination); err != nil {
				return err
			}
			movements, err := transfer.Movements()
			if err != nil {
				return err
			}
			if err := ApplyMovements(ctx, repos, movements...); err != nil {
				return err
			}
			if err := transfer.Complete(); err != nil {
				return err
			}
		}

		if err := writeset.Step("save transfer", repos.Transfers().SaveWithLock(ctx, transfer)); err != nil {
			return err
		}
		return writeset.RecordEvents(ctx, repos, transfer)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("stock transfer decided",
		zap.String("company_id", companyID.String()),
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("event", req.Event),
		zap.String("status", string(transfer.Status)),
	)
	resp := ToTransferResponse(transfer)
	return &resp, nil
}

// GetByID retrieves a transfer
func (s *TransferService) GetByID(ctx context.Context, companyID, transferID uuid.UUID) (*TransferResponse, error) {
	t, err := s.scope.Repos().Transfers().FindByID(ctx, companyID, transferID)
	if err != nil {
		return nil, err
	}
	resp := ToTransferResponse(t)
	return &resp, nil
}

// List returns transfers, newest first
func (s *TransferService) List(ctx context.Context, companyID uuid.UUID, f TransferListFilter) (shared.Paginated[TransferResponse], error) {
	filter := inventory.TransferFilter{Filter: shared.DefaultFilter(), WarehouseID: f.WarehouseID}
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Status != "" {
		status := inventory.TransferStatus(f.Status)
		filter.Status = &status
	}
	ts, total, err := s.scope.Repos().Transfers().FindAll(ctx, companyID, filter)
	if err != nil {
		return shared.Paginated[TransferResponse]{}, err
	}
	items := make([]TransferResponse, len(ts))
	for i := range ts {
		items[i] = ToTransferResponse(&ts[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
