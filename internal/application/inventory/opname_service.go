package inventory

import (
	"context"
	"errors"
	"time"

	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/posting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpnameService runs physical stock counts
type OpnameService struct {
	scope  writeset.TransactionScope
	poster *ledgerapp.Poster
	logger *zap.Logger
}

// NewOpnameService creates a new OpnameService
func NewOpnameService(scope writeset.TransactionScope, poster *ledgerapp.Poster, logger *zap.Logger) *OpnameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpnameService{scope: scope, poster: poster, logger: logger}
}

// Create opens a draft count sheet for a warehouse
func (s *OpnameService) Create(ctx context.Context, companyID uuid.UUID, req CreateOpnameRequest) (*OpnameResponse, error) {
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	var opname *inventory.StockOpname
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		if _, err := repos.Warehouses().FindByID(ctx, companyID, req.WarehouseID); err != nil {
			return err
		}
		number, err := repos.Opnames().NextNumber(ctx, companyID, date)
		if err != nil {
			return writeset.Step("reserve opname number", err)
		}
		opname, err = inventory.NewStockOpname(companyID, req.WarehouseID, number, date)
		if err != nil {
			return err
		}
		opname.Notes = req.Notes
		return writeset.Step("save opname", repos.Opnames().Save(ctx, opname))
	})
	if err != nil {
		return nil, err
	}
	resp := ToOpnameResponse(opname)
	return &resp, nil
}

// AddItem snapshots the current level of a product into a draft count
func (s *OpnameService) AddItem(ctx context.Context, companyID, opnameID uuid.UUID, req AddOpnameItemRequest) (*OpnameResponse, error) {
	return s.mutate(ctx, companyID, opnameID, func(repos writeset.Repositories, o *inventory.StockOpname) error {
		qty, err := repos.Stock().GetLevel(ctx, companyID, o.WarehouseID, req.ProductID)
		if err != nil {
			return err
		}
		return o.AddItem(req.ProductID, req.ProductName, qty, req.UnitCost)
	})
}

// Start moves a draft count to counting
func (s *OpnameService) Start(ctx context.Context, companyID, opnameID uuid.UUID) (*OpnameResponse, error) {
	return s.mutate(ctx, companyID, opnameID, func(_ writeset.Repositories, o *inventory.StockOpname) error {
		return o.Start()
	})
}

// RecordCount stores a counted quantity
func (s *OpnameService) RecordCount(ctx context.Context, companyID, opnameID uuid.UUID, req RecordCountRequest) (*OpnameResponse, error) {
	return s.mutate(ctx, companyID, opnameID, func(_ writeset.Repositories, o *inventory.StockOpname) error {
		return o.RecordCount(req.ProductID, req.Quantity, req.Remark)
	})
}

// Complete closes the count. Adjustment movements, stock levels and the
// valued difference posting are written in one write-set.
func (s *OpnameService) Complete(ctx context.Context, companyID, opnameID uuid.UUID, req CompleteOpnameRequest) (*OpnameResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "CompleteOpname")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCompanyID, companyID.String())

	var (
		opname *inventory.StockOpname
		entry  *ledger.JournalEntry
		moved  int
	)
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		opname, err = repos.Opnames().FindByID(ctx, companyID, opnameID)
		if err != nil {
			return err
		}
		if err := opname.Complete(req.ActorID); err != nil {
			return err
		}
		movements, err := opname.Movements()
		if err != nil {
			return err
		}
		if err := ApplyMovements(ctx, repos, movements...); err != nil {
			return err
		}
		moved = len(movements)

		entry, err = s.poster.Post(ctx, repos, companyID, opname.PostingEvent())
		if err != nil && !posting.IsNothingToPost(err) {
			return err
		}
		if err := writeset.Step("save opname", repos.Opnames().SaveWithLock(ctx, opname)); err != nil {
			return err
		}
		return writeset.RecordEvents(ctx, repos, opname)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	fields := []zap.Field{
		zap.String("company_id", companyID.String()),
		zap.String("opname_id", opname.ID.String()),
		zap.Int("movements", moved),
	}
	resp := ToOpnameResponse(opname)
	if entry != nil {
		id := entry.ID
		resp.JournalEntryID = &id
		fields = append(fields, zap.String("entry_number", entry.EntryNumber))
	}
	s.logger.Info("stock opname completed", fields...)
	return &resp, nil
}

// GetByID retrieves a count with the id of its adjustment entry, if any
func (s *OpnameService) GetByID(ctx context.Context, companyID, opnameID uuid.UUID) (*OpnameResponse, error) {
	repos := s.scope.Repos()
	o, err := repos.Opnames().FindByID(ctx, companyID, opnameID)
	if err != nil {
		return nil, err
	}
	resp := ToOpnameResponse(o)
	if o.Status == inventory.OpnameCompleted {
		entry, err := repos.Journals().FindByReference(ctx, companyID, ledger.RefStockOpname, o.ID)
		switch {
		case err == nil:
			id := entry.ID
			resp.JournalEntryID = &id
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
	}
	return &resp, nil
}

// List returns counts, newest first
func (s *OpnameService) List(ctx context.Context, companyID uuid.UUID, page, pageSize int) (shared.Paginated[OpnameResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	counts, total, err := s.scope.Repos().Opnames().FindAll(ctx, companyID, filter)
	if err != nil {
		return shared.Paginated[OpnameResponse]{}, err
	}
	items := make([]OpnameResponse, len(counts))
	for i := range counts {
		items[i] = ToOpnameResponse(&counts[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (s *OpnameService) mutate(ctx context.Context, companyID, opnameID uuid.UUID, fn func(writeset.Repositories, *inventory.StockOpname) error) (*OpnameResponse, error) {
	var opname *inventory.StockOpname
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		opname, err = repos.Opnames().FindByID(ctx, companyID, opnameID)
		if err != nil {
			return err
		}
		if err := fn(repos, opname); err != nil {
			return err
		}
		return writeset.Step("save opname", repos.Opnames().SaveWithLock(ctx, opname))
	})
	if err != nil {
		return nil, err
	}
	resp := ToOpnameResponse(opname)
	return &resp, nil
}
