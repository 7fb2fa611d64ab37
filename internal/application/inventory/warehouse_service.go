package inventory

import (
	"context"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WarehouseService manages warehouses and exposes their stock
type WarehouseService struct {
	scope  writeset.TransactionScope
	logger *zap.Logger
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(scope writeset.TransactionScope, logger *zap.Logger) *WarehouseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarehouseService{scope: scope, logger: logger}
}

// Create registers a warehouse
func (s *WarehouseService) Create(ctx context.Context, companyID uuid.UUID, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	w, err := inventory.NewWarehouse(companyID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.PICUserID != nil {
		if err := w.AssignPIC(*req.PICUserID); err != nil {
			return nil, err
		}
	}
	if err := s.scope.Repos().Warehouses().Save(ctx, w); err != nil {
		return nil, err
	}
	s.logger.Info("warehouse created",
		zap.String("company_id", companyID.String()),
		zap.String("warehouse_id", w.ID.String()),
		zap.String("code", w.Code),
	)
	resp := ToWarehouseResponse(w)
	return &resp, nil
}

// AssignPIC changes who approves transfers into the warehouse
func (s *WarehouseService) AssignPIC(ctx context.Context, companyID, warehouseID uuid.UUID, req AssignPICRequest) (*WarehouseResponse, error) {
	repo := s.scope.Repos().Warehouses()
	w, err := repo.FindByID(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	if err := w.AssignPIC(req.UserID); err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, w); err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(w)
	return &resp, nil
}

// GetByID retrieves a warehouse
func (s *WarehouseService) GetByID(ctx context.Context, companyID, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	w, err := s.scope.Repos().Warehouses().FindByID(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(w)
	return &resp, nil
}

// List returns every warehouse of the company
func (s *WarehouseService) List(ctx context.Context, companyID uuid.UUID) ([]WarehouseResponse, error) {
	ws, err := s.scope.Repos().Warehouses().FindAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]WarehouseResponse, len(ws))
	for i := range ws {
		out[i] = ToWarehouseResponse(&ws[i])
	}
	return out, nil
}

// Levels returns the stock levels held in a warehouse
func (s *WarehouseService) Levels(ctx context.Context, companyID, warehouseID uuid.UUID) ([]StockLevelResponse, error) {
	if _, err := s.scope.Repos().Warehouses().FindByID(ctx, companyID, warehouseID); err != nil {
		return nil, err
	}
	levels, err := s.scope.Repos().Stock().ListLevels(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]StockLevelResponse, len(levels))
	for i, l := range levels {
		out[i] = StockLevelResponse{
			WarehouseID: l.WarehouseID,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UpdatedAt:   l.UpdatedAt,
		}
	}
	return out, nil
}

// Movements returns the movement records written for one business reference
func (s *WarehouseService) Movements(ctx context.Context, companyID uuid.UUID, refType string, refID uuid.UUID) ([]StockMovementResponse, error) {
	ms, err := s.scope.Repos().Stock().ListMovements(ctx, companyID, refType, refID)
	if err != nil {
		return nil, err
	}
	out := make([]StockMovementResponse, len(ms))
	for i, m := range ms {
		out[i] = ToStockMovementResponse(m)
	}
	return out, nil
}
