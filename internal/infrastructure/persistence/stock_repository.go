package persistence

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements inventory.StockRepository using GORM.
// Levels are never read-modify-written: every change is a single guarded
// statement so concurrent sales cannot oversell.
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// AppendMovements inserts movement records
func (r *GormStockRepository) AppendMovements(ctx context.Context, movements ...inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]models.StockMovementModel, len(movements))
	for i, m := range movements {
		rows[i] = models.StockMovementModelFromDomain(m)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Decrease subtracts qty only while enough stock remains
func (r *GormStockRepository) Decrease(ctx context.Context, companyID, warehouseID, productID uuid.UUID, qty decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.StockLevelModel{}).
		Where("company_id = ? AND warehouse_id = ? AND product_id = ? AND quantity >= ?",
			companyID, warehouseID, productID, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}

// Increase adds qty, creating the level row on first receipt
func (r *GormStockRepository) Increase(ctx context.Context, companyID, warehouseID, productID uuid.UUID, qty decimal.Decimal) error {
	level := models.StockLevelModel{
		CompanyID:   companyID,
		WarehouseID: warehouseID,
		ProductID:   productID,
		Quantity:    qty,
		UpdatedAt:   time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_id"}, {Name: "warehouse_id"}, {Name: "product_id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("stock_levels.quantity + excluded.quantity")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
		},
	}).Create(&level).Error
}

// GetLevel returns the on-hand quantity; an absent row is zero
func (r *GormStockRepository) GetLevel(ctx context.Context, companyID, warehouseID, productID uuid.UUID) (decimal.Decimal, error) {
	var rows []models.StockLevelModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND warehouse_id = ? AND product_id = ?", companyID, warehouseID, productID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return rows[0].Quantity, nil
}

// ListLevels returns every level held in a warehouse
func (r *GormStockRepository) ListLevels(ctx context.Context, companyID, warehouseID uuid.UUID) ([]inventory.StockLevel, error) {
	var rows []models.StockLevelModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND warehouse_id = ?", companyID, warehouseID).
		Order("product_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	levels := make([]inventory.StockLevel, len(rows))
	for i := range rows {
		levels[i] = rows[i].ToDomain()
	}
	return levels, nil
}

// ListMovements returns the movements written for one business reference
func (r *GormStockRepository) ListMovements(ctx context.Context, companyID uuid.UUID, refType string, refID uuid.UUID) ([]inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND reference_type = ? AND reference_id = ?", companyID, refType, refID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = rows[i].ToDomain()
	}
	return movements, nil
}

// Ensure GormStockRepository implements inventory.StockRepository
var _ inventory.StockRepository = (*GormStockRepository)(nil)
