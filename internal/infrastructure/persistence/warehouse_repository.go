package persistence

import (
	"context"

	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWarehouseRepository implements inventory.WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by ID within a company
func (r *GormWarehouseRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*inventory.Warehouse, error) {
	var model models.WarehouseModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists the warehouses of a company by code
func (r *GormWarehouseRepository) FindAll(ctx context.Context, companyID uuid.UUID) ([]inventory.Warehouse, error) {
	var rows []models.WarehouseModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	warehouses := make([]inventory.Warehouse, len(rows))
	for i := range rows {
		warehouses[i] = *rows[i].ToDomain()
	}
	return warehouses, nil
}

// Save creates or updates a warehouse
func (r *GormWarehouseRepository) Save(ctx context.Context, warehouse *inventory.Warehouse) error {
	model := models.WarehouseModelFromDomain(warehouse)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "name", "pic_user_id", "is_active", "updated_at"}),
	}).Create(model).Error
}

// Ensure GormWarehouseRepository implements inventory.WarehouseRepository
var _ inventory.WarehouseRepository = (*GormWarehouseRepository)(nil)
