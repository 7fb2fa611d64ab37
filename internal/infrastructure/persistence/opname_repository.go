package persistence

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOpnameRepository implements inventory.OpnameRepository using GORM
type GormOpnameRepository struct {
	db *gorm.DB
}

// NewGormOpnameRepository creates a new GormOpnameRepository
func NewGormOpnameRepository(db *gorm.DB) *GormOpnameRepository {
	return &GormOpnameRepository{db: db}
}

// FindByID loads a stock count with its items
func (r *GormOpnameRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*inventory.StockOpname, error) {
	var model models.StockOpnameModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists stock counts
func (r *GormOpnameRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]inventory.StockOpname, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockOpnameModel{}).Where("company_id = ?", companyID)
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if warehouseID, ok := filter.Filters["warehouse_id"]; ok {
		query = query.Where("warehouse_id = ?", warehouseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StockOpnameModel
	if err := applyListFilter(query, filter, OpnameSortFields, "opname_date").
		Preload("Items").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	opnames := make([]inventory.StockOpname, len(rows))
	for i := range rows {
		opnames[i] = *rows[i].ToDomain()
	}
	return opnames, total, nil
}

// Save creates the count with its items
func (r *GormOpnameRepository) Save(ctx context.Context, o *inventory.StockOpname) error {
	return r.db.WithContext(ctx).Create(models.StockOpnameModelFromDomain(o)).Error
}

// SaveWithLock updates the count and replaces its items when the stored
// version matches
func (r *GormOpnameRepository) SaveWithLock(ctx context.Context, o *inventory.StockOpname) error {
	model := models.StockOpnameModelFromDomain(o)
	model.Version = o.Version + 1
	model.UpdatedAt = time.Now()
	if err := saveLocked(ctx, r.db, model, o.CompanyID, o.Version, "opname_id", o.ID, model.Items); err != nil {
		return err
	}
	o.Version = model.Version
	o.UpdatedAt = model.UpdatedAt
	return nil
}

// NextNumber reserves OPN-YYYYMM-NNNNN
func (r *GormOpnameRepository) NextNumber(ctx context.Context, companyID uuid.UUID, date time.Time) (string, error) {
	return monthlyNumber(ctx, r.db, companyID, "OPN", date)
}

// Ensure GormOpnameRepository implements inventory.OpnameRepository
var _ inventory.OpnameRepository = (*GormOpnameRepository)(nil)
