package persistence

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransferRepository implements inventory.TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID loads a transfer with its items
func (r *GormTransferRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*inventory.StockTransfer, error) {
	var model models.StockTransferModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists transfers; WarehouseID matches either end
func (r *GormTransferRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter inventory.TransferFilter) ([]inventory.StockTransfer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockTransferModel{}).Where("company_id = ?", companyID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.WarehouseID != nil {
		query = query.Where("from_warehouse_id = ? OR to_warehouse_id = ?", *filter.WarehouseID, *filter.WarehouseID)
	}
	if filter.Search != "" {
		query = query.Where("transfer_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StockTransferModel
	if err := applyListFilter(query, filter.Filter, TransferSortFields, "created_at").
		Preload("Items").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	transfers := make([]inventory.StockTransfer, len(rows))
	for i := range rows {
		transfers[i] = *rows[i].ToDomain()
	}
	return transfers, total, nil
}

// Save creates the transfer with its items
func (r *GormTransferRepository) Save(ctx context.Context, t *inventory.StockTransfer) error {
	return r.db.WithContext(ctx).Create(models.StockTransferModelFromDomain(t)).Error
}

// SaveWithLock updates the transfer and replaces its items when the stored
// version matches
func (r *GormTransferRepository) SaveWithLock(ctx context.Context, t *inventory.StockTransfer) error {
	model := models.StockTransferModelFromDomain(t)
	model.Version = t.Version + 1
	model.UpdatedAt = time.Now()
	if err := saveLocked(ctx, r.db, model, t.CompanyID, t.Version, "transfer_id", t.ID, model.Items); err != nil {
		return err
	}
	t.Version = model.Version
	t.UpdatedAt = model.UpdatedAt
	return nil
}

// NextNumber reserves TRF-YYYYMM-NNNNN
func (r *GormTransferRepository) NextNumber(ctx context.Context, companyID uuid.UUID, date time.Time) (string, error) {
	return monthlyNumber(ctx, r.db, companyID, "TRF", date)
}

// Ensure GormTransferRepository implements inventory.TransferRepository
var _ inventory.TransferRepository = (*GormTransferRepository)(nil)
