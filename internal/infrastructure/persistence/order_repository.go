package persistence

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/trade"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID within a company
func (r *GormOrderRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by number within a company
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, companyID uuid.UUID, orderNumber string) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND order_number = ?", companyID, orderNumber).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("company_id = ?", companyID)
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number LIKE ? OR party_name LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := applyListFilter(query, filter.Filter, OrderSortFields, "order_date").
		Preload("Items").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

// Save creates the order together with its items
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Create(models.OrderModelFromDomain(order)).Error
}

// SaveWithLock saves the order with optimistic locking. Items are replaced
// wholesale so removed lines disappear.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	model.Version = order.Version + 1
	model.UpdatedAt = time.Now()
	if err := saveLocked(ctx, r.db, model, order.CompanyID, order.Version, "order_id", order.ID, model.Items); err != nil {
		return err
	}
	order.Version = model.Version
	order.UpdatedAt = model.UpdatedAt
	return nil
}

// ExistsByOrderNumber checks if an order number is taken within a company
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, companyID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("company_id = ? AND order_number = ?", companyID, orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormOrderRepository implements trade.OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
