package persistence

import (
	"context"

	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const receiptSequenceScope = "pos_receipt"

// GormPOSTransactionRepository implements pos.TransactionRepository using GORM
type GormPOSTransactionRepository struct {
	db *gorm.DB
}

// NewGormPOSTransactionRepository creates a new GormPOSTransactionRepository
func NewGormPOSTransactionRepository(db *gorm.DB) *GormPOSTransactionRepository {
	return &GormPOSTransactionRepository{db: db}
}

// Save inserts the sale with its items and payments
func (r *GormPOSTransactionRepository) Save(ctx context.Context, tx *pos.POSTransaction) error {
	return r.db.WithContext(ctx).Create(models.POSTransactionModelFromDomain(tx)).Error
}

func (r *GormPOSTransactionRepository) findOne(ctx context.Context, query string, args ...any) (*pos.POSTransaction, error) {
	var model models.POSTransactionModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where(query, args...).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByID finds a sale by ID within a company
func (r *GormPOSTransactionRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*pos.POSTransaction, error) {
	return r.findOne(ctx, "company_id = ? AND id = ?", companyID, id)
}

// FindByReceipt finds a sale by its receipt number
func (r *GormPOSTransactionRepository) FindByReceipt(ctx context.Context, companyID uuid.UUID, receiptNumber string) (*pos.POSTransaction, error) {
	return r.findOne(ctx, "company_id = ? AND receipt_number = ?", companyID, receiptNumber)
}

// FindByIdempotencyKey finds the sale recorded under a client key
func (r *GormPOSTransactionRepository) FindByIdempotencyKey(ctx context.Context, companyID uuid.UUID, key string) (*pos.POSTransaction, error) {
	return r.findOne(ctx, "company_id = ? AND idempotency_key = ?", companyID, key)
}

// FindAll lists sales with their items and payments
func (r *GormPOSTransactionRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter pos.TransactionFilter) ([]pos.POSTransaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.POSTransactionModel{}).Where("company_id = ?", companyID)
	if filter.SessionID != nil {
		query = query.Where("session_id = ?", *filter.SessionID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.Search != "" {
		query = query.Where("receipt_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.POSTransactionModel
	if err := applyListFilter(query, filter.Filter, POSTransactionSortFields, "transaction_date").
		Preload("Items").
		Preload("Payments").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	sales := make([]pos.POSTransaction, len(rows))
	for i := range rows {
		sales[i] = *rows[i].ToDomain()
	}
	return sales, total, nil
}

// NextReceiptSequence reserves the next receipt number of the day
func (r *GormPOSTransactionRepository) NextReceiptSequence(ctx context.Context, companyID uuid.UUID, period string) (int, error) {
	return nextSequence(ctx, r.db, companyID, receiptSequenceScope, period)
}

// Ensure GormPOSTransactionRepository implements pos.TransactionRepository
var _ pos.TransactionRepository = (*GormPOSTransactionRepository)(nil)
