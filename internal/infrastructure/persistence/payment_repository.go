package persistence

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID loads a payment with its allocations
func (r *GormPaymentRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists payments with their allocations
func (r *GormPaymentRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]finance.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).Where("company_id = ?", companyID)
	if t, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", t)
	}
	if partyID, ok := filter.Filters["party_id"]; ok {
		query = query.Where("party_id = ?", partyID)
	}
	if filter.Search != "" {
		query = query.Where("payment_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PaymentModel
	if err := applyListFilter(query, filter, PaymentSortFields, "payment_date").
		Preload("Allocations").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	payments := make([]finance.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, total, nil
}

// Save upserts the payment header and appends allocations not stored yet
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"notes", "journal_entry_id", "updated_at", "version",
			}),
		}).Create(model).Error; err != nil {
			return err
		}
		if len(model.Allocations) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Allocations).Error
	})
}

// NextNumber reserves PAY-YYYYMM-NNNNN
func (r *GormPaymentRepository) NextNumber(ctx context.Context, companyID uuid.UUID, date time.Time) (string, error) {
	return monthlyNumber(ctx, r.db, companyID, "PAY", date)
}

// Ensure GormPaymentRepository implements finance.PaymentRepository
var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
