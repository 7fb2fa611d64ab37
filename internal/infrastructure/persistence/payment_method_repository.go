package persistence

import (
	"context"

	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentMethodRepository implements pos.PaymentMethodRepository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGormPaymentMethodRepository creates a new GormPaymentMethodRepository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// FindByID finds a tender by ID within a company
func (r *GormPaymentMethodRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*pos.PaymentMethod, error) {
	var model models.PaymentMethodModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the requested tenders
func (r *GormPaymentMethodRepository) FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]pos.PaymentMethod, error) {
	if len(ids) == 0 {
		return []pos.PaymentMethod{}, nil
	}
	var rows []models.PaymentMethodModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentMethodsToDomain(rows), nil
}

// FindAll lists the tenders of a company by name
func (r *GormPaymentMethodRepository) FindAll(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]pos.PaymentMethod, error) {
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.PaymentMethodModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentMethodsToDomain(rows), nil
}

// Save creates or updates a tender
func (r *GormPaymentMethodRepository) Save(ctx context.Context, method *pos.PaymentMethod) error {
	model := models.PaymentMethodModelFromDomain(method)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "is_cash", "is_active", "updated_at"}),
	}).Create(model).Error
}

func paymentMethodsToDomain(rows []models.PaymentMethodModel) []pos.PaymentMethod {
	methods := make([]pos.PaymentMethod, len(rows))
	for i := range rows {
		methods[i] = *rows[i].ToDomain()
	}
	return methods
}

// Ensure GormPaymentMethodRepository implements pos.PaymentMethodRepository
var _ pos.PaymentMethodRepository = (*GormPaymentMethodRepository)(nil)
