package persistence

import (
	"context"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRoleMappingRepository implements ledger.RoleMappingRepository using GORM
type GormRoleMappingRepository struct {
	db *gorm.DB
}

// NewGormRoleMappingRepository creates a new GormRoleMappingRepository
func NewGormRoleMappingRepository(db *gorm.DB) *GormRoleMappingRepository {
	return &GormRoleMappingRepository{db: db}
}

// FindAll returns every mapping of the company
func (r *GormRoleMappingRepository) FindAll(ctx context.Context, companyID uuid.UUID) ([]ledger.RoleMapping, error) {
	var rows []models.RoleMappingModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("role ASC, qualifier ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	mappings := make([]ledger.RoleMapping, len(rows))
	for i := range rows {
		mappings[i] = rows[i].ToDomain()
	}
	return mappings, nil
}

// Upsert points (role, qualifier) at a new account, keeping the row id of an
// existing mapping
func (r *GormRoleMappingRepository) Upsert(ctx context.Context, mapping *ledger.RoleMapping) error {
	model := models.RoleMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "role"}, {Name: "qualifier"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_id", "updated_at"}),
	}).Create(model).Error
}

// Delete removes a mapping; removing an absent mapping is ErrNotFound
func (r *GormRoleMappingRepository) Delete(ctx context.Context, companyID uuid.UUID, role ledger.AccountRole, qualifier string) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND role = ? AND qualifier = ?", companyID, role, qualifier).
		Delete(&models.RoleMappingModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormRoleMappingRepository implements ledger.RoleMappingRepository
var _ ledger.RoleMappingRepository = (*GormRoleMappingRepository)(nil)
