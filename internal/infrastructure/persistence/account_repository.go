package persistence

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by ID within a company
func (r *GormAccountRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds an account by its code within a company
func (r *GormAccountRepository) FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyID, code).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the requested accounts; missing ids are simply absent
func (r *GormAccountRepository) FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]ledger.Account, error) {
	if len(ids) == 0 {
		return []ledger.Account{}, nil
	}
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.Account, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, nil
}

// FindAll lists accounts of a company ordered by code unless told otherwise
func (r *GormAccountRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter ledger.AccountFilter) ([]ledger.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AccountModel{}).Where("company_id = ?", companyID)
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listFilter := filter.Filter
	if listFilter.OrderBy == "" {
		listFilter.OrderBy = "code"
		listFilter.OrderDir = "asc"
	}
	var rows []models.AccountModel
	if err := applyListFilter(query, listFilter, AccountSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	accounts := make([]ledger.Account, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, total, nil
}

// ExistsByCode reports whether the code is taken within the company
func (r *GormAccountRepository) ExistsByCode(ctx context.Context, companyID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccountModel{}).
		Where("company_id = ? AND code = ?", companyID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates the account or updates its descriptive columns. The running
// balance and the used flag are owned by ApplyBalanceDeltas and never
// overwritten here.
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	db := r.db.WithContext(ctx)
	result := db.Model(model).
		Where("company_id = ?", account.CompanyID).
		Select("*").
		Omit("id", "company_id", "created_at", "created_by", "balance", "has_transactions").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return db.Create(model).Error
}

// ApplyBalanceDeltas adds each delta to the stored balance in place
func (r *GormAccountRepository) ApplyBalanceDeltas(ctx context.Context, companyID uuid.UUID, deltas map[uuid.UUID]decimal.Decimal) error {
	db := r.db.WithContext(ctx)
	now := time.Now()
	for _, id := range sortedIDs(deltas) {
		result := db.Model(&models.AccountModel{}).
			Where("id = ? AND company_id = ?", id, companyID).
			Updates(map[string]any{
				"balance":          gorm.Expr("balance + ?", deltas[id]),
				"has_transactions": true,
				"updated_at":       now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
	}
	return nil
}

// sortedIDs fixes the update order so concurrent postings lock rows in the
// same sequence.
func sortedIDs(m map[uuid.UUID]decimal.Decimal) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	return ids
}

// Ensure GormAccountRepository implements ledger.AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
