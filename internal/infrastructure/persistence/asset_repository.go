package persistence

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/asset"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAssetRepository implements asset.Repository using GORM
type GormAssetRepository struct {
	db *gorm.DB
}

// NewGormAssetRepository creates a new GormAssetRepository
func NewGormAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

// FindByID finds an asset by ID within a company
func (r *GormAssetRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*asset.FixedAsset, error) {
	var model models.FixedAssetModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists the assets of a company
func (r *GormAssetRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter asset.AssetFilter) ([]asset.FixedAsset, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FixedAssetModel{}).Where("company_id = ?", companyID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.FixedAssetModel
	if err := applyListFilter(query, filter.Filter, AssetSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return assetsToDomain(rows), total, nil
}

// FindDue lists active assets of every company that were acquired by the
// end of period and have not been depreciated for it yet
func (r *GormAssetRepository) FindDue(ctx context.Context, period string, limit int) ([]asset.FixedAsset, error) {
	start, err := asset.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	nextMonth := start.AddDate(0, 1, 0)
	query := r.db.WithContext(ctx).
		Where("status = ?", asset.StatusActive).
		Where("(last_period IS NULL OR last_period = '' OR last_period < ?)", period).
		Where("acquisition_date < ?", nextMonth).
		Order("company_id ASC, code ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.FixedAssetModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return assetsToDomain(rows), nil
}

// ExistsByCode checks if an asset code is taken within a company
func (r *GormAssetRepository) ExistsByCode(ctx context.Context, companyID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FixedAssetModel{}).
		Where("company_id = ? AND code = ?", companyID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a newly registered asset
func (r *GormAssetRepository) Save(ctx context.Context, a *asset.FixedAsset) error {
	return r.db.WithContext(ctx).Create(models.FixedAssetModelFromDomain(a)).Error
}

// SaveWithLock updates the asset when the stored version matches
func (r *GormAssetRepository) SaveWithLock(ctx context.Context, a *asset.FixedAsset) error {
	model := models.FixedAssetModelFromDomain(a)
	model.Version = a.Version + 1
	model.UpdatedAt = time.Now()
	if err := updateWithVersion(r.db.WithContext(ctx), model, a.CompanyID, a.Version); err != nil {
		return err
	}
	a.Version = model.Version
	a.UpdatedAt = model.UpdatedAt
	return nil
}

func assetsToDomain(rows []models.FixedAssetModel) []asset.FixedAsset {
	assets := make([]asset.FixedAsset, len(rows))
	for i := range rows {
		assets[i] = *rows[i].ToDomain()
	}
	return assets
}

// Ensure GormAssetRepository implements asset.Repository
var _ asset.Repository = (*GormAssetRepository)(nil)

// GormDepreciationRepository implements asset.DepreciationRepository using GORM
type GormDepreciationRepository struct {
	db *gorm.DB
}

// NewGormDepreciationRepository creates a new GormDepreciationRepository
func NewGormDepreciationRepository(db *gorm.DB) *GormDepreciationRepository {
	return &GormDepreciationRepository{db: db}
}

// Save inserts a run; the (asset_id, period) unique index rejects a second
// run for the same period
func (r *GormDepreciationRepository) Save(ctx context.Context, run *asset.Depreciation) error {
	return r.db.WithContext(ctx).Create(models.DepreciationModelFromDomain(run)).Error
}

// ExistsForPeriod reports whether the asset was already depreciated for period
func (r *GormDepreciationRepository) ExistsForPeriod(ctx context.Context, companyID, assetID uuid.UUID, period string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.DepreciationModel{}).
		Where("company_id = ? AND asset_id = ? AND period = ?", companyID, assetID, period).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByAsset returns the depreciation schedule booked so far
func (r *GormDepreciationRepository) ListByAsset(ctx context.Context, companyID, assetID uuid.UUID) ([]asset.Depreciation, error) {
	var rows []models.DepreciationModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND asset_id = ?", companyID, assetID).
		Order("period ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	runs := make([]asset.Depreciation, len(rows))
	for i := range rows {
		runs[i] = rows[i].ToDomain()
	}
	return runs, nil
}

// Ensure GormDepreciationRepository implements asset.DepreciationRepository
var _ asset.DepreciationRepository = (*GormDepreciationRepository)(nil)
