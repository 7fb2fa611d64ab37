package asset

import (
	"context"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// AssetFilter narrows asset listings
type AssetFilter struct {
	shared.Filter
	Status *Status
}

// Repository persists fixed assets
type Repository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*FixedAsset, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter AssetFilter) ([]FixedAsset, int64, error)
	// FindDue lists active assets of every company not yet depreciated for period
	FindDue(ctx context.Context, period string, limit int) ([]FixedAsset, error)
	ExistsByCode(ctx context.Context, companyID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, asset *FixedAsset) error
	SaveWithLock(ctx context.Context, asset *FixedAsset) error
}

// DepreciationRepository stores runs; (asset_id, period) is unique
type DepreciationRepository interface {
	Save(ctx context.Context, run *Depreciation) error
	ExistsForPeriod(ctx context.Context, companyID, assetID uuid.UUID, period string) (bool, error)
	ListByAsset(ctx context.Context, companyID, assetID uuid.UUID) ([]Depreciation, error)
}
