package asset

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/asset"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssetService registers and retires fixed assets
type AssetService struct {
	scope  writeset.TransactionScope
	logger *zap.Logger
}

// NewAssetService creates a new AssetService
func NewAssetService(scope writeset.TransactionScope, logger *zap.Logger) *AssetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetService{scope: scope, logger: logger}
}

// Register stores the asset and links its accounts as role mappings
// qualified by the asset id, so depreciation resolves them explicitly.
func (s *AssetService) Register(ctx context.Context, companyID uuid.UUID, req RegisterAssetRequest) (*AssetResponse, error) {
	accounts := asset.Accounts{
		AccumulatedAccountID: req.AccumulatedAccountID,
		ExpenseAccountID:     req.ExpenseAccountID,
	}
	if req.AssetAccountID != nil {
		accounts.AssetAccountID = *req.AssetAccountID
	}
	a, err := asset.NewFixedAsset(companyID, req.Code, req.Name, req.AcquisitionDate,
		req.PurchasePrice, req.SalvageValue, req.UsefulLifeMonths, asset.Method(req.Method), accounts)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		exists, err := repos.Assets().ExistsByCode(ctx, companyID, a.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("ASSET_CODE_EXISTS", "Asset with this code already exists")
		}

		links := a.RoleLinks()
		ids := make([]uuid.UUID, 0, len(links))
		for _, id := range links {
			ids = append(ids, id)
		}
		found, err := repos.Accounts().FindByIDs(ctx, companyID, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*ledger.Account, len(found))
		for i := range found {
			byID[found[i].ID] = &found[i]
		}

		if err := writeset.Step("save asset", repos.Assets().Save(ctx, a)); err != nil {
			return err
		}
		for _, role := range ledger.AllRoles() {
			accountID, ok := links[role]
			if !ok {
				continue
			}
			account, ok := byID[accountID]
			if !ok {
				return shared.NewValidationError("UNKNOWN_ACCOUNT", "Account "+accountID.String()+" not found")
			}
			mapping, err := ledger.NewRoleMapping(companyID, role, a.Qualifier(), account)
			if err != nil {
				return err
			}
			if err := writeset.Step("link asset account", repos.RoleMappings().Upsert(ctx, mapping)); err != nil {
				return err
			}
		}
		return writeset.RecordEvents(ctx, repos, a)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("fixed asset registered",
		zap.String("company_id", companyID.String()),
		zap.String("asset_id", a.ID.String()),
		zap.String("code", a.Code),
		zap.String("method", string(a.Method)),
	)
	resp := ToAssetResponse(a)
	return &resp, nil
}

// Dispose retires an active or fully depreciated asset
func (s *AssetService) Dispose(ctx context.Context, companyID, assetID uuid.UUID, req DisposeAssetRequest) (*AssetResponse, error) {
	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	var a *asset.FixedAsset
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		a, err = repos.Assets().FindByID(ctx, companyID, assetID)
		if err != nil {
			return err
		}
		if err := a.Dispose(date, req.Note); err != nil {
			return err
		}
		if err := writeset.Step("save asset", repos.Assets().SaveWithLock(ctx, a)); err != nil {
			return err
		}
		return writeset.RecordEvents(ctx, repos, a)
	})
	if err != nil {
		return nil, err
	}
	resp := ToAssetResponse(a)
	return &resp, nil
}

// GetByID retrieves an asset
func (s *AssetService) GetByID(ctx context.Context, companyID, assetID uuid.UUID) (*AssetResponse, error) {
	a, err := s.scope.Repos().Assets().FindByID(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	resp := ToAssetResponse(a)
	return &resp, nil
}

// List returns assets ordered by code
func (s *AssetService) List(ctx context.Context, companyID uuid.UUID, f AssetListFilter) (shared.Paginated[AssetResponse], error) {
	filter := asset.AssetFilter{Filter: shared.DefaultFilter()}
	filter.OrderBy = "code"
	filter.OrderDir = "asc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Status != "" {
		status := asset.Status(f.Status)
		filter.Status = &status
	}
	assets, total, err := s.scope.Repos().Assets().FindAll(ctx, companyID, filter)
	if err != nil {
		return shared.Paginated[AssetResponse]{}, err
	}
	items := make([]AssetResponse, len(assets))
	for i := range assets {
		items[i] = ToAssetResponse(&assets[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// History lists the depreciation runs of an asset
func (s *AssetService) History(ctx context.Context, companyID, assetID uuid.UUID) ([]DepreciationResponse, error) {
	repos := s.scope.Repos()
	if _, err := repos.Assets().FindByID(ctx, companyID, assetID); err != nil {
		return nil, err
	}
	runs, err := repos.Depreciations().ListByAsset(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	out := make([]DepreciationResponse, len(runs))
	for i := range runs {
		out[i] = ToDepreciationResponse(&runs[i])
	}
	return out, nil
}
