package ledger

import (
	"context"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountService manages the chart of accounts
type AccountService struct {
	scope writeset.TransactionScope
}

// NewAccountService creates a new AccountService
func NewAccountService(scope writeset.TransactionScope) *AccountService {
	return &AccountService{scope: scope}
}

// Create adds an account. Codes are unique per company.
func (s *AccountService) Create(ctx context.Context, companyID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	account, err := ledger.NewAccount(companyID, req.Code, req.Name, ledger.AccountType(req.Type))
	if err != nil {
		return nil, err
	}
	account.Description = req.Description

	err = s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		exists, err := repos.Accounts().ExistsByCode(ctx, companyID, account.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("ACCOUNT_CODE_EXISTS", "Account code "+account.Code+" already exists")
		}
		if req.ParentID != nil {
			parent, err := repos.Accounts().FindByID(ctx, companyID, *req.ParentID)
			if err != nil {
				return err
			}
			if err := account.SetParent(parent); err != nil {
				return err
			}
		}
		return repos.Accounts().Save(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// Update renames, reclassifies, activates or deactivates an account
func (s *AccountService) Update(ctx context.Context, companyID, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	var account *ledger.Account
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		account, err = repos.Accounts().FindByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			if err := account.Rename(*req.Name); err != nil {
				return err
			}
		}
		if req.Type != nil && ledger.AccountType(*req.Type) != account.Type {
			if err := account.ChangeType(ledger.AccountType(*req.Type)); err != nil {
				return err
			}
		}
		if req.IsActive != nil && *req.IsActive != account.IsActive {
			if *req.IsActive {
				account.Activate()
			} else {
				account.Deactivate()
			}
		}
		return repos.Accounts().Save(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// GetByID returns one account
func (s *AccountService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.scope.Repos().Accounts().FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// List returns accounts ordered by code
func (s *AccountService) List(ctx context.Context, companyID uuid.UUID, f AccountListFilter) (shared.Paginated[AccountResponse], error) {
	filter := ledger.AccountFilter{Filter: pageFilter(f.Page, f.PageSize), ActiveOnly: f.ActiveOnly}
	filter.OrderBy = "code"
	filter.OrderDir = "asc"
	filter.Search = f.Search
	if f.Type != "" {
		t := ledger.AccountType(f.Type)
		filter.Type = &t
	}

	accounts, total, err := s.scope.Repos().Accounts().FindAll(ctx, companyID, filter)
	if err != nil {
		return shared.Paginated[AccountResponse]{}, err
	}
	items := make([]AccountResponse, len(accounts))
	for i := range accounts {
		items[i] = ToAccountResponse(&accounts[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
