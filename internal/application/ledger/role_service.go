package ledger

import (
	"context"
	"sort"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// setupRoles must have a company default before documents can post.
// The asset roles are qualified per asset and cash_bank per payment method.
var setupRoles = []ledger.AccountRole{
	ledger.RoleRevenue,
	ledger.RoleCOGS,
	ledger.RoleInventory,
	ledger.RoleReceivable,
	ledger.RolePayable,
	ledger.RoleTax,
	ledger.RoleDiscount,
	ledger.RoleCustomerDeposit,
	ledger.RoleInventoryAdjustment,
}

// RoleMappingService maintains the role -> account table and reports
// whether a company's setup is complete.
type RoleMappingService struct {
	scope  writeset.TransactionScope
	policy ledger.ResolutionPolicy
	logger *zap.Logger
}

// NewRoleMappingService creates a new RoleMappingService
func NewRoleMappingService(scope writeset.TransactionScope, policy ledger.ResolutionPolicy, logger *zap.Logger) *RoleMappingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleMappingService{scope: scope, policy: policy, logger: logger}
}

// Set validates and upserts one mapping
func (s *RoleMappingService) Set(ctx context.Context, companyID uuid.UUID, req SetRoleMappingRequest) (*RoleMappingResponse, error) {
	var mapping *ledger.RoleMapping
	var account *ledger.Account
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		account, err = repos.Accounts().FindByID(ctx, companyID, req.AccountID)
		if err != nil {
			return err
		}
		mapping, err = ledger.NewRoleMapping(companyID, ledger.AccountRole(req.Role), req.Qualifier, account)
		if err != nil {
			return err
		}
		return repos.RoleMappings().Upsert(ctx, mapping)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("role mapping set",
		zap.String("company_id", companyID.String()),
		zap.String("role", mapping.Key().String()),
		zap.String("account_code", account.Code),
	)
	return &RoleMappingResponse{
		ID:          mapping.ID,
		Role:        string(mapping.Role),
		Qualifier:   mapping.Qualifier,
		AccountID:   mapping.AccountID,
		AccountCode: account.Code,
		AccountName: account.Name,
	}, nil
}

// Remove deletes one mapping
func (s *RoleMappingService) Remove(ctx context.Context, companyID uuid.UUID, role, qualifier string) error {
	r := ledger.AccountRole(role)
	if !r.IsValid() {
		return shared.NewValidationError("INVALID_ROLE", "Unknown account role: "+role)
	}
	return s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		return repos.RoleMappings().Delete(ctx, companyID, r, qualifier)
	})
}

// List returns every mapping of the company with its account
func (s *RoleMappingService) List(ctx context.Context, companyID uuid.UUID) ([]RoleMappingResponse, error) {
	repos := s.scope.Repos()
	mappings, err := repos.RoleMappings().FindAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(mappings))
	for _, m := range mappings {
		ids = append(ids, m.AccountID)
	}
	accounts, err := repos.Accounts().FindByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]ledger.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	out := make([]RoleMappingResponse, len(mappings))
	for i, m := range mappings {
		a := byID[m.AccountID]
		out[i] = RoleMappingResponse{
			ID:          m.ID,
			Role:        string(m.Role),
			Qualifier:   m.Qualifier,
			AccountID:   m.AccountID,
			AccountCode: a.Code,
			AccountName: a.Name,
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].Qualifier < out[j].Qualifier
	})
	return out, nil
}

// CheckSetup lists every unmapped slot: the company defaults plus a cash_bank
// account for each active payment method.
func (s *RoleMappingService) CheckSetup(ctx context.Context, companyID uuid.UUID) (*SetupStatusResponse, error) {
	repos := s.scope.Repos()
	mappings, err := repos.RoleMappings().FindAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	methods, err := repos.PaymentMethods().FindAll(ctx, companyID, true)
	if err != nil {
		return nil, err
	}

	needs := make([]ledger.RoleKey, 0, len(setupRoles)+len(methods))
	for _, r := range setupRoles {
		needs = append(needs, ledger.Need(r))
	}
	for _, m := range methods {
		needs = append(needs, ledger.NeedFor(ledger.RoleCashBank, m.Qualifier()))
	}

	table := ledger.NewMappingTable(companyID, mappings)
	missing := ledger.Missing(table, needs...)
	if missing == nil {
		missing = []string{}
	}
	return &SetupStatusResponse{
		Complete: len(missing) == 0,
		Policy:   string(s.policy),
		Mapped:   table.Len(),
		Missing:  missing,
	}, nil
}

// Suggest proposes a default account per role from account names
func (s *RoleMappingService) Suggest(ctx context.Context, companyID uuid.UUID) ([]SuggestionResponse, error) {
	filter := ledger.AccountFilter{Filter: shared.DefaultFilter(), ActiveOnly: true}
	filter.PageSize = 0
	accounts, _, err := s.scope.Repos().Accounts().FindAll(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	suggestions := ledger.SuggestMappings(accounts)
	out := make([]SuggestionResponse, len(suggestions))
	for i, sg := range suggestions {
		out[i] = SuggestionResponse{
			Role:        string(sg.Role),
			AccountID:   sg.AccountID,
			AccountCode: sg.Code,
			AccountName: sg.Name,
			Keyword:     sg.Keyword,
		}
	}
	return out, nil
}
