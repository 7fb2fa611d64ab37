package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountRole is a semantic slot a posting rule needs filled with a concrete account
type AccountRole string

const (
	RoleRevenue                 AccountRole = "revenue"
	RoleCOGS                    AccountRole = "cogs"
	RoleInventory               AccountRole = "inventory"
	RoleReceivable              AccountRole = "receivable"
	RolePayable                 AccountRole = "payable"
	RoleTax                     AccountRole = "tax"
	RoleDiscount                AccountRole = "discount"
	RoleCashBank                AccountRole = "cash_bank"
	RoleAsset                   AccountRole = "asset"
	RoleAccumulatedDepreciation AccountRole = "accumulated_depreciation"
	RoleDepreciationExpense     AccountRole = "depreciation_expense"
	RoleCustomerDeposit         AccountRole = "customer_deposit"
	RoleInventoryAdjustment     AccountRole = "inventory_adjustment"
)

// AllRoles lists the role vocabulary
func AllRoles() []AccountRole {
	return []AccountRole{
		RoleRevenue, RoleCOGS, RoleInventory, RoleReceivable, RolePayable,
		RoleTax, RoleDiscount, RoleCashBank, RoleAsset,
		RoleAccumulatedDepreciation, RoleDepreciationExpense,
		RoleCustomerDeposit, RoleInventoryAdjustment,
	}
}

func (r AccountRole) IsValid() bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}

func (r AccountRole) String() string {
	return string(r)
}

// compatibleTypes lists the account types a role may be mapped to
var compatibleTypes = map[AccountRole][]AccountType{
	RoleRevenue:                 {AccountTypeRevenue},
	RoleCOGS:                    {AccountTypeExpense},
	RoleInventory:               {AccountTypeAsset},
	RoleReceivable:              {AccountTypeAsset},
	RolePayable:                 {AccountTypeLiability},
	RoleTax:                     {AccountTypeLiability, AccountTypeAsset, AccountTypeExpense},
	RoleDiscount:                {AccountTypeRevenue, AccountTypeExpense},
	RoleCashBank:                {AccountTypeCashBank, AccountTypeAsset},
	RoleAsset:                   {AccountTypeAsset},
	RoleAccumulatedDepreciation: {AccountTypeAsset},
	RoleDepreciationExpense:     {AccountTypeExpense},
	RoleCustomerDeposit:         {AccountTypeLiability},
	RoleInventoryAdjustment:     {AccountTypeExpense, AccountTypeRevenue},
}

// Accepts reports whether an account of type t can fill the role
func (r AccountRole) Accepts(t AccountType) bool {
	for _, ok := range compatibleTypes[r] {
		if ok == t {
			return true
		}
	}
	return false
}

// RoleMapping is one row of a company's explicit role -> account table.
// Qualifier narrows the mapping to one document-level link: a payment method
// id for cash_bank, an asset id for the asset roles, a product id for
// revenue/cogs. An empty qualifier is the company default for the role.
type RoleMapping struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Role      AccountRole
	Qualifier string
	AccountID uuid.UUID
}

// NewRoleMapping validates that account can fill role for companyID
func NewRoleMapping(companyID uuid.UUID, role AccountRole, qualifier string, account *Account) (*RoleMapping, error) {
	if !role.IsValid() {
		return nil, shared.NewValidationError("INVALID_ROLE", "Unknown account role: "+string(role))
	}
	if account == nil {
		return nil, shared.NewValidationError("INVALID_ACCOUNT", "Account is required")
	}
	if account.CompanyID != companyID {
		return nil, shared.NewValidationError("INVALID_ACCOUNT", "Account belongs to another company")
	}
	if !account.IsActive {
		return nil, shared.NewValidationError("INACTIVE_ACCOUNT", "Account "+account.Code+" is inactive")
	}
	if !role.Accepts(account.Type) {
		return nil, shared.NewValidationError("INCOMPATIBLE_ACCOUNT_TYPE",
			fmt.Sprintf("Role %s cannot be mapped to a %s account", role, account.Type))
	}
	return &RoleMapping{
		ID:        uuid.New(),
		CompanyID: companyID,
		Role:      role,
		Qualifier: strings.TrimSpace(qualifier),
		AccountID: account.ID,
	}, nil
}

// Key identifies the slot this mapping fills
func (m RoleMapping) Key() RoleKey {
	return RoleKey{Role: m.Role, Qualifier: m.Qualifier}
}

// RoleKey is a role plus optional qualifier
type RoleKey struct {
	Role      AccountRole
	Qualifier string
}

func (k RoleKey) String() string {
	if k.Qualifier == "" {
		return string(k.Role)
	}
	return string(k.Role) + ":" + k.Qualifier
}

// Need is a shorthand for an unqualified requirement
func Need(role AccountRole) RoleKey {
	return RoleKey{Role: role}
}

// NeedFor is a shorthand for a qualified requirement
func NeedFor(role AccountRole, qualifier string) RoleKey {
	return RoleKey{Role: role, Qualifier: qualifier}
}

// AccountResolver resolves a role to an account id. Posting rules depend on
// this interface only.
type AccountResolver interface {
	Resolve(role AccountRole, qualifier string) (uuid.UUID, bool)
}

// MappingTable is the in-memory role table of one company
type MappingTable struct {
	companyID uuid.UUID
	entries   map[RoleKey]uuid.UUID
}

// NewMappingTable indexes mappings of companyID; rows of other companies are ignored
func NewMappingTable(companyID uuid.UUID, mappings []RoleMapping) *MappingTable {
	t := &MappingTable{companyID: companyID, entries: make(map[RoleKey]uuid.UUID, len(mappings))}
	for _, m := range mappings {
		if m.CompanyID != companyID {
			continue
		}
		t.entries[m.Key()] = m.AccountID
	}
	return t
}

// Resolve looks up the qualified link first, then the company default
func (t *MappingTable) Resolve(role AccountRole, qualifier string) (uuid.UUID, bool) {
	if qualifier != "" {
		if id, ok := t.entries[RoleKey{Role: role, Qualifier: qualifier}]; ok {
			return id, true
		}
	}
	id, ok := t.entries[RoleKey{Role: role}]
	return id, ok
}

// ResolveByRole is Resolve with a NOT_FOUND error for the unmapped case
func (t *MappingTable) ResolveByRole(role AccountRole, qualifier string) (uuid.UUID, error) {
	if id, ok := t.Resolve(role, qualifier); ok {
		return id, nil
	}
	key := RoleKey{Role: role, Qualifier: qualifier}
	return uuid.Nil, &shared.DomainError{
		Code:    "NOT_FOUND",
		Message: "No account mapped for role " + key.String(),
		Kind:    shared.KindNotFound,
	}
}

// Len returns the number of mapped slots
func (t *MappingTable) Len() int {
	return len(t.entries)
}

// Missing returns the requirements the resolver cannot satisfy, formatted and sorted
func Missing(r AccountResolver, needs ...RoleKey) []string {
	var missing []string
	seen := make(map[RoleKey]bool)
	for _, n := range needs {
		if seen[n] {
			continue
		}
		seen[n] = true
		if _, ok := r.Resolve(n.Role, n.Qualifier); !ok {
			missing = append(missing, n.String())
		}
	}
	sort.Strings(missing)
	return missing
}

// CheckSetup fails with a ResolutionGap naming every unmapped requirement
func CheckSetup(r AccountResolver, needs ...RoleKey) error {
	if missing := Missing(r, needs...); len(missing) > 0 {
		return shared.NewResolutionGap(missing...)
	}
	return nil
}

// ResolutionPolicy decides what happens when an optional role is unmapped
type ResolutionPolicy string

const (
	// PolicyStrict blocks posting until every role the event touches is mapped
	PolicyStrict ResolutionPolicy = "strict"
	// PolicyLenient lets rules omit optional line pairs that cannot resolve
	PolicyLenient ResolutionPolicy = "lenient"
)

func (p ResolutionPolicy) IsValid() bool {
	return p == PolicyStrict || p == PolicyLenient
}
