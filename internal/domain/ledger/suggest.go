package ledger

import (
	"sort"
	"strings"
)

// roleKeywords are lowercase name fragments (English and Indonesian) used to
// propose a mapping for a role during company setup.
var roleKeywords = map[AccountRole][]string{
	RoleReceivable:              {"receivable", "piutang"},
	RolePayable:                 {"payable", "hutang", "utang"},
	RoleRevenue:                 {"revenue", "sales", "penjualan", "pendapatan"},
	RoleCOGS:                    {"cogs", "cost of goods", "hpp", "harga pokok"},
	RoleInventory:               {"inventory", "persediaan"},
	RoleTax:                     {"tax", "pajak", "ppn", "vat"},
	RoleDiscount:                {"discount", "diskon", "potongan"},
	RoleCashBank:                {"cash", "kas", "tunai", "bank"},
	RoleAsset:                   {"fixed asset", "aset tetap", "equipment", "peralatan"},
	RoleAccumulatedDepreciation: {"accumulated", "akumulasi"},
	RoleDepreciationExpense:     {"depreciation", "penyusutan"},
	RoleCustomerDeposit:         {"deposit", "uang muka", "down payment"},
	RoleInventoryAdjustment:     {"adjustment", "selisih", "penyesuaian"},
}

// Suggestion is a proposed default mapping an operator must confirm
type Suggestion struct {
	Role      AccountRole
	AccountID string
	Code      string
	Name      string
	Keyword   string
}

// SuggestMappings proposes a default account for each role by scanning active
// accounts of a compatible type for a role keyword in the name. The lowest
// code wins when several match. Nothing here is used while posting.
func SuggestMappings(accounts []Account) []Suggestion {
	sorted := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if a.IsActive {
			sorted = append(sorted, a)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	var out []Suggestion
	for _, role := range AllRoles() {
		if s, ok := suggestFor(role, sorted); ok {
			out = append(out, s)
		}
	}
	return out
}

func suggestFor(role AccountRole, accounts []Account) (Suggestion, bool) {
	for _, a := range accounts {
		if !role.Accepts(a.Type) {
			continue
		}
		// accumulated depreciation accounts also contain "depreciation"
		if role == RoleAsset && containsAny(a.Name, roleKeywords[RoleAccumulatedDepreciation]) != "" {
			continue
		}
		if kw := containsAny(a.Name, roleKeywords[role]); kw != "" {
			return Suggestion{
				Role:      role,
				AccountID: a.ID.String(),
				Code:      a.Code,
				Name:      a.Name,
				Keyword:   kw,
			}, true
		}
	}
	return Suggestion{}, false
}

func containsAny(name string, keywords []string) string {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
