package pos

import (
	"strings"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// cashKeywords suggest the cash flag for a new payment method
var cashKeywords = []string{"cash", "tunai", "kas"}

// LooksLikeCash proposes IsCash for a method name at setup time. Posting and
// reconciliation read the stored flag only.
func LooksLikeCash(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range cashKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// PaymentMethod is a tender accepted at the till. Its ledger account is the
// cash_bank role mapping qualified by the method id.
type PaymentMethod struct {
	shared.BaseEntity
	CompanyID uuid.UUID
	Name      string
	IsCash    bool
	IsActive  bool
}

// NewPaymentMethod creates an active payment method
func NewPaymentMethod(companyID uuid.UUID, name string, isCash bool) (*PaymentMethod, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Payment method name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewValidationError("INVALID_NAME", "Payment method name cannot exceed 100 characters")
	}
	return &PaymentMethod{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		Name:       name,
		IsCash:     isCash,
		IsActive:   true,
	}, nil
}

// Qualifier is the role-mapping qualifier of the method's account
func (m *PaymentMethod) Qualifier() string {
	return m.ID.String()
}
