package inventory

import (
	"strings"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// Warehouse is a stock location. Its PIC (person in charge) approves
// transfers coming into it.
type Warehouse struct {
	shared.BaseEntity
	CompanyID uuid.UUID
	Code      string
	Name      string
	PICUserID *uuid.UUID
	IsActive  bool
}

// NewWarehouse creates an active warehouse
func NewWarehouse(companyID uuid.UUID, code, name string) (*Warehouse, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewValidationError("INVALID_CODE", "Warehouse code must be 1 to 50 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_NAME", "Warehouse name must be 1 to 200 characters")
	}
	return &Warehouse{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		Code:       code,
		Name:       name,
		IsActive:   true,
	}, nil
}

// AssignPIC sets the person in charge
func (w *Warehouse) AssignPIC(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewValidationError("INVALID_USER", "PIC user ID cannot be empty")
	}
	w.PICUserID = &userID
	w.Touch()
	return nil
}

// IsPIC reports whether userID is the person in charge
func (w *Warehouse) IsPIC(userID uuid.UUID) bool {
	return w.PICUserID != nil && *w.PICUserID == userID
}
