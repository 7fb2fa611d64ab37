package pos

import (
	"context"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/google/uuid"
)

// PaymentMethodService manages the tenders accepted at the till
type PaymentMethodService struct {
	scope writeset.TransactionScope
}

// NewPaymentMethodService creates a new PaymentMethodService
func NewPaymentMethodService(scope writeset.TransactionScope) *PaymentMethodService {
	return &PaymentMethodService{scope: scope}
}

// Create adds a payment method. Without an explicit flag the cash flag is
// suggested from the name.
func (s *PaymentMethodService) Create(ctx context.Context, companyID uuid.UUID, req CreatePaymentMethodRequest) (*PaymentMethodResponse, error) {
	isCash := pos.LooksLikeCash(req.Name)
	if req.IsCash != nil {
		isCash = *req.IsCash
	}
	method, err := pos.NewPaymentMethod(companyID, req.Name, isCash)
	if err != nil {
		return nil, err
	}
	if err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		return repos.PaymentMethods().Save(ctx, method)
	}); err != nil {
		return nil, err
	}
	return toPaymentMethodResponse(method), nil
}

// SetActive enables or disables a method
func (s *PaymentMethodService) SetActive(ctx context.Context, companyID, id uuid.UUID, active bool) (*PaymentMethodResponse, error) {
	var method *pos.PaymentMethod
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		method, err = repos.PaymentMethods().FindByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		method.IsActive = active
		method.Touch()
		return repos.PaymentMethods().Save(ctx, method)
	})
	if err != nil {
		return nil, err
	}
	return toPaymentMethodResponse(method), nil
}

// List returns the company's methods
func (s *PaymentMethodService) List(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]PaymentMethodResponse, error) {
	methods, err := s.scope.Repos().PaymentMethods().FindAll(ctx, companyID, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentMethodResponse, len(methods))
	for i := range methods {
		out[i] = *toPaymentMethodResponse(&methods[i])
	}
	return out, nil
}

func toPaymentMethodResponse(m *pos.PaymentMethod) *PaymentMethodResponse {
	return &PaymentMethodResponse{ID: m.ID, Name: m.Name, IsCash: m.IsCash, IsActive: m.IsActive}
}
