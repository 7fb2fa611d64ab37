package finance

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/finance"
	"github.com/google/uuid"
)

// AgingService loads open documents and buckets them by days past due
type AgingService struct {
	scope writeset.TransactionScope
	now   func() time.Time
}

// NewAgingService creates a new AgingService
func NewAgingService(scope writeset.TransactionScope) *AgingService {
	return &AgingService{scope: scope, now: time.Now}
}

// ComputeAging builds the receivable or payable aging report as of a date
func (s *AgingService) ComputeAging(ctx context.Context, companyID uuid.UUID, req AgingRequest) (*finance.AgingReport, error) {
	asOf := s.now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	kind := finance.DocumentKind(req.Kind)
	docs, err := s.scope.Repos().Documents().FindOpen(ctx, companyID, kind, req.PartyID)
	if err != nil {
		return nil, err
	}
	report := finance.ComputeAging(docs, asOf, finance.AgingOptions{
		Kind:    kind,
		PartyID: req.PartyID,
		ByParty: req.ByParty,
	})
	return &report, nil
}
