package finance

import (
	"context"
	"time"

	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/domain/posting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService records payments and allocates them to open documents
type PaymentService struct {
	scope          writeset.TransactionScope
	poster         *ledgerapp.Poster
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope writeset.TransactionScope, poster *ledgerapp.Poster, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{scope: scope, poster: poster, logger: logger, idempotencyTTL: shared.DefaultIdempotencyTTL}
}

// SetIdempotencyStore guards client retries of RecordPayment
func (s *PaymentService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// RecordPayment creates a payment, posts its journal entry and applies the
// requested allocations in one write-set.
func (s *PaymentService) RecordPayment(ctx context.Context, companyID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCompanyID, companyID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	release, err := s.claim(ctx, companyID, req.IdempotencyKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	var (
		payment *finance.Payment
		touched []*finance.Document
	)
	err = s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		method, err := repos.PaymentMethods().FindByID(ctx, companyID, req.PaymentMethodID)
		if err != nil {
			return err
		}
		if !method.IsActive {
			return shared.NewValidationError("INVALID_PAYMENT_METHOD", "Payment method "+method.Name+" is inactive")
		}
		number, err := repos.Payments().NextNumber(ctx, companyID, date)
		if err != nil {
			return writeset.Step("reserve payment number", err)
		}
		payment, err = finance.NewPayment(companyID, number, finance.PaymentType(req.Type), req.PartyID, method.ID, req.Amount, date)
		if err != nil {
			return err
		}
		payment.Notes = req.Notes

		touched, err = s.allocate(ctx, repos, payment, req.Allocations, req.AutoAllocate)
		if err != nil {
			return err
		}

		entry, err := s.poster.Post(ctx, repos, companyID, posting.Payment{
			PaymentID:       payment.ID,
			PaymentNumber:   payment.PaymentNumber,
			PaymentMethodID: payment.PaymentMethodID,
			Incoming:        payment.Type == finance.PaymentIncoming,
			Date:            payment.PaymentDate,
			Amount:          payment.Amount,
		})
		if err != nil {
			return err
		}
		payment.Record(entry.ID)

		if err := writeset.Step("save payment", repos.Payments().Save(ctx, payment)); err != nil {
			return err
		}
		return s.saveDocuments(ctx, repos, payment, touched)
	})
	if err != nil {
		release(ctx)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("company_id", companyID.String()),
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.Int("allocations", len(payment.Allocations)),
	)
	return s.response(payment, touched), nil
}

// AllocatePayment applies the unallocated remainder of a recorded payment.
// Every target, the payment and the documents commit together; documents are
// updated under their version lock.
func (s *PaymentService) AllocatePayment(ctx context.Context, companyID, paymentID uuid.UUID, req AllocatePaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "allocate_payment")
	defer span.End()

	var (
		payment *finance.Payment
		touched []*finance.Document
	)
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		payment, err = repos.Payments().FindByID(ctx, companyID, paymentID)
		if err != nil {
			return err
		}
		if len(req.Allocations) == 0 && !req.AutoAllocate {
			return shared.NewValidationError("NO_TARGETS", "At least one allocation target is required")
		}
		touched, err = s.allocate(ctx, repos, payment, req.Allocations, req.AutoAllocate)
		if err != nil {
			return err
		}
		if err := writeset.Step("save payment", repos.Payments().Save(ctx, payment)); err != nil {
			return err
		}
		return s.saveDocuments(ctx, repos, payment, touched)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return s.response(payment, touched), nil
}

// allocate resolves explicit or FIFO targets and applies them in memory
func (s *PaymentService) allocate(ctx context.Context, repos writeset.Repositories, payment *finance.Payment,
	inputs []AllocationInput, auto bool) ([]*finance.Document, error) {
	var targets []finance.AllocationTarget
	docs := make(map[uuid.UUID]*finance.Document)

	switch {
	case len(inputs) > 0:
		ids := make([]uuid.UUID, 0, len(inputs))
		for _, in := range inputs {
			targets = append(targets, finance.AllocationTarget{DocumentID: in.DocumentID, Amount: in.Amount})
			ids = append(ids, in.DocumentID)
		}
		found, err := repos.Documents().FindByIDs(ctx, payment.CompanyID, ids)
		if err != nil {
			return nil, err
		}
		for i := range found {
			docs[found[i].ID] = &found[i]
		}
	case auto:
		partyID := payment.PartyID
		open, err := repos.Documents().FindOpen(ctx, payment.CompanyID, payment.Type.DocumentKind(), &partyID)
		if err != nil {
			return nil, err
		}
		candidates := make([]*finance.Document, len(open))
		for i := range open {
			candidates[i] = &open[i]
			docs[open[i].ID] = &open[i]
		}
		targets = finance.PlanFIFO(payment.Unallocated(), candidates)
		if len(targets) == 0 {
			s.logger.Debug("no open documents for auto allocation", zap.String("payment_number", payment.PaymentNumber))
			return nil, nil
		}
	default:
		return nil, nil
	}

	if err := payment.Allocate(docs, targets); err != nil {
		return nil, err
	}
	touched := make([]*finance.Document, 0, len(targets))
	seen := make(map[uuid.UUID]bool)
	for _, t := range targets {
		if !seen[t.DocumentID] {
			seen[t.DocumentID] = true
			touched = append(touched, docs[t.DocumentID])
		}
	}
	return touched, nil
}

func (s *PaymentService) saveDocuments(ctx context.Context, repos writeset.Repositories, payment *finance.Payment, docs []*finance.Document) error {
	for _, d := range docs {
		if err := d.CheckBalance(); err != nil {
			return err
		}
		if err := writeset.Step("update document "+d.Number, repos.Documents().SaveWithLock(ctx, d)); err != nil {
			return err
		}
	}
	aggregates := make([]writeset.Aggregate, 0, len(docs)+1)
	aggregates = append(aggregates, payment)
	for _, d := range docs {
		aggregates = append(aggregates, d)
	}
	return writeset.RecordEvents(ctx, repos, aggregates...)
}

func (s *PaymentService) response(payment *finance.Payment, docs []*finance.Document) *PaymentResponse {
	resp := ToPaymentResponse(payment)
	for _, d := range docs {
		resp.Documents = append(resp.Documents, ToDocumentResponse(d))
	}
	return &resp
}

// claim reserves the client's idempotency key. The returned release undoes
// the reservation when the write-set fails.
func (s *PaymentService) claim(ctx context.Context, companyID uuid.UUID, key string) (func(context.Context), error) {
	noop := func(context.Context) {}
	if key == "" || s.idempotency == nil {
		return noop, nil
	}
	scoped := "payment:" + companyID.String() + ":" + key
	fresh, err := s.idempotency.MarkProcessed(ctx, scoped, s.idempotencyTTL)
	if err != nil {
		return noop, err
	}
	if !fresh {
		return noop, shared.NewConflictError("DUPLICATE_REQUEST", "Payment with this idempotency key was already submitted")
	}
	return func(ctx context.Context) {
		if err := s.idempotency.Forget(ctx, scoped); err != nil {
			s.logger.Warn("failed to release idempotency key", zap.String("key", scoped), zap.Error(err))
		}
	}, nil
}

// GetByID returns a payment with its allocations
func (s *PaymentService) GetByID(ctx context.Context, companyID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.scope.Repos().Payments().FindByID(ctx, companyID, paymentID)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}
