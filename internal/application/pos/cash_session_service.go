package pos

import (
	"context"
	"errors"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VarianceObserver receives the closing difference of every session
type VarianceObserver interface {
	SessionClosed(ctx context.Context, companyID uuid.UUID, variance pos.VarianceClass, difference decimal.Decimal)
}

// CashSessionService opens, feeds and reconciles cash drawers
type CashSessionService struct {
	scope     writeset.TransactionScope
	tolerance decimal.Decimal
	observer  VarianceObserver
	logger    *zap.Logger
}

// NewCashSessionService creates a new CashSessionService. tolerance is the
// largest absolute difference still classified as a minor variance.
func NewCashSessionService(scope writeset.TransactionScope, tolerance decimal.Decimal, logger *zap.Logger) *CashSessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashSessionService{scope: scope, tolerance: tolerance.Abs(), logger: logger}
}

// SetObserver attaches a metrics observer
func (s *CashSessionService) SetObserver(o VarianceObserver) {
	s.observer = o
}

// Open starts a session. A company runs at most one open session.
func (s *CashSessionService) Open(ctx context.Context, companyID uuid.UUID, req OpenSessionRequest) (*CashSessionResponse, error) {
	session, err := pos.OpenSession(companyID, req.CashierID, req.OpeningBalance)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		existing, err := repos.CashSessions().FindOpen(ctx, companyID)
		if err == nil {
			return shared.NewConflictError("SESSION_ALREADY_OPEN", "Cash session "+existing.ID.String()+" is still open")
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if err := writeset.Step("save cash session", repos.CashSessions().Save(ctx, session)); err != nil {
			return err
		}
		return writeset.RecordEvents(ctx, repos, session)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("cash session opened",
		zap.String("company_id", companyID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("opening_balance", session.OpeningBalance.StringFixed(2)),
	)
	resp := ToCashSessionResponse(session, decimal.Zero)
	return &resp, nil
}

// RecordMovement appends a manual cash-in or cash-out
func (s *CashSessionService) RecordMovement(ctx context.Context, companyID, sessionID uuid.UUID, req RecordMovementRequest) (*CashMovementResponse, error) {
	t := pos.MovementType(req.Type)
	if !t.IsManual() {
		return nil, shared.NewValidationError("INVALID_MOVEMENT_TYPE", "Only manual_in and manual_out can be recorded by hand")
	}
	var movement pos.CashMovement
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		session, err := repos.CashSessions().FindByID(ctx, companyID, sessionID)
		if err != nil {
			return err
		}
		movement, err = session.NewMovement(t, req.Amount, "", nil, req.Note)
		if err != nil {
			return err
		}
		movement.CreatedBy = req.UserID
		return writeset.Step("append cash movement", repos.CashMovements().Append(ctx, movement))
	})
	if err != nil {
		return nil, err
	}
	resp := ToCashMovementResponse(movement)
	return &resp, nil
}

// CloseCashSession records the counted closing balance. The expected balance
// is aggregated from the immutable movement log inside the same transaction.
func (s *CashSessionService) CloseCashSession(ctx context.Context, companyID, sessionID uuid.UUID, req CloseSessionRequest) (*CashSessionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "close")
	defer span.End()

	var (
		session *pos.CashSession
		total   decimal.Decimal
	)
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		session, err = repos.CashSessions().FindByID(ctx, companyID, sessionID)
		if err != nil {
			return err
		}
		total, err = repos.CashMovements().SumBySession(ctx, companyID, sessionID)
		if err != nil {
			return writeset.Step("sum cash movements", err)
		}
		if err := session.Close(req.ClosingBalance, total, s.tolerance, req.Notes); err != nil {
			return err
		}
		if err := writeset.Step("close cash session", repos.CashSessions().SaveWithLock(ctx, session)); err != nil {
			return err
		}
		return writeset.RecordEvents(ctx, repos, session)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.observer != nil {
		s.observer.SessionClosed(ctx, companyID, session.Variance, *session.Difference)
	}
	s.logger.Info("cash session closed",
		zap.String("company_id", companyID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("expected", session.ExpectedBalance.StringFixed(2)),
		zap.String("closing", session.ClosingBalance.StringFixed(2)),
		zap.String("difference", session.Difference.StringFixed(2)),
		zap.String("variance", string(session.Variance)),
	)
	resp := ToCashSessionResponse(session, total)
	return &resp, nil
}

// GetByID returns a session with its running expected balance
func (s *CashSessionService) GetByID(ctx context.Context, companyID, sessionID uuid.UUID) (*CashSessionResponse, error) {
	repos := s.scope.Repos()
	session, err := repos.CashSessions().FindByID(ctx, companyID, sessionID)
	if err != nil {
		return nil, err
	}
	total, err := repos.CashMovements().SumBySession(ctx, companyID, sessionID)
	if err != nil {
		return nil, err
	}
	resp := ToCashSessionResponse(session, total)
	return &resp, nil
}

// GetOpen returns the company's open session
func (s *CashSessionService) GetOpen(ctx context.Context, companyID uuid.UUID) (*CashSessionResponse, error) {
	session, err := s.scope.Repos().CashSessions().FindOpen(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, companyID, session.ID)
}

// ListMovements returns the drawer log of a session
func (s *CashSessionService) ListMovements(ctx context.Context, companyID, sessionID uuid.UUID) ([]CashMovementResponse, error) {
	movements, err := s.scope.Repos().CashMovements().ListBySession(ctx, companyID, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]CashMovementResponse, len(movements))
	for i, m := range movements {
		out[i] = ToCashMovementResponse(m)
	}
	return out, nil
}
