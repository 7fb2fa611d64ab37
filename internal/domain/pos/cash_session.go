package pos

import (
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus is the cash_session_status enumeration
type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

func (s SessionStatus) IsValid() bool {
	return s == SessionOpen || s == SessionClosed
}

// SessionEvent drives the cash session machine
type SessionEvent string

const EventClose SessionEvent = "close"

type sessionTransition = shared.Transition[SessionStatus, SessionEvent]

// SessionMachine is one-way: a closed session never reopens
var SessionMachine = shared.NewStateMachine("cash session",
	sessionTransition{From: SessionOpen, Event: EventClose, To: SessionClosed},
)

// MovementType classifies drawer movements
type MovementType string

const (
	MovementSale      MovementType = "sale"
	MovementManualIn  MovementType = "manual_in"
	MovementManualOut MovementType = "manual_out"
	MovementDeposit   MovementType = "deposit"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementSale, MovementManualIn, MovementManualOut, MovementDeposit:
		return true
	}
	return false
}

// IsManual reports whether an operator may record the movement by hand
func (t MovementType) IsManual() bool {
	return t == MovementManualIn || t == MovementManualOut
}

// CashMovement is an append-only drawer record. Amount is always positive;
// the direction comes from the type.
type CashMovement struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	SessionID     uuid.UUID
	Type          MovementType
	Amount        decimal.Decimal
	ReferenceType string
	ReferenceID   *uuid.UUID
	Note          string
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
}

// SignedAmount is the effect on the drawer
func (m CashMovement) SignedAmount() decimal.Decimal {
	if m.Type == MovementManualOut {
		return m.Amount.Neg()
	}
	return m.Amount
}

// SumMovements aggregates the signed effect of movements
func SumMovements(movements []CashMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.SignedAmount())
	}
	return total
}

// VarianceClass grades the closing difference
type VarianceClass string

const (
	VarianceBalanced VarianceClass = "balanced"
	VarianceMinor    VarianceClass = "minor"
	VarianceMajor    VarianceClass = "major"
)

// ClassifyVariance compares |difference| with tolerance
func ClassifyVariance(difference, tolerance decimal.Decimal) VarianceClass {
	abs := difference.Abs()
	switch {
	case abs.IsZero():
		return VarianceBalanced
	case abs.LessThanOrEqual(tolerance):
		return VarianceMinor
	default:
		return VarianceMajor
	}
}

// CashSession is a cashier's drawer from opening to close
type CashSession struct {
	shared.CompanyAggregateRoot
	CashierID       uuid.UUID
	OpeningBalance  decimal.Decimal
	ClosingBalance  *decimal.Decimal
	ExpectedBalance *decimal.Decimal
	Difference      *decimal.Decimal
	Variance        VarianceClass
	Status          SessionStatus
	OpenedAt        time.Time
	ClosedAt        *time.Time
	Notes           string
}

// OpenSession starts a session with the counted float
func OpenSession(companyID, cashierID uuid.UUID, opening decimal.Decimal) (*CashSession, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CASHIER", "Cashier is required")
	}
	if opening.IsNegative() || !opening.Equal(opening.Round(2)) {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Opening balance must be non-negative with at most 2 decimals")
	}
	s := &CashSession{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		CashierID:            cashierID,
		OpeningBalance:       opening,
		Status:               SessionOpen,
		OpenedAt:             time.Now(),
	}
	s.AddDomainEvent(NewCashSessionOpenedEvent(s))
	return s, nil
}

func (s *CashSession) IsOpen() bool {
	return s.Status == SessionOpen
}

// NewMovement builds a movement for this session. Movements are only
// accepted while the session is open.
func (s *CashSession) NewMovement(t MovementType, amount decimal.Decimal, refType string, refID *uuid.UUID, note string) (CashMovement, error) {
	if !s.IsOpen() {
		return CashMovement{}, shared.NewInvalidStateError("SESSION_CLOSED", "Cash session is closed")
	}
	if !t.IsValid() {
		return CashMovement{}, shared.NewValidationError("INVALID_MOVEMENT_TYPE", "Invalid movement type: "+string(t))
	}
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return CashMovement{}, shared.NewValidationError("INVALID_AMOUNT", "Movement amount must be positive with at most 2 decimals")
	}
	return CashMovement{
		ID:            uuid.New(),
		CompanyID:     s.CompanyID,
		SessionID:     s.ID,
		Type:          t,
		Amount:        amount,
		ReferenceType: refType,
		ReferenceID:   refID,
		Note:          strings.TrimSpace(note),
		CreatedAt:     time.Now(),
	}, nil
}

// ExpectedFrom is opening plus the signed movement total
func (s *CashSession) ExpectedFrom(movementTotal decimal.Decimal) decimal.Decimal {
	return s.OpeningBalance.Add(movementTotal)
}

// Close records the counted balance against the expected one. movementTotal
// is the aggregated signed sum of the session's movements.
func (s *CashSession) Close(closing, movementTotal, tolerance decimal.Decimal, notes string) error {
	if closing.IsNegative() || !closing.Equal(closing.Round(2)) {
		return shared.NewValidationError("INVALID_AMOUNT", "Closing balance must be non-negative with at most 2 decimals")
	}
	next, err := SessionMachine.Transition(s.Status, EventClose)
	if err != nil {
		return err
	}
	expected := s.ExpectedFrom(movementTotal)
	difference := closing.Sub(expected)
	now := time.Now()

	s.Status = next
	s.ClosingBalance = &closing
	s.ExpectedBalance = &expected
	s.Difference = &difference
	s.Variance = ClassifyVariance(difference, tolerance)
	s.ClosedAt = &now
	s.Notes = strings.TrimSpace(notes)
	s.Touch()
	s.AddDomainEvent(NewCashSessionClosedEvent(s))
	return nil
}
