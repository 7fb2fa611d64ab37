// Package posting holds the pure rules that turn a business event into a
// balanced journal entry draft. Rules never perform I/O; persistence of the
// draft is the caller's write-set.
package posting

import (
	"errors"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNothingToPost is returned when an event carries no ledger effect
var ErrNothingToPost = shared.NewValidationError("NOTHING_TO_POST", "Event has no ledger effect")

// Rule is one business event ready to be posted
type Rule interface {
	// Requirements lists every role slot the event touches, optional ones included
	Requirements() []ledger.RoleKey
	// Draft builds the entry lines; under lenient policy optional line pairs
	// whose roles do not resolve are left out
	Draft(r ledger.AccountResolver, policy ledger.ResolutionPolicy) (ledger.EntryDraft, error)
}

// Build runs the setup check for strict policy, builds the draft and
// validates it. A draft returned without error always balances.
func Build(rule Rule, r ledger.AccountResolver, policy ledger.ResolutionPolicy) (ledger.EntryDraft, error) {
	if policy != ledger.PolicyLenient {
		if err := ledger.CheckSetup(r, rule.Requirements()...); err != nil {
			return ledger.EntryDraft{}, err
		}
	}
	draft, err := rule.Draft(r, policy)
	if err != nil {
		return ledger.EntryDraft{}, err
	}
	if err := draft.Validate(); err != nil {
		return ledger.EntryDraft{}, err
	}
	return draft, nil
}

// IsNothingToPost reports whether err means the event has no ledger effect
func IsNothingToPost(err error) bool {
	return errors.Is(err, ErrNothingToPost)
}

// mustResolve resolves a role no policy may omit
func mustResolve(r ledger.AccountResolver, role ledger.AccountRole, qualifier string) (uuid.UUID, error) {
	if id, ok := r.Resolve(role, qualifier); ok {
		return id, nil
	}
	return uuid.Nil, shared.NewResolutionGap(ledger.NeedFor(role, qualifier).String())
}

func round(v decimal.Decimal) decimal.Decimal {
	return v.Round(ledger.AmountPlaces)
}

func qualifier(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
