package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/posting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PostingObserver receives the outcome of every posting attempt
type PostingObserver interface {
	EntryPosted(ctx context.Context, refType ledger.ReferenceType, amount decimal.Decimal)
	PostingRejected(ctx context.Context, refType ledger.ReferenceType, code string)
}

// Poster is the single writer of journal entries. It runs inside the
// caller's write-set: resolve roles, build the draft, number it, insert the
// entry, move account balances and record the events.
type Poster struct {
	policy   ledger.ResolutionPolicy
	logger   *zap.Logger
	observer PostingObserver
}

// NewPoster creates a Poster. An invalid policy falls back to strict.
func NewPoster(policy ledger.ResolutionPolicy, logger *zap.Logger) *Poster {
	if !policy.IsValid() {
		policy = ledger.PolicyStrict
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poster{policy: policy, logger: logger}
}

// SetObserver attaches a metrics observer
func (p *Poster) SetObserver(o PostingObserver) {
	p.observer = o
}

// Policy returns the active resolution policy
func (p *Poster) Policy() ledger.ResolutionPolicy {
	return p.policy
}

// Resolver loads the company's role table
func (p *Poster) Resolver(ctx context.Context, repos writeset.Repositories, companyID uuid.UUID) (*ledger.MappingTable, error) {
	mappings, err := repos.RoleMappings().FindAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return ledger.NewMappingTable(companyID, mappings), nil
}

// Post builds rule against the company's mappings and posts the result
func (p *Poster) Post(ctx context.Context, repos writeset.Repositories, companyID uuid.UUID, rule posting.Rule) (*ledger.JournalEntry, error) {
	table, err := p.Resolver(ctx, repos, companyID)
	if err != nil {
		return nil, err
	}
	draft, err := posting.Build(rule, table, p.policy)
	if err != nil {
		p.rejected(ctx, companyID, referenceOf(rule), err)
		return nil, err
	}
	return p.PostDraft(ctx, repos, companyID, draft)
}

// PostDraft posts an already built draft. A business reference is posted at
// most once.
func (p *Poster) PostDraft(ctx context.Context, repos writeset.Repositories, companyID uuid.UUID, draft ledger.EntryDraft) (*ledger.JournalEntry, error) {
	if err := draft.Validate(); err != nil {
		p.rejected(ctx, companyID, draft.ReferenceType, err)
		return nil, err
	}
	if draft.ReferenceType != ledger.RefManual {
		exists, err := repos.Journals().ExistsByReference(ctx, companyID, draft.ReferenceType, draft.ReferenceID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewConflictError("ALREADY_POSTED",
				"An entry for "+draft.ReferenceType.String()+" "+draft.ReferenceID.String()+" already exists")
		}
	}

	number, err := p.nextNumber(ctx, repos, companyID, draft.Date)
	if err != nil {
		return nil, err
	}
	entry, err := ledger.Post(companyID, number, draft)
	if err != nil {
		return nil, err
	}
	if err := writeset.Step("save journal entry", repos.Journals().Save(ctx, entry)); err != nil {
		return nil, err
	}
	if err := p.applyBalances(ctx, repos, entry); err != nil {
		return nil, err
	}
	if err := writeset.RecordEvents(ctx, repos, entry); err != nil {
		return nil, err
	}

	if p.observer != nil {
		p.observer.EntryPosted(ctx, entry.ReferenceType, entry.TotalDebit())
	}
	p.logger.Info("journal entry posted",
		zap.String("company_id", companyID.String()),
		zap.String("reference_type", entry.ReferenceType.String()),
		zap.String("reference_id", entry.ReferenceID.String()),
		zap.String("entry_number", entry.EntryNumber),
		zap.String("amount", entry.TotalDebit().StringFixed(ledger.AmountPlaces)),
	)
	return entry, nil
}

// Reverse posts the mirror entry of entryID and links both
func (p *Poster) Reverse(ctx context.Context, repos writeset.Repositories, companyID, entryID uuid.UUID, date time.Time, reason string) (*ledger.JournalEntry, error) {
	original, err := repos.Journals().FindByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}
	number, err := p.nextNumber(ctx, repos, companyID, date)
	if err != nil {
		return nil, err
	}
	reversal, err := original.Reverse(number, date, reason)
	if err != nil {
		return nil, err
	}
	if err := writeset.Step("save reversal entry", repos.Journals().Save(ctx, reversal)); err != nil {
		return nil, err
	}
	if err := writeset.Step("link reversed entry", repos.Journals().MarkReversed(ctx, original)); err != nil {
		return nil, err
	}
	if err := p.applyBalances(ctx, repos, reversal); err != nil {
		return nil, err
	}
	if err := writeset.RecordEvents(ctx, repos, original, reversal); err != nil {
		return nil, err
	}
	p.logger.Info("journal entry reversed",
		zap.String("company_id", companyID.String()),
		zap.String("entry_number", original.EntryNumber),
		zap.String("reversal_number", reversal.EntryNumber),
	)
	return reversal, nil
}

func (p *Poster) nextNumber(ctx context.Context, repos writeset.Repositories, companyID uuid.UUID, date time.Time) (string, error) {
	seq, err := repos.Journals().NextSequence(ctx, companyID, ledger.EntryPeriod(date))
	if err != nil {
		return "", writeset.Step("reserve entry number", err)
	}
	return ledger.FormatEntryNumber(date, seq), nil
}

// applyBalances moves every touched account by the entry's net effect
func (p *Poster) applyBalances(ctx context.Context, repos writeset.Repositories, entry *ledger.JournalEntry) error {
	totals := entry.AccountTotals()
	ids := make([]uuid.UUID, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	accounts, err := repos.Accounts().FindByIDs(ctx, entry.CompanyID, ids)
	if err != nil {
		return writeset.Step("load accounts", err)
	}
	byID := make(map[uuid.UUID]ledger.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	deltas := make(map[uuid.UUID]decimal.Decimal, len(ids))
	for _, id := range ids {
		acc, ok := byID[id]
		if !ok {
			return shared.NewValidationError("UNKNOWN_ACCOUNT", "Account "+id.String()+" does not exist in this company")
		}
		if !acc.IsActive {
			return shared.NewValidationError("INACTIVE_ACCOUNT", "Account "+acc.Code+" is inactive")
		}
		t := totals[id]
		deltas[id] = acc.Type.BalanceDelta(t.Debit, t.Credit)
	}
	return writeset.Step("update account balances", repos.Accounts().ApplyBalanceDeltas(ctx, entry.CompanyID, deltas))
}

func (p *Poster) rejected(ctx context.Context, companyID uuid.UUID, refType ledger.ReferenceType, err error) {
	code := ""
	var de *shared.DomainError
	if errors.As(err, &de) {
		code = de.Code
	}
	if p.observer != nil {
		p.observer.PostingRejected(ctx, refType, code)
	}
	p.logger.Warn("posting rejected",
		zap.String("company_id", companyID.String()),
		zap.String("reference_type", refType.String()),
		zap.String("code", code),
		zap.Error(err),
	)
}

func referenceOf(rule posting.Rule) ledger.ReferenceType {
	switch rule.(type) {
	case posting.SalesInvoice, *posting.SalesInvoice:
		return ledger.RefSalesInvoice
	case posting.PurchaseBill, *posting.PurchaseBill:
		return ledger.RefPurchaseBill
	case posting.POSSale, *posting.POSSale:
		return ledger.RefPOSSale
	case posting.Payment, *posting.Payment:
		return ledger.RefPayment
	case posting.Depreciation, *posting.Depreciation:
		return ledger.RefDepreciation
	case posting.Deposit, *posting.Deposit:
		return ledger.RefDeposit
	case posting.OpnameAdjustment, *posting.OpnameAdjustment:
		return ledger.RefStockOpname
	}
	return ledger.RefManual
}
