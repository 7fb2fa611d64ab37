package ledger

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalService exposes the journal ledger: manual posting, reversal and
// the read side.
type JournalService struct {
	scope  writeset.TransactionScope
	poster *Poster
}

// NewJournalService creates a new JournalService
func NewJournalService(scope writeset.TransactionScope, poster *Poster) *JournalService {
	return &JournalService{scope: scope, poster: poster}
}

// PostManual posts an operator-entered entry
func (s *JournalService) PostManual(ctx context.Context, companyID uuid.UUID, req PostManualEntryRequest) (*JournalEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "journal", "post_manual")
	defer span.End()

	draft := ledger.EntryDraft{
		Date:          req.Date,
		Description:   req.Description,
		ReferenceType: ledger.RefManual,
		ReferenceID:   uuid.New(),
		Lines:         make([]ledger.LineDraft, len(req.Lines)),
	}
	for i, l := range req.Lines {
		draft.Lines[i] = ledger.LineDraft{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}

	var entry *ledger.JournalEntry
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		entry, err = s.poster.PostDraft(ctx, repos, companyID, draft)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToJournalEntryResponse(entry)
	return &resp, nil
}

// Reverse posts the mirror of entryID
func (s *JournalService) Reverse(ctx context.Context, companyID, entryID uuid.UUID, req ReverseEntryRequest) (*JournalEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "journal", "reverse")
	defer span.End()

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	var reversal *ledger.JournalEntry
	err := s.scope.Execute(ctx, func(repos writeset.Repositories) error {
		var err error
		reversal, err = s.poster.Reverse(ctx, repos, companyID, entryID, date, req.Reason)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToJournalEntryResponse(reversal)
	return &resp, nil
}

// GetByID returns one entry with its lines
func (s *JournalService) GetByID(ctx context.Context, companyID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	entry, err := s.scope.Repos().Journals().FindByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	resp := ToJournalEntryResponse(entry)
	return &resp, nil
}

// GetByReference returns the entry posted for a business document
func (s *JournalService) GetByReference(ctx context.Context, companyID uuid.UUID, refType ledger.ReferenceType, refID uuid.UUID) (*JournalEntryResponse, error) {
	entry, err := s.scope.Repos().Journals().FindByReference(ctx, companyID, refType, refID)
	if err != nil {
		return nil, err
	}
	resp := ToJournalEntryResponse(entry)
	return &resp, nil
}

// List returns entries matching the filter
func (s *JournalService) List(ctx context.Context, companyID uuid.UUID, f JournalListFilter) (shared.Paginated[JournalEntryResponse], error) {
	filter := ledger.JournalFilter{Filter: pageFilter(f.Page, f.PageSize), AccountID: f.AccountID}
	filter.OrderBy = "entry_date"
	filter.From = f.From
	filter.To = f.To
	if f.ReferenceType != "" {
		rt := ledger.ReferenceType(f.ReferenceType)
		if !rt.IsValid() {
			return shared.Paginated[JournalEntryResponse]{}, shared.NewValidationError("INVALID_REFERENCE_TYPE", "Invalid reference type: "+f.ReferenceType)
		}
		filter.ReferenceType = &rt
	}

	entries, total, err := s.scope.Repos().Journals().FindAll(ctx, companyID, filter)
	if err != nil {
		return shared.Paginated[JournalEntryResponse]{}, err
	}
	items := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		items[i] = ToJournalEntryResponse(&entries[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// TrialBalance totals posted lines per account up to asOf
func (s *JournalService) TrialBalance(ctx context.Context, companyID uuid.UUID, asOf time.Time) (*TrialBalanceResponse, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	rows, err := s.scope.Repos().Journals().TrialBalance(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}

	resp := &TrialBalanceResponse{
		AsOf:        asOf,
		Lines:       make([]TrialBalanceLine, len(rows)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for i, r := range rows {
		resp.Lines[i] = TrialBalanceLine{
			AccountID:   r.AccountID,
			AccountCode: r.AccountCode,
			AccountName: r.AccountName,
			AccountType: string(r.AccountType),
			Debit:       r.Debit,
			Credit:      r.Credit,
			Balance:     r.Balance(),
		}
		resp.TotalDebit = resp.TotalDebit.Add(r.Debit)
		resp.TotalCredit = resp.TotalCredit.Add(r.Credit)
	}
	resp.Difference = resp.TotalDebit.Sub(resp.TotalCredit)
	resp.IsBalanced = resp.Difference.IsZero()
	return resp, nil
}

func pageFilter(page, size int) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if size > 0 {
		f.PageSize = size
	}
	return f
}
