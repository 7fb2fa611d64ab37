package persistence

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const journalSequenceScope = "journal"

// GormJournalEntryRepository implements ledger.JournalEntryRepository using GORM.
// Entries are append-only: after Save the only mutable column is the
// reversal link.
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// Save inserts the entry header and its lines
func (r *GormJournalEntryRepository) Save(ctx context.Context, entry *ledger.JournalEntry) error {
	model := models.JournalEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// MarkReversed stores the reversal link. The entry carries the version bumped
// by Reverse, so the stored row must still be one behind and unreversed.
func (r *GormJournalEntryRepository) MarkReversed(ctx context.Context, entry *ledger.JournalEntry) error {
	result := r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).
		Where("id = ? AND company_id = ? AND version = ? AND reversed_by_id IS NULL",
			entry.ID, entry.CompanyID, entry.Version-1).
		Updates(map[string]any{
			"reversed_by_id": entry.ReversedByID,
			"version":        entry.Version,
			"updated_at":     entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID loads an entry with its lines
func (r *GormJournalEntryRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByReference loads the most recent entry posted for a business event
func (r *GormJournalEntryRepository) FindByReference(ctx context.Context, companyID uuid.UUID, refType ledger.ReferenceType, refID uuid.UUID) (*ledger.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("company_id = ? AND reference_type = ? AND reference_id = ?", companyID, refType, refID).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByReference reports whether an entry was already posted for the event
func (r *GormJournalEntryRepository) ExistsByReference(ctx context.Context, companyID uuid.UUID, refType ledger.ReferenceType, refID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).
		Where("company_id = ? AND reference_type = ? AND reference_id = ?", companyID, refType, refID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists entries with their lines
func (r *GormJournalEntryRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter ledger.JournalFilter) ([]ledger.JournalEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).Where("company_id = ?", companyID)
	if filter.ReferenceType != nil {
		query = query.Where("reference_type = ?", *filter.ReferenceType)
	}
	if filter.AccountID != nil {
		query = query.Where("id IN (SELECT entry_id FROM journal_entry_lines WHERE account_id = ?)", *filter.AccountID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("entry_number LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.JournalEntryModel
	if err := applyListFilter(query, filter.Filter, JournalEntrySortFields, "entry_date").
		Preload("Lines", orderedLines).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]ledger.JournalEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, total, nil
}

// NextSequence reserves the next entry number of the period
func (r *GormJournalEntryRepository) NextSequence(ctx context.Context, companyID uuid.UUID, period string) (int, error) {
	return nextSequence(ctx, r.db, companyID, journalSequenceScope, period)
}

type trialBalanceRow struct {
	AccountID   uuid.UUID
	AccountCode string
	AccountName string
	AccountType string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// TrialBalance sums posted lines per account up to and including asOf
func (r *GormJournalEntryRepository) TrialBalance(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]ledger.TrialBalanceRow, error) {
	var rows []trialBalanceRow
	err := r.db.WithContext(ctx).
		Table("journal_entry_lines AS l").
		Select(`a.id AS account_id, a.code AS account_code, a.name AS account_name, a.type AS account_type,
			COALESCE(SUM(l.debit), 0) AS debit, COALESCE(SUM(l.credit), 0) AS credit`).
		Joins("JOIN journal_entries AS e ON e.id = l.entry_id").
		Joins("JOIN accounts AS a ON a.id = l.account_id").
		Where("e.company_id = ? AND e.is_posted = ? AND e.entry_date <= ?", companyID, true, asOf).
		Group("a.id, a.code, a.name, a.type").
		Order("a.code ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]ledger.TrialBalanceRow, len(rows))
	for i, row := range rows {
		result[i] = ledger.TrialBalanceRow{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			AccountType: ledger.AccountType(row.AccountType),
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
	}
	return result, nil
}

// Ensure GormJournalEntryRepository implements ledger.JournalEntryRepository
var _ ledger.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
