package persistence

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements finance.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds an invoice or bill by ID within a company
func (r *GormDocumentRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*finance.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the requested documents in id order
func (r *GormDocumentRepository) FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]finance.Document, error) {
	if len(ids) == 0 {
		return []finance.Document{}, nil
	}
	var rows []models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return documentsToDomain(rows), nil
}

// FindByOrder finds the live (not cancelled) document raised from an order
func (r *GormDocumentRepository) FindByOrder(ctx context.Context, companyID, orderID uuid.UUID, kind finance.DocumentKind) (*finance.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND order_id = ? AND kind = ? AND status <> ?",
			companyID, orderID, kind, finance.StatusCancelled).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists documents with filtering and the total count
func (r *GormDocumentRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter finance.DocumentFilter) ([]finance.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("company_id = ?", companyID)
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR party_name LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DocumentModel
	if err := applyListFilter(query, filter.Filter, DocumentSortFields, "issue_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return documentsToDomain(rows), total, nil
}

// FindOpen returns the documents of a kind that still have an outstanding
// balance, oldest first
func (r *GormDocumentRepository) FindOpen(ctx context.Context, companyID uuid.UUID, kind finance.DocumentKind, partyID *uuid.UUID) ([]finance.Document, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ? AND kind = ? AND outstanding_amount > 0", companyID, kind).
		Where("status NOT IN ?", []finance.DocumentStatus{finance.StatusDraft, finance.StatusCancelled})
	if partyID != nil {
		query = query.Where("party_id = ?", *partyID)
	}
	var rows []models.DocumentModel
	if err := query.Order("issue_date ASC, number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return documentsToDomain(rows), nil
}

// FindPastDue returns sent or partially paid documents whose due date (or
// issue date when none) lies before the day of asOf, across every company
func (r *GormDocumentRepository) FindPastDue(ctx context.Context, asOf time.Time, limit int) ([]finance.Document, error) {
	dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	query := r.db.WithContext(ctx).
		Where("status IN ?", []finance.DocumentStatus{finance.StatusSent, finance.StatusPartial}).
		Where("COALESCE(due_date, issue_date) < ?", dayStart).
		Order("company_id ASC, COALESCE(due_date, issue_date) ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.DocumentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return documentsToDomain(rows), nil
}

// Save inserts a new document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *finance.Document) error {
	return r.db.WithContext(ctx).Create(models.DocumentModelFromDomain(doc)).Error
}

// SaveWithLock updates the document when the stored version matches, then
// bumps the version held by doc
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *finance.Document) error {
	model := models.DocumentModelFromDomain(doc)
	model.Version = doc.Version + 1
	model.UpdatedAt = time.Now()
	if err := updateWithVersion(r.db.WithContext(ctx), model, doc.CompanyID, doc.Version); err != nil {
		return err
	}
	doc.Version = model.Version
	doc.UpdatedAt = model.UpdatedAt
	return nil
}

// NextNumber reserves INV-YYYYMM-NNNNN or BILL-YYYYMM-NNNNN
func (r *GormDocumentRepository) NextNumber(ctx context.Context, companyID uuid.UUID, kind finance.DocumentKind, date time.Time) (string, error) {
	prefix := "INV"
	if kind == finance.KindBill {
		prefix = "BILL"
	}
	return monthlyNumber(ctx, r.db, companyID, prefix, date)
}

func documentsToDomain(rows []models.DocumentModel) []finance.Document {
	docs := make([]finance.Document, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs
}

// Ensure GormDocumentRepository implements finance.DocumentRepository
var _ finance.DocumentRepository = (*GormDocumentRepository)(nil)
