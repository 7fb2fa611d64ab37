package persistence

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCashSessionRepository implements pos.CashSessionRepository using GORM
type GormCashSessionRepository struct {
	db *gorm.DB
}

// NewGormCashSessionRepository creates a new GormCashSessionRepository
func NewGormCashSessionRepository(db *gorm.DB) *GormCashSessionRepository {
	return &GormCashSessionRepository{db: db}
}

// FindByID finds a session by ID within a company
func (r *GormCashSessionRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*pos.CashSession, error) {
	var model models.CashSessionModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindOpen returns the company's open session
func (r *GormCashSessionRepository) FindOpen(ctx context.Context, companyID uuid.UUID) (*pos.CashSession, error) {
	var model models.CashSessionModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, pos.SessionOpen).
		Order("opened_at DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists sessions, newest first by default
func (r *GormCashSessionRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]pos.CashSession, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CashSessionModel{}).Where("company_id = ?", companyID)
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CashSessionModel
	if err := applyListFilter(query, filter, CashSessionSortFields, "opened_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	sessions := make([]pos.CashSession, len(rows))
	for i := range rows {
		sessions[i] = *rows[i].ToDomain()
	}
	return sessions, total, nil
}

// Save inserts a newly opened session
func (r *GormCashSessionRepository) Save(ctx context.Context, session *pos.CashSession) error {
	return r.db.WithContext(ctx).Create(models.CashSessionModelFromDomain(session)).Error
}

// SaveWithLock updates the session when the stored version matches
func (r *GormCashSessionRepository) SaveWithLock(ctx context.Context, session *pos.CashSession) error {
	model := models.CashSessionModelFromDomain(session)
	model.Version = session.Version + 1
	model.UpdatedAt = time.Now()
	if err := updateWithVersion(r.db.WithContext(ctx), model, session.CompanyID, session.Version); err != nil {
		return err
	}
	session.Version = model.Version
	session.UpdatedAt = model.UpdatedAt
	return nil
}

// Ensure GormCashSessionRepository implements pos.CashSessionRepository
var _ pos.CashSessionRepository = (*GormCashSessionRepository)(nil)

// GormCashMovementRepository implements pos.CashMovementRepository using GORM
type GormCashMovementRepository struct {
	db *gorm.DB
}

// NewGormCashMovementRepository creates a new GormCashMovementRepository
func NewGormCashMovementRepository(db *gorm.DB) *GormCashMovementRepository {
	return &GormCashMovementRepository{db: db}
}

// Append inserts movements; rows are never updated afterwards
func (r *GormCashMovementRepository) Append(ctx context.Context, movements ...pos.CashMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]models.CashMovementModel, len(movements))
	for i, m := range movements {
		rows[i] = models.CashMovementModelFromDomain(m)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListBySession returns the movements of a session in recording order
func (r *GormCashMovementRepository) ListBySession(ctx context.Context, companyID, sessionID uuid.UUID) ([]pos.CashMovement, error) {
	var rows []models.CashMovementModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND session_id = ?", companyID, sessionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]pos.CashMovement, len(rows))
	for i := range rows {
		movements[i] = rows[i].ToDomain()
	}
	return movements, nil
}

// SumBySession totals the signed drawer effect; manual_out counts negative
func (r *GormCashMovementRepository) SumBySession(ctx context.Context, companyID, sessionID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.CashMovementModel{}).
		Select("SUM(CASE WHEN type = ? THEN -amount ELSE amount END)", pos.MovementManualOut).
		Where("company_id = ? AND session_id = ?", companyID, sessionID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Ensure GormCashMovementRepository implements pos.CashMovementRepository
var _ pos.CashMovementRepository = (*GormCashMovementRepository)(nil)
