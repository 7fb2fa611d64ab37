package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TranslateNotFound maps gorm's missing-row error to the domain sentinel
func TranslateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

func notFound(err error) error { return TranslateNotFound(err) }

// applyListFilter applies ordering, the created_at window and pagination.
// A PageSize of zero returns every row.
func applyListFilter(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// updateWithVersion writes every column of m when the stored row of the
// company still carries version. m must already hold the bumped version.
// Associations are left alone; callers replace child rows themselves.
func updateWithVersion(tx *gorm.DB, m any, companyID uuid.UUID, version int) error {
	result := tx.Model(m).
		Where("company_id = ? AND version = ?", companyID, version).
		Select("*").
		Omit("id", "company_id", "created_at", "created_by", clause.Associations).
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// nextSequence reserves the next value of a per-company, per-period counter
// with a single upsert, so concurrent callers never share a number.
func nextSequence(ctx context.Context, db *gorm.DB, companyID uuid.UUID, scope, period string) (int, error) {
	var value int
	err := db.WithContext(ctx).Raw(
		`INSERT INTO number_sequences (company_id, scope, period, last_value)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (company_id, scope, period)
		DO UPDATE SET last_value = number_sequences.last_value + 1
		RETURNING last_value`,
		companyID, scope, period,
	).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("reserve %s number: %w", scope, err)
	}
	return value, nil
}

// monthlyNumber renders PREFIX-YYYYMM-NNNNN from a monthly sequence
func monthlyNumber(ctx context.Context, db *gorm.DB, companyID uuid.UUID, prefix string, date time.Time) (string, error) {
	period := date.Format("200601")
	seq, err := nextSequence(ctx, db, companyID, prefix, period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%05d", prefix, period, seq), nil
}

// saveLocked runs the optimistic header update and swaps the child rows of
// the aggregate in one transaction.
func saveLocked[T any](ctx context.Context, db *gorm.DB, header any, companyID uuid.UUID, version int, foreignKey string, parentID uuid.UUID, children []T) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateWithVersion(tx, header, companyID, version); err != nil {
			return err
		}
		return replaceChildren(tx, foreignKey, parentID, children)
	})
}

// replaceChildren deletes the stored child rows of parentID and inserts rows
func replaceChildren[T any](tx *gorm.DB, foreignKey string, parentID uuid.UUID, rows []T) error {
	if err := tx.Where(foreignKey+" = ?", parentID).Delete(new(T)).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
