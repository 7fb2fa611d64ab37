package models

import (
	"time"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for a ledger account
type AccountModel struct {
	CompanyAggregateModel
	Code            string             `gorm:"type:varchar(50);not null;index"`
	Name            string             `gorm:"type:varchar(200);not null"`
	Type            ledger.AccountType `gorm:"type:varchar(20);not null;index"`
	ParentID        *uuid.UUID         `gorm:"type:uuid;index"`
	Balance         decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	IsActive        bool               `gorm:"not null"`
	HasTransactions bool               `gorm:"not null"`
	Description     string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		CompanyAggregateRoot: m.ToDomainCompanyAggregateRoot(),
		Code:                 m.Code,
		Name:                 m.Name,
		Type:                 m.Type,
		ParentID:             m.ParentID,
		Balance:              m.Balance,
		IsActive:             m.IsActive,
		HasTransactions:      m.HasTransactions,
		Description:          m.Description,
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainCompanyAggregateRoot(a.CompanyAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Type = a.Type
	m.ParentID = a.ParentID
	m.Balance = a.Balance
	m.IsActive = a.IsActive
	m.HasTransactions = a.HasTransactions
	m.Description = a.Description
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// RoleMappingModel is one row of the role -> account table
type RoleMappingModel struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_role_mapping_key,priority:1"`
	Role      ledger.AccountRole `gorm:"type:varchar(40);not null;uniqueIndex:idx_role_mapping_key,priority:2"`
	Qualifier string             `gorm:"type:varchar(64);not null;default:'';uniqueIndex:idx_role_mapping_key,priority:3"`
	AccountID uuid.UUID          `gorm:"type:uuid;not null;index"`
	UpdatedAt time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RoleMappingModel) TableName() string {
	return "account_role_mappings"
}

// ToDomain converts the persistence model to a domain RoleMapping
func (m *RoleMappingModel) ToDomain() ledger.RoleMapping {
	return ledger.RoleMapping{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Role:      m.Role,
		Qualifier: m.Qualifier,
		AccountID: m.AccountID,
	}
}

// RoleMappingModelFromDomain creates a new persistence model from a domain RoleMapping
func RoleMappingModelFromDomain(r *ledger.RoleMapping) *RoleMappingModel {
	return &RoleMappingModel{
		ID:        r.ID,
		CompanyID: r.CompanyID,
		Role:      r.Role,
		Qualifier: r.Qualifier,
		AccountID: r.AccountID,
		UpdatedAt: time.Now(),
	}
}

// JournalEntryModel is the persistence model for a posted journal entry
type JournalEntryModel struct {
	CompanyAggregateModel
	EntryNumber   string               `gorm:"type:varchar(30);not null;index"`
	EntryDate     time.Time            `gorm:"not null;index"`
	Description   string               `gorm:"type:varchar(500)"`
	ReferenceType ledger.ReferenceType `gorm:"type:varchar(30);not null;index:idx_journal_reference,priority:2"`
	ReferenceID   uuid.UUID            `gorm:"type:uuid;not null;index:idx_journal_reference,priority:3"`
	IsPosted      bool                 `gorm:"not null"`
	PostedAt      *time.Time
	ReversalOfID  *uuid.UUID              `gorm:"type:uuid;index"`
	ReversedByID  *uuid.UUID              `gorm:"type:uuid"`
	Lines         []JournalEntryLineModel `gorm:"foreignKey:EntryID;references:ID"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry
func (m *JournalEntryModel) ToDomain() *ledger.JournalEntry {
	e := &ledger.JournalEntry{
		CompanyAggregateRoot: m.ToDomainCompanyAggregateRoot(),
		EntryNumber:          m.EntryNumber,
		EntryDate:            m.EntryDate,
		Description:          m.Description,
		ReferenceType:        m.ReferenceType,
		ReferenceID:          m.ReferenceID,
		IsPosted:             m.IsPosted,
		PostedAt:             m.PostedAt,
		ReversalOfID:         m.ReversalOfID,
		ReversedByID:         m.ReversedByID,
		Lines:                make([]ledger.JournalEntryLine, len(m.Lines)),
	}
	for i := range m.Lines {
		e.Lines[i] = m.Lines[i].ToDomain()
	}
	return e
}

// FromDomain populates the persistence model from a domain JournalEntry
func (m *JournalEntryModel) FromDomain(e *ledger.JournalEntry) {
	m.FromDomainCompanyAggregateRoot(e.CompanyAggregateRoot)
	m.EntryNumber = e.EntryNumber
	m.EntryDate = e.EntryDate
	m.Description = e.Description
	m.ReferenceType = e.ReferenceType
	m.ReferenceID = e.ReferenceID
	m.IsPosted = e.IsPosted
	m.PostedAt = e.PostedAt
	m.ReversalOfID = e.ReversalOfID
	m.ReversedByID = e.ReversedByID
	m.Lines = make([]JournalEntryLineModel, len(e.Lines))
	for i, l := range e.Lines {
		m.Lines[i] = JournalEntryLineModel{
			ID:          l.ID,
			CompanyID:   e.CompanyID,
			EntryID:     e.ID,
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
}

// JournalEntryModelFromDomain creates a new persistence model from a domain JournalEntry
func JournalEntryModelFromDomain(e *ledger.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{}
	m.FromDomain(e)
	return m
}

// JournalEntryLineModel is one debit or credit line
type JournalEntryLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	EntryID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo      int             `gorm:"not null"`
	AccountID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Description string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (JournalEntryLineModel) TableName() string {
	return "journal_entry_lines"
}

// ToDomain converts the line model to a domain line
func (m *JournalEntryLineModel) ToDomain() ledger.JournalEntryLine {
	return ledger.JournalEntryLine{
		ID:          m.ID,
		EntryID:     m.EntryID,
		LineNo:      m.LineNo,
		AccountID:   m.AccountID,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Description: m.Description,
	}
}
