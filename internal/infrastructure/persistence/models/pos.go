package models

import (
	"time"

	"github.com/erp/accounting/internal/domain/pos"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// POSTransactionModel is the persistence model for a completed sale
type POSTransactionModel struct {
	CompanyAggregateModel
	ReceiptNumber   string            `gorm:"type:varchar(30);not null;index"`
	CashierID       uuid.UUID         `gorm:"type:uuid;not null"`
	WarehouseID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	SessionID       *uuid.UUID        `gorm:"type:uuid;index"`
	TransactionDate time.Time         `gorm:"not null;index"`
	Items           []POSItemModel    `gorm:"foreignKey:TransactionID;references:ID"`
	Payments        []POSPaymentModel `gorm:"foreignKey:TransactionID;references:ID"`
	Subtotal        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	DiscountAmount  decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	TaxAmount       decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	RoundingAmount  decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	TotalCOGS       decimal.Decimal   `gorm:"column:total_cogs;type:decimal(18,2);not null"`
	AmountPaid      decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	ChangeAmount    decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	CashReceived    decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	JournalEntryID  *uuid.UUID        `gorm:"type:uuid"`
	IdempotencyKey  string            `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (POSTransactionModel) TableName() string {
	return "pos_transactions"
}

// ToDomain converts the persistence model to a domain POSTransaction
func (m *POSTransactionModel) ToDomain() *pos.POSTransaction {
	t := &pos.POSTransaction{
		CompanyAggregateRoot: m.ToDomainCompanyAggregateRoot(),
		ReceiptNumber:        m.ReceiptNumber,
		CashierID:            m.CashierID,
		WarehouseID:          m.WarehouseID,
		SessionID:            m.SessionID,
		TransactionDate:      m.TransactionDate,
		Items:                make([]pos.POSItem, len(m.Items)),
		Payments:             make([]pos.POSPayment, len(m.Payments)),
		Subtotal:             m.Subtotal,
		DiscountAmount:       m.DiscountAmount,
		TaxAmount:            m.TaxAmount,
		TotalAmount:          m.TotalAmount,
		RoundingAmount:       m.RoundingAmount,
		TotalCOGS:            m.TotalCOGS,
		AmountPaid:           m.AmountPaid,
		ChangeAmount:         m.ChangeAmount,
		CashReceived:         m.CashReceived,
		JournalEntryID:       m.JournalEntryID,
		IdempotencyKey:       m.IdempotencyKey,
	}
	for i, it := range m.Items {
		t.Items[i] = pos.POSItem{
			ID:              it.ID,
			TransactionID:   it.TransactionID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			DiscountAmount:  it.DiscountAmount,
			TaxPercent:      it.TaxPercent,
			TaxAmount:       it.TaxAmount,
			Total:           it.Total,
			UnitCost:        it.UnitCost,
		}
	}
	for i, p := range m.Payments {
		t.Payments[i] = pos.POSPayment{
			ID:              p.ID,
			TransactionID:   p.TransactionID,
			PaymentMethodID: p.PaymentMethodID,
			MethodName:      p.MethodName,
			IsCash:          p.IsCash,
			Amount:          p.Amount,
		}
	}
	return t
}

// FromDomain populates the persistence model from a domain POSTransaction
func (m *POSTransactionModel) FromDomain(t *pos.POSTransaction) {
	m.FromDomainCompanyAggregateRoot(t.CompanyAggregateRoot)
	m.ReceiptNumber = t.ReceiptNumber
	m.CashierID = t.CashierID
	m.WarehouseID = t.WarehouseID
	m.SessionID = t.SessionID
	m.TransactionDate = t.TransactionDate
	m.Subtotal = t.Subtotal
	m.DiscountAmount = t.DiscountAmount
	m.TaxAmount = t.TaxAmount
	m.TotalAmount = t.TotalAmount
	m.RoundingAmount = t.RoundingAmount
	m.TotalCOGS = t.TotalCOGS
	m.AmountPaid = t.AmountPaid
	m.ChangeAmount = t.ChangeAmount
	m.CashReceived = t.CashReceived
	m.JournalEntryID = t.JournalEntryID
	m.IdempotencyKey = t.IdempotencyKey
	m.Items = make([]POSItemModel, len(t.Items))
	for i, it := range t.Items {
		m.Items[i] = POSItemModel{
			ID:              it.ID,
			CompanyID:       t.CompanyID,
			TransactionID:   t.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			DiscountAmount:  it.DiscountAmount,
			TaxPercent:      it.TaxPercent,
			TaxAmount:       it.TaxAmount,
			Total:           it.Total,
			UnitCost:        it.UnitCost,
		}
	}
	m.Payments = make([]POSPaymentModel, len(t.Payments))
	for i, p := range t.Payments {
		m.Payments[i] = POSPaymentModel{
			ID:              p.ID,
			CompanyID:       t.CompanyID,
			TransactionID:   t.ID,
			PaymentMethodID: p.PaymentMethodID,
			MethodName:      p.MethodName,
			IsCash:          p.IsCash,
			Amount:          p.Amount,
		}
	}
}

// POSTransactionModelFromDomain creates a new persistence model from a domain POSTransaction
func POSTransactionModelFromDomain(t *pos.POSTransaction) *POSTransactionModel {
	m := &POSTransactionModel{}
	m.FromDomain(t)
	return m
}

// POSItemModel is one sold line
type POSItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName     string          `gorm:"type:varchar(200);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxPercent      decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (POSItemModel) TableName() string {
	return "pos_transaction_items"
}

// POSPaymentModel is one tender of a sale
type POSPaymentModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	MethodName      string          `gorm:"type:varchar(100);not null"`
	IsCash          bool            `gorm:"not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (POSPaymentModel) TableName() string {
	return "pos_transaction_payments"
}

// PaymentMethodModel is the persistence model for a tender type
type PaymentMethodModel struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	IsCash    bool      `gorm:"not null"`
	IsActive  bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ToDomain converts the persistence model to a domain PaymentMethod
func (m *PaymentMethodModel) ToDomain() *pos.PaymentMethod {
	return &pos.PaymentMethod{
		BaseEntity: m.BaseModel.ToDomain(),
		CompanyID:  m.CompanyID,
		Name:       m.Name,
		IsCash:     m.IsCash,
		IsActive:   m.IsActive,
	}
}

// PaymentMethodModelFromDomain creates a new persistence model from a domain PaymentMethod
func PaymentMethodModelFromDomain(p *pos.PaymentMethod) *PaymentMethodModel {
	m := &PaymentMethodModel{
		CompanyID: p.CompanyID,
		Name:      p.Name,
		IsCash:    p.IsCash,
		IsActive:  p.IsActive,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// CashSessionModel is the persistence model for a drawer session
type CashSessionModel struct {
	CompanyAggregateModel
	CashierID       uuid.UUID         `gorm:"type:uuid;not null"`
	OpeningBalance  decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	ClosingBalance  *decimal.Decimal  `gorm:"type:decimal(18,2)"`
	ExpectedBalance *decimal.Decimal  `gorm:"type:decimal(18,2)"`
	Difference      *decimal.Decimal  `gorm:"type:decimal(18,2)"`
	Variance        pos.VarianceClass `gorm:"type:varchar(20)"`
	Status          pos.SessionStatus `gorm:"type:varchar(20);not null;index"`
	OpenedAt        time.Time         `gorm:"not null"`
	ClosedAt        *time.Time
	Notes           string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CashSessionModel) TableName() string {
	return "cash_sessions"
}

// ToDomain converts the persistence model to a domain CashSession
func (m *CashSessionModel) ToDomain() *pos.CashSession {
	return &pos.CashSession{
		CompanyAggregateRoot: m.ToDomainCompanyAggregateRoot(),
		CashierID:            m.CashierID,
		OpeningBalance:       m.OpeningBalance,
		ClosingBalance:       m.ClosingBalance,
		ExpectedBalance:      m.ExpectedBalance,
		Difference:           m.Difference,
		Variance:             m.Variance,
		Status:               m.Status,
		OpenedAt:             m.OpenedAt,
		ClosedAt:             m.ClosedAt,
		Notes:                m.Notes,
	}
}

// CashSessionModelFromDomain creates a new persistence model from a domain CashSession
func CashSessionModelFromDomain(s *pos.CashSession) *CashSessionModel {
	m := &CashSessionModel{
		CashierID:       s.CashierID,
		OpeningBalance:  s.OpeningBalance,
		ClosingBalance:  s.ClosingBalance,
		ExpectedBalance: s.ExpectedBalance,
		Difference:      s.Difference,
		Variance:        s.Variance,
		Status:          s.Status,
		OpenedAt:        s.OpenedAt,
		ClosedAt:        s.ClosedAt,
		Notes:           s.Notes,
	}
	m.FromDomainCompanyAggregateRoot(s.CompanyAggregateRoot)
	return m
}

// CashMovementModel is an append-only drawer record
type CashMovementModel struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	SessionID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type          pos.MovementType `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	ReferenceType string           `gorm:"type:varchar(30)"`
	ReferenceID   *uuid.UUID       `gorm:"type:uuid"`
	Note          string           `gorm:"type:varchar(500)"`
	CreatedBy     *uuid.UUID       `gorm:"type:uuid"`
	CreatedAt     time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CashMovementModel) TableName() string {
	return "cash_movements"
}

// ToDomain converts the persistence model to a domain CashMovement
func (m *CashMovementModel) ToDomain() pos.CashMovement {
	return pos.CashMovement{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		SessionID:     m.SessionID,
		Type:          m.Type,
		Amount:        m.Amount,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Note:          m.Note,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// CashMovementModelFromDomain creates a new persistence model from a domain CashMovement
func CashMovementModelFromDomain(c pos.CashMovement) CashMovementModel {
	return CashMovementModel{
		ID:            c.ID,
		CompanyID:     c.CompanyID,
		SessionID:     c.SessionID,
		Type:          c.Type,
		Amount:        c.Amount,
		ReferenceType: c.ReferenceType,
		ReferenceID:   c.ReferenceID,
		Note:          c.Note,
		CreatedBy:     c.CreatedBy,
		CreatedAt:     c.CreatedAt,
	}
}
