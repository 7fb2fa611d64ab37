package persistence

import (
	"context"

	"github.com/erp/accounting/internal/application/writeset"
	"github.com/erp/accounting/internal/domain/asset"
	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/trade"
	"gorm.io/gorm"
)

// RecorderFactory binds an event recorder to a transaction handle
type RecorderFactory func(tx *gorm.DB) writeset.EventRecorder

// GormTransactionScope implements writeset.TransactionScope using GORM
// transactions. Every repository handed to fn shares the same *gorm.DB
// transaction, including the outbox recorder.
type GormTransactionScope struct {
	db       *gorm.DB
	recorder RecorderFactory
}

// NewGormTransactionScope creates a new GormTransactionScope. A nil recorder
// discards events.
func NewGormTransactionScope(db *gorm.DB, recorder RecorderFactory) *GormTransactionScope {
	if recorder == nil {
		recorder = func(*gorm.DB) writeset.EventRecorder { return discardRecorder{} }
	}
	return &GormTransactionScope{db: db, recorder: recorder}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos writeset.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx, events: s.recorder(tx)})
	})
}

// Repos returns repositories bound to the base connection
func (s *GormTransactionScope) Repos() writeset.Repositories {
	return &gormRepositories{tx: s.db, events: s.recorder(s.db)}
}

// gormRepositories provides access to all repositories on one handle
type gormRepositories struct {
	tx     *gorm.DB
	events writeset.EventRecorder
}

func (r *gormRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormRepositories) RoleMappings() ledger.RoleMappingRepository {
	return NewGormRoleMappingRepository(r.tx)
}

func (r *gormRepositories) Journals() ledger.JournalEntryRepository {
	return NewGormJournalEntryRepository(r.tx)
}

func (r *gormRepositories) Documents() finance.DocumentRepository {
	return NewGormDocumentRepository(r.tx)
}

func (r *gormRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormRepositories) Orders() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormRepositories) Sales() pos.TransactionRepository {
	return NewGormPOSTransactionRepository(r.tx)
}

func (r *gormRepositories) PaymentMethods() pos.PaymentMethodRepository {
	return NewGormPaymentMethodRepository(r.tx)
}

func (r *gormRepositories) CashSessions() pos.CashSessionRepository {
	return NewGormCashSessionRepository(r.tx)
}

func (r *gormRepositories) CashMovements() pos.CashMovementRepository {
	return NewGormCashMovementRepository(r.tx)
}

func (r *gormRepositories) Warehouses() inventory.WarehouseRepository {
	return NewGormWarehouseRepository(r.tx)
}

func (r *gormRepositories) Stock() inventory.StockRepository {
	return NewGormStockRepository(r.tx)
}

func (r *gormRepositories) Transfers() inventory.TransferRepository {
	return NewGormTransferRepository(r.tx)
}

func (r *gormRepositories) Opnames() inventory.OpnameRepository {
	return NewGormOpnameRepository(r.tx)
}

func (r *gormRepositories) Assets() asset.Repository {
	return NewGormAssetRepository(r.tx)
}

func (r *gormRepositories) Depreciations() asset.DepreciationRepository {
	return NewGormDepreciationRepository(r.tx)
}

func (r *gormRepositories) Events() writeset.EventRecorder {
	return r.events
}

type discardRecorder struct{}

func (discardRecorder) Record(context.Context, ...shared.DomainEvent) error { return nil }

// Ensure GormTransactionScope implements writeset.TransactionScope
var _ writeset.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormRepositories implements writeset.Repositories
var _ writeset.Repositories = (*gormRepositories)(nil)
