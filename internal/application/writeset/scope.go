// Package writeset defines the commit boundary of every business event.
// A service builds its complete write-set inside one TransactionScope.Execute
// call: either every row lands or none does.
package writeset

import (
	"context"
	"errors"

	"github.com/erp/accounting/internal/domain/asset"
	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/trade"
)

// TransactionScope runs fn inside one database transaction. If fn returns
// an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
	// Repos returns repositories bound to no transaction, for reads
	Repos() Repositories
}

// EventRecorder writes domain events to the outbox of the current transaction
type EventRecorder interface {
	Record(ctx context.Context, events ...shared.DomainEvent) error
}

// Repositories are all bound to the same transaction
type Repositories interface {
	Accounts() ledger.AccountRepository
	RoleMappings() ledger.RoleMappingRepository
	Journals() ledger.JournalEntryRepository
	Documents() finance.DocumentRepository
	Payments() finance.PaymentRepository
	Orders() trade.OrderRepository
	Sales() pos.TransactionRepository
	PaymentMethods() pos.PaymentMethodRepository
	CashSessions() pos.CashSessionRepository
	CashMovements() pos.CashMovementRepository
	Warehouses() inventory.WarehouseRepository
	Stock() inventory.StockRepository
	Transfers() inventory.TransferRepository
	Opnames() inventory.OpnameRepository
	Assets() asset.Repository
	Depreciations() asset.DepreciationRepository
	Events() EventRecorder
}

// Step tags an infrastructure failure with the write-set step it broke.
// Domain errors pass through unchanged.
func Step(name string, err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.NewPartialWriteFailure(name, err)
}

// Aggregate is anything that carries pending domain events
type Aggregate interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// RecordEvents moves the pending events of aggregates into the outbox
func RecordEvents(ctx context.Context, repos Repositories, aggregates ...Aggregate) error {
	var events []shared.DomainEvent
	for _, a := range aggregates {
		events = append(events, a.GetDomainEvents()...)
	}
	if len(events) == 0 {
		return nil
	}
	if err := repos.Events().Record(ctx, events...); err != nil {
		return Step("record events", err)
	}
	for _, a := range aggregates {
		a.ClearDomainEvents()
	}
	return nil
}
