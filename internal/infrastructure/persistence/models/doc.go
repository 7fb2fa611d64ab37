// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers (ToDomain / FromDomain) convert between the two
// 4. Repositories read and write models only
//
// Structure:
// - base.go: BaseModel, AggregateModel, CompanyAggregateModel
// - ledger.go: accounts, role mappings, journal entries and lines
// - finance.go: invoices/bills and payments with allocations
// - trade.go: orders and order items
// - pos.go: POS sales, payment methods, cash sessions and movements
// - inventory.go: warehouses, stock levels and movements, transfers, opnames
// - asset.go: fixed assets and depreciation runs
// - sequence.go: document number sequences
// - outbox.go: outbox entries for event delivery
package models

// All returns every model in creation order. The SQL migrations are the
// schema of record; this list drives AutoMigrate in tests.
func All() []any {
	return []any{
		&AccountModel{},
		&RoleMappingModel{},
		&JournalEntryModel{},
		&JournalEntryLineModel{},
		&DocumentModel{},
		&PaymentModel{},
		&PaymentAllocationModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PaymentMethodModel{},
		&CashSessionModel{},
		&CashMovementModel{},
		&POSTransactionModel{},
		&POSItemModel{},
		&POSPaymentModel{},
		&WarehouseModel{},
		&StockLevelModel{},
		&StockMovementModel{},
		&StockTransferModel{},
		&TransferItemModel{},
		&StockOpnameModel{},
		&OpnameItemModel{},
		&FixedAssetModel{},
		&DepreciationModel{},
		&NumberSequenceModel{},
		&OutboxEventModel{},
	}
}
