package event

import (
	"github.com/erp/accounting/internal/domain/asset"
	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/trade"
)

// RegisterAllEvents registers every domain event type with the serializer.
// The relay cannot deserialize an outbox row whose type is missing here.
func RegisterAllEvents(serializer *EventSerializer) {
	// Ledger
	serializer.Register(ledger.EventTypeJournalEntryPosted, &ledger.JournalEntryPostedEvent{})
	serializer.Register(ledger.EventTypeJournalEntryReversed, &ledger.JournalEntryReversedEvent{})

	// Finance
	serializer.Register(finance.EventTypeDocumentIssued, &finance.DocumentIssuedEvent{})
	serializer.Register(finance.EventTypeDocumentPaymentApplied, &finance.DocumentPaymentAppliedEvent{})
	serializer.Register(finance.EventTypeDocumentPaid, &finance.DocumentPaidEvent{})
	serializer.Register(finance.EventTypeDocumentOverdue, &finance.DocumentOverdueEvent{})
	serializer.Register(finance.EventTypeDocumentCancelled, &finance.DocumentCancelledEvent{})
	serializer.Register(finance.EventTypePaymentRecorded, &finance.PaymentRecordedEvent{})

	// Trade
	serializer.Register(trade.EventTypeOrderConfirmed, &trade.OrderConfirmedEvent{})
	serializer.Register(trade.EventTypeOrderInvoiced, &trade.OrderInvoicedEvent{})
	serializer.Register(trade.EventTypeOrderPaid, &trade.OrderPaidEvent{})
	serializer.Register(trade.EventTypeOrderCancelled, &trade.OrderCancelledEvent{})
	serializer.Register(trade.EventTypeOrderReopened, &trade.OrderReopenedEvent{})
	serializer.Register(trade.EventTypeDownPaymentRecorded, &trade.DownPaymentRecordedEvent{})

	// POS
	serializer.Register(pos.EventTypePOSSaleCompleted, &pos.POSSaleCompletedEvent{})
	serializer.Register(pos.EventTypeCashSessionOpened, &pos.CashSessionOpenedEvent{})
	serializer.Register(pos.EventTypeCashSessionClosed, &pos.CashSessionClosedEvent{})

	// Inventory; the four transfer transitions share one payload type
	serializer.Register(inventory.EventTypeStockTransferSubmitted, &inventory.StockTransferEvent{})
	serializer.Register(inventory.EventTypeStockTransferApproved, &inventory.StockTransferEvent{})
	serializer.Register(inventory.EventTypeStockTransferRejected, &inventory.StockTransferEvent{})
	serializer.Register(inventory.EventTypeStockTransferCompleted, &inventory.StockTransferEvent{})
	serializer.Register(inventory.EventTypeStockOpnameCompleted, &inventory.StockOpnameCompletedEvent{})

	// Fixed assets
	serializer.Register(asset.EventTypeAssetRegistered, &asset.AssetRegisteredEvent{})
	serializer.Register(asset.EventTypeAssetDepreciated, &asset.AssetDepreciatedEvent{})
	serializer.Register(asset.EventTypeAssetDisposed, &asset.AssetDisposedEvent{})
}
