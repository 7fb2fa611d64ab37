package event

import (
	"encoding/json"
	"testing"

	"github.com/erp/accounting/internal/domain/finance"
	"github.com/erp/accounting/internal/domain/inventory"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_RegisterAllEvents(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	for _, eventType := range []string{
		ledger.EventTypeJournalEntryPosted,
		ledger.EventTypeJournalEntryReversed,
		finance.EventTypeDocumentPaid,
		finance.EventTypePaymentRecorded,
		pos.EventTypeCashSessionClosed,
		inventory.EventTypeStockTransferCompleted,
	} {
		assert.True(t, serializer.IsRegistered(eventType), eventType)
	}
	assert.False(t, serializer.IsRegistered("UnknownEvent"))

	types := serializer.RegisteredTypes()
	assert.IsNonDecreasing(t, types)
}

func TestEventSerializer_RoundTrip_PreservesDecimalsAndBase(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	companyID := uuid.New()
	original := &pos.CashSessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(pos.EventTypeCashSessionClosed, pos.AggregateTypeCashSession, uuid.New(), companyID),
		CashierID:       uuid.New(),
		ExpectedBalance: decimal.RequireFromString("1250000.00"),
		ClosingBalance:  decimal.RequireFromString("1249500.50"),
		Difference:      decimal.RequireFromString("-499.50"),
		Variance:        pos.VarianceMinor,
	}

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	restored, err := serializer.Deserialize(pos.EventTypeCashSessionClosed, data)
	require.NoError(t, err)

	event, ok := restored.(*pos.CashSessionClosedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), event.EventID())
	assert.Equal(t, companyID, event.CompanyID())
	assert.Equal(t, original.AggregateID(), event.AggregateID())
	assert.True(t, original.Difference.Equal(event.Difference))
	assert.True(t, original.ClosingBalance.Equal(event.ClosingBalance))
	assert.Equal(t, pos.VarianceMinor, event.Variance)
}

func TestEventSerializer_Deserialize_Errors(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})

	_, err := serializer.Deserialize("UnknownEvent", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")

	_, err = serializer.Deserialize("TestEvent", []byte(`invalid json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}

func TestEventSerializer_Deserialize_TypeMismatch(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	// one Go type backs all four transfer events; the stored name must match
	approved := newTestEvent(inventory.EventTypeStockTransferApproved, uuid.New())
	data, err := json.Marshal(approved)
	require.NoError(t, err)

	_, err = serializer.Deserialize(inventory.EventTypeStockTransferCompleted, data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), inventory.EventTypeStockTransferApproved)

	restored, err := serializer.Deserialize(inventory.EventTypeStockTransferApproved, data)
	require.NoError(t, err)
	assert.Equal(t, approved.EventID(), restored.EventID())
}

func TestEventSerializer_Serialize_Rejects(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})

	_, err := serializer.Serialize(newTestEvent("Unregistered", uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unregistered")

	_, err = serializer.Serialize(newTestEvent("TestEvent", uuid.Nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no company")
}

func TestEventSerializer_Register_ConflictPanics(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register(ledger.EventTypeJournalEntryPosted, &ledger.JournalEntryPostedEvent{})
	serializer.Register(ledger.EventTypeJournalEntryPosted, &ledger.JournalEntryPostedEvent{})

	assert.Panics(t, func() {
		serializer.Register(ledger.EventTypeJournalEntryPosted, &testEvent{})
	})
}
