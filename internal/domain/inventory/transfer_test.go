package inventory

import (
	"errors"
	"testing"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, code, de.Code)
}

type transferFixture struct {
	companyID uuid.UUID
	source    *Warehouse
	dest      *Warehouse
	pic       uuid.UUID
	product   uuid.UUID
}

func newFixture(t *testing.T) transferFixture {
	t.Helper()
	companyID := uuid.New()
	source, err := NewWarehouse(companyID, "wh-a", "Gudang A")
	require.NoError(t, err)
	dest, err := NewWarehouse(companyID, "wh-b", "Gudang B")
	require.NoError(t, err)
	pic := uuid.New()
	require.NoError(t, dest.AssignPIC(pic))
	return transferFixture{companyID: companyID, source: source, dest: dest, pic: pic, product: uuid.New()}
}

func (f transferFixture) transfer(t *testing.T, qty string) *StockTransfer {
	t.Helper()
	tr, err := NewStockTransfer(f.companyID, "TRF-20260301-0001", f.source.ID, f.dest.ID,
		[]TransferLine{{ProductID: f.product, ProductName: "Beras 5kg", Quantity: dec(qty)}}, uuid.New(), "")
	require.NoError(t, err)
	return tr
}

func TestNewStockTransfer_SubmitsImmediately(t *testing.T) {
	f := newFixture(t)
	tr := f.transfer(t, "10")

	assert.Equal(t, TransferPending, tr.Status)
	assert.NotNil(t, tr.SubmittedAt)
	require.Len(t, tr.Items, 1)
	assert.Equal(t, tr.ID, tr.Items[0].TransferID)

	events := tr.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeStockTransferSubmitted, events[0].EventType())
}

func TestNewStockTransfer_SameWarehouseRejectedUpFront(t *testing.T) {
	f := newFixture(t)
	tr, err := NewStockTransfer(f.companyID, "TRF-1", f.source.ID, f.source.ID,
		[]TransferLine{{ProductID: f.product, Quantity: dec("10")}}, uuid.New(), "")

	assert.Nil(t, tr)
	assertCode(t, err, "SAME_WAREHOUSE")
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestNewStockTransfer_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name  string
		lines []TransferLine
		code  string
	}{
		{"no items", nil, "EMPTY_TRANSFER"},
		{"zero quantity", []TransferLine{{ProductID: f.product, Quantity: decimal.Zero}}, "INVALID_QUANTITY"},
		{"no product", []TransferLine{{Quantity: dec("1")}}, "INVALID_PRODUCT"},
		{"duplicate", []TransferLine{
			{ProductID: f.product, Quantity: dec("1")},
			{ProductID: f.product, Quantity: dec("2")},
		}, "DUPLICATE_PRODUCT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStockTransfer(f.companyID, "TRF-1", f.source.ID, f.dest.ID, tt.lines, uuid.New(), "")
			assertCode(t, err, tt.code)
		})
	}
}

func TestStockTransfer_ApproveAndComplete(t *testing.T) {
	f := newFixture(t)
	tr := f.transfer(t, "10")

	require.NoError(t, tr.Approve(f.pic, f.dest))
	assert.Equal(t, TransferApproved, tr.Status)

	movements, err := tr.Movements()
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, MovementTransferOut, movements[0].Type)
	assert.Equal(t, f.source.ID, movements[0].WarehouseID)
	assert.Equal(t, MovementTransferIn, movements[1].Type)
	assert.Equal(t, f.dest.ID, movements[1].WarehouseID)

	levels := map[LevelKey]decimal.Decimal{
		{WarehouseID: f.source.ID, ProductID: f.product}: dec("50"),
		{WarehouseID: f.dest.ID, ProductID: f.product}:   decimal.Zero,
	}
	before := dec("50")
	for k, delta := range NetChanges(movements) {
		levels[k] = levels[k].Add(delta)
	}
	assert.True(t, levels[LevelKey{WarehouseID: f.source.ID, ProductID: f.product}].Equal(dec("40")))
	assert.True(t, levels[LevelKey{WarehouseID: f.dest.ID, ProductID: f.product}].Equal(dec("10")))
	total := decimal.Zero
	for _, q := range levels {
		total = total.Add(q)
	}
	assert.True(t, total.Equal(before))

	require.NoError(t, tr.Complete())
	assert.Equal(t, TransferCompleted, tr.Status)
	assert.True(t, tr.IsTerminal())
}

func TestStockTransfer_OnlyDestinationPICDecides(t *testing.T) {
	f := newFixture(t)
	tr := f.transfer(t, "10")

	err := tr.Approve(uuid.New(), f.dest)
	assertCode(t, err, "NOT_DESTINATION_PIC")
	assert.Equal(t, TransferPending, tr.Status)

	err = tr.Approve(f.pic, f.source)
	assertCode(t, err, "INVALID_WAREHOUSE")

	err = tr.Reject(uuid.New(), f.dest, "no space")
	assertCode(t, err, "NOT_DESTINATION_PIC")
	assert.Equal(t, TransferPending, tr.Status)
}

func TestStockTransfer_RejectIsTerminal(t *testing.T) {
	f := newFixture(t)
	tr := f.transfer(t, "10")

	require.NoError(t, tr.Reject(f.pic, f.dest, "no space"))
	assert.Equal(t, TransferRejected, tr.Status)
	assert.Equal(t, "no space", tr.RejectReason)
	assert.True(t, tr.IsTerminal())

	_, err := tr.Movements()
	assertCode(t, err, "TRANSFER_NOT_APPROVED")
	assertCode(t, tr.Approve(f.pic, f.dest), shared.CodeInvalidTransition)
	assertCode(t, tr.Complete(), shared.CodeInvalidTransition)
}

func TestTransferMachine(t *testing.T) {
	tests := []struct {
		from  TransferStatus
		event TransferEvent
		to    TransferStatus
		ok    bool
	}{
		{TransferDraft, EventSubmit, TransferPending, true},
		{TransferPending, EventApprove, TransferApproved, true},
		{TransferPending, EventReject, TransferRejected, true},
		{TransferApproved, EventComplete, TransferCompleted, true},
		{TransferDraft, EventApprove, TransferDraft, false},
		{TransferPending, EventComplete, TransferPending, false},
		{TransferApproved, EventReject, TransferApproved, false},
		{TransferCompleted, EventSubmit, TransferCompleted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			next, err := TransferMachine.Transition(tt.from, tt.event)
			assert.Equal(t, tt.to, next)
			assert.Equal(t, tt.ok, err == nil)
		})
	}
}
