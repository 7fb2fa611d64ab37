package finance

import (
	"math/rand"
	"testing"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIncoming(t *testing.T, companyID, partyID uuid.UUID, amount string) *Payment {
	t.Helper()
	p, err := NewPayment(companyID, "PAY-1", PaymentIncoming, partyID, uuid.New(), dec(amount), day(2026, 6, 10))
	require.NoError(t, err)
	return p
}

func TestNewPayment_Validation(t *testing.T) {
	companyID := uuid.New()
	_, err := NewPayment(companyID, "PAY-1", PaymentIncoming, uuid.New(), uuid.New(), dec("0"), time.Now())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	_, err = NewPayment(companyID, "PAY-1", "barter", uuid.New(), uuid.New(), dec("1"), time.Now())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	_, err = NewPayment(companyID, "PAY-1", PaymentIncoming, uuid.New(), uuid.Nil, dec("1"), time.Now())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	_, err = NewPayment(companyID, "PAY-1", PaymentIncoming, uuid.New(), uuid.New(), dec("1.001"), time.Now())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestPayment_AllocateAcrossDocuments(t *testing.T) {
	companyID := uuid.New()
	a := issuedDocument(t, companyID, KindInvoice, "300", day(2026, 6, 1))
	b := issuedDocument(t, companyID, KindInvoice, "500", day(2026, 6, 5))
	p := newIncoming(t, companyID, uuid.Nil, "700")

	err := p.Allocate(map[uuid.UUID]*Document{a.ID: a, b.ID: b}, []AllocationTarget{
		{DocumentID: a.ID, Amount: dec("300")},
		{DocumentID: b.ID, Amount: dec("350")},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, a.Status)
	assert.Equal(t, StatusPartial, b.Status)
	assert.True(t, b.OutstandingAmount.Equal(dec("150")))
	assert.True(t, p.Allocated().Equal(dec("650")))
	assert.True(t, p.Unallocated().Equal(dec("50")))
	assert.Len(t, p.Allocations, 2)
}

func TestPayment_AllocateIsAllOrNothing(t *testing.T) {
	companyID := uuid.New()
	a := issuedDocument(t, companyID, KindInvoice, "300", day(2026, 6, 1))
	b := issuedDocument(t, companyID, KindInvoice, "100", day(2026, 6, 5))
	docs := map[uuid.UUID]*Document{a.ID: a, b.ID: b}

	tests := []struct {
		name    string
		payment string
		targets []AllocationTarget
	}{
		{"second target exceeds outstanding", "1000", []AllocationTarget{{a.ID, dec("300")}, {b.ID, dec("100.01")}}},
		{"repeated target exceeds outstanding", "1000", []AllocationTarget{{b.ID, dec("60")}, {b.ID, dec("60")}}},
		{"targets exceed payment", "350", []AllocationTarget{{a.ID, dec("300")}, {b.ID, dec("100")}}},
		{"non-positive amount", "350", []AllocationTarget{{a.ID, dec("0")}}},
		{"unknown document", "350", []AllocationTarget{{uuid.New(), dec("10")}}},
		{"no targets", "350", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newIncoming(t, companyID, uuid.Nil, tt.payment)
			err := p.Allocate(docs, tt.targets)
			assert.Equal(t, shared.KindValidation, shared.KindOf(err))
			assert.True(t, a.PaidAmount.IsZero())
			assert.True(t, b.PaidAmount.IsZero())
			assert.Empty(t, p.Allocations)
		})
	}
}

func TestPayment_KindAndPartyMustMatch(t *testing.T) {
	companyID := uuid.New()
	bill := issuedDocument(t, companyID, KindBill, "100", day(2026, 6, 1))
	p := newIncoming(t, companyID, uuid.Nil, "100")
	err := p.Allocate(map[uuid.UUID]*Document{bill.ID: bill}, []AllocationTarget{{bill.ID, dec("100")}})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	inv := issuedDocument(t, companyID, KindInvoice, "100", day(2026, 6, 1))
	p = newIncoming(t, companyID, uuid.New(), "100")
	err = p.Allocate(map[uuid.UUID]*Document{inv.ID: inv}, []AllocationTarget{{inv.ID, dec("100")}})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestAllocationSequence_OutstandingNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	companyID := uuid.New()

	for run := 0; run < 50; run++ {
		doc := issuedDocument(t, companyID, KindInvoice, "1000000", day(2026, 6, 1))
		for step := 0; step < 20; step++ {
			cents := rng.Int63n(40000000) + 1
			amount := decimal.New(cents, -2)
			p := newIncoming(t, companyID, uuid.Nil, amount.String())
			_ = p.Allocate(map[uuid.UUID]*Document{doc.ID: doc}, []AllocationTarget{{doc.ID, amount}})

			assert.False(t, doc.OutstandingAmount.IsNegative())
			assert.True(t, doc.PaidAmount.Add(doc.OutstandingAmount).Equal(doc.TotalAmount))
			require.NoError(t, doc.CheckBalance())
		}
	}
}

func TestPlanFIFO(t *testing.T) {
	companyID := uuid.New()
	later := issuedDocument(t, companyID, KindInvoice, "500", day(2026, 7, 1))
	older := issuedDocument(t, companyID, KindInvoice, "300", day(2026, 6, 1))
	paid := issuedDocument(t, companyID, KindInvoice, "100", day(2026, 5, 1))
	require.NoError(t, paid.ApplyAllocation(uuid.New(), dec("100")))

	targets := PlanFIFO(dec("600"), []*Document{later, older, paid})
	require.Len(t, targets, 2)
	assert.Equal(t, older.ID, targets[0].DocumentID)
	assert.True(t, targets[0].Amount.Equal(dec("300")))
	assert.Equal(t, later.ID, targets[1].DocumentID)
	assert.True(t, targets[1].Amount.Equal(dec("300")))

	assert.Empty(t, PlanFIFO(dec("0"), []*Document{later}))
}
