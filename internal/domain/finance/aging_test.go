package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketFor_Boundaries(t *testing.T) {
	tests := []struct {
		days int
		want AgingBucket
	}{
		{-5, BucketCurrent},
		{0, BucketCurrent},
		{1, Bucket1To30},
		{30, Bucket1To30},
		{31, Bucket31To60},
		{60, Bucket31To60},
		{61, Bucket61To90},
		{90, Bucket61To90},
		{91, BucketOver90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.days), "days %d", tt.days)
	}
}

func TestDaysPast_CalendarDays(t *testing.T) {
	due := day(2026, 6, 1)
	assert.Equal(t, 0, DaysPast(due, time.Date(2026, 6, 1, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 31, DaysPast(due, day(2026, 7, 2)))
	assert.Equal(t, -1, DaysPast(due, day(2026, 5, 31)))
}

func TestComputeAging(t *testing.T) {
	companyID := uuid.New()
	asOf := day(2026, 7, 2)

	dueToday := issuedDocument(t, companyID, KindInvoice, "100", asOf)
	past31 := issuedDocument(t, companyID, KindInvoice, "200", asOf.AddDate(0, 0, -31))
	past120 := issuedDocument(t, companyID, KindInvoice, "300", asOf.AddDate(0, 0, -120))
	paid := issuedDocument(t, companyID, KindInvoice, "50", asOf.AddDate(0, 0, -10))
	require.NoError(t, paid.ApplyAllocation(uuid.New(), dec("50")))
	cancelled := issuedDocument(t, companyID, KindInvoice, "70", asOf.AddDate(0, 0, -10))
	require.NoError(t, cancelled.Cancel("void"))
	bill := issuedDocument(t, companyID, KindBill, "999", asOf.AddDate(0, 0, -10))

	docs := []Document{*dueToday, *past31, *past120, *paid, *cancelled, *bill}
	report := ComputeAging(docs, asOf, AgingOptions{Kind: KindInvoice})

	assert.Equal(t, 1, report.Buckets[BucketCurrent].Count)
	assert.True(t, report.Buckets[BucketCurrent].Amount.Equal(dec("100")))
	assert.Equal(t, 0, report.Buckets[Bucket1To30].Count)
	assert.Equal(t, 1, report.Buckets[Bucket31To60].Count)
	assert.True(t, report.Buckets[Bucket31To60].Amount.Equal(dec("200")))
	assert.Equal(t, 1, report.Buckets[BucketOver90].Count)
	assert.Equal(t, 3, report.Count)
	assert.True(t, report.Total.Equal(dec("600")))
	assert.Equal(t, "31-60", report.Buckets[Bucket31To60].Label)
}

func TestComputeAging_ByParty(t *testing.T) {
	companyID := uuid.New()
	asOf := day(2026, 7, 2)
	a := issuedDocument(t, companyID, KindBill, "100", asOf.AddDate(0, 0, -5))
	b := issuedDocument(t, companyID, KindBill, "400", asOf.AddDate(0, 0, -65))
	b.PartyID = a.PartyID
	c := issuedDocument(t, companyID, KindBill, "50", asOf)

	report := ComputeAging([]Document{*a, *b, *c}, asOf, AgingOptions{Kind: KindBill, ByParty: true})
	require.Len(t, report.Parties, 2)
	assert.Equal(t, a.PartyID, report.Parties[0].PartyID)
	assert.True(t, report.Parties[0].Total.Equal(dec("500")))
	assert.Equal(t, 1, report.Parties[0].Buckets[Bucket61To90].Count)

	only := ComputeAging([]Document{*a, *b, *c}, asOf, AgingOptions{Kind: KindBill, PartyID: &c.PartyID})
	assert.Equal(t, 1, only.Count)
}
