package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func sumByAttr(t *testing.T, m metricdata.Metrics, key string) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(key))
		out[v.Emit()] += dp.Value
	}
	return out
}

func TestPostingMetrics_Entries(t *testing.T) {
	mp, reader := newTestMeter(t)
	m, err := NewPostingMetrics(mp.Meter("test"))
	require.NoError(t, err)
	ctx := context.Background()

	m.EntryPosted(ctx, ledger.RefSalesInvoice, decimal.NewFromInt(110_000))
	m.EntryPosted(ctx, ledger.RefSalesInvoice, decimal.NewFromInt(55_000))
	m.PostingRejected(ctx, ledger.RefSalesInvoice, "ROLE_NOT_MAPPED")

	metrics := collect(t, reader)
	assert.Equal(t, map[string]int64{"sales_invoice": 2}, sumByAttr(t, metrics["journal_entries_posted_total"], "reference_type"))
	assert.Equal(t, map[string]int64{"ROLE_NOT_MAPPED": 1}, sumByAttr(t, metrics["journal_postings_rejected_total"], "error_code"))

	hist, ok := metrics["journal_entry_amount"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, 165_000.0, hist.DataPoints[0].Sum)
}

func TestPostingMetrics_SessionClosed(t *testing.T) {
	mp, reader := newTestMeter(t)
	m, err := NewPostingMetrics(mp.Meter("test"))
	require.NoError(t, err)
	companyID := uuid.New()

	m.SessionClosed(context.Background(), companyID, pos.VarianceMinor, decimal.NewFromInt(-2_000))
	m.SessionClosed(context.Background(), companyID, pos.VarianceBalanced, decimal.Zero)

	metrics := collect(t, reader)
	assert.Equal(t, map[string]int64{"minor": 1, "balanced": 1}, sumByAttr(t, metrics["cash_sessions_closed_total"], "variance"))

	hist := metrics["cash_session_variance"].Data.(metricdata.Histogram[float64])
	var total float64
	for _, dp := range hist.DataPoints {
		total += dp.Sum
	}
	assert.Equal(t, 2_000.0, total)
}

type stubOutboxCounter struct {
	counts map[shared.OutboxStatus]int64
	err    error
}

func (s stubOutboxCounter) CountByStatus(context.Context) (map[shared.OutboxStatus]int64, error) {
	return s.counts, s.err
}

func TestRegisterOutboxGauge(t *testing.T) {
	mp, reader := newTestMeter(t)
	require.NoError(t, RegisterOutboxGauge(mp.Meter("test"), stubOutboxCounter{counts: map[shared.OutboxStatus]int64{
		shared.OutboxStatusPending: 3,
		shared.OutboxStatusDead:    1,
	}}))

	gauge, ok := collect(t, reader)["outbox_entries"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	got := make(map[string]int64)
	for _, dp := range gauge.DataPoints {
		v, _ := dp.Attributes.Value(AttrOutboxStatus)
		got[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"PENDING": 3, "PROCESSING": 0, "SENT": 0, "FAILED": 0, "DEAD": 1}, got)
}

func TestRegisterOutboxGauge_CountError(t *testing.T) {
	mp, reader := newTestMeter(t)
	require.NoError(t, RegisterOutboxGauge(mp.Meter("test"), stubOutboxCounter{err: errors.New("db down")}))

	var rm metricdata.ResourceMetrics
	assert.ErrorContains(t, reader.Collect(context.Background(), &rm), "db down")
}
