package telemetry

import (
	"context"

	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/pos"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PostingMetrics records journal posting outcomes and cash session closing
// differences. It satisfies the posting observer of the ledger poster and the
// variance observer of the cash session service.
type PostingMetrics struct {
	posted   *Counter
	rejected *Counter
	amount   *Histogram
	closed   *Counter
	variance *Histogram
}

// NewPostingMetrics creates the posting instruments on meter
func NewPostingMetrics(meter metric.Meter) (*PostingMetrics, error) {
	posted, err := NewCounter(meter, "journal_entries_posted_total", "Journal entries posted", "{entry}")
	if err != nil {
		return nil, err
	}
	rejected, err := NewCounter(meter, "journal_postings_rejected_total", "Posting attempts rejected", "{attempt}")
	if err != nil {
		return nil, err
	}
	amount, err := NewHistogram(meter, HistogramOpts{
		Name:        "journal_entry_amount",
		Description: "Total debit of posted journal entries",
		Unit:        "{currency}",
		Buckets:     AmountBuckets,
	})
	if err != nil {
		return nil, err
	}
	closed, err := NewCounter(meter, "cash_sessions_closed_total", "Cash sessions closed by variance class", "{session}")
	if err != nil {
		return nil, err
	}
	variance, err := NewHistogram(meter, HistogramOpts{
		Name:        "cash_session_variance",
		Description: "Absolute closing difference of cash sessions",
		Unit:        "{currency}",
		Buckets:     AmountBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &PostingMetrics{posted: posted, rejected: rejected, amount: amount, closed: closed, variance: variance}, nil
}

// EntryPosted records a posted entry and its total debit
func (m *PostingMetrics) EntryPosted(ctx context.Context, refType ledger.ReferenceType, amount decimal.Decimal) {
	attr := AttrReferenceType.String(string(refType))
	m.posted.Inc(ctx, attr)
	m.amount.Record(ctx, amount.InexactFloat64(), attr)
}

// PostingRejected records a rejected posting by error code
func (m *PostingMetrics) PostingRejected(ctx context.Context, refType ledger.ReferenceType, code string) {
	m.rejected.Inc(ctx, AttrReferenceType.String(string(refType)), AttrErrorCode.String(code))
}

// SessionClosed records the variance class and size of a closed session
func (m *PostingMetrics) SessionClosed(ctx context.Context, companyID uuid.UUID, variance pos.VarianceClass, difference decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrCompanyID.String(companyID.String()), AttrVariance.String(string(variance))}
	m.closed.Inc(ctx, attrs...)
	m.variance.Record(ctx, difference.Abs().InexactFloat64(), attrs...)
}

// OutboxCounter counts outbox entries by status
type OutboxCounter interface {
	CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error)
}

// RegisterOutboxGauge reports the outbox backlog by status on every
// collection. Statuses without rows report zero.
func RegisterOutboxGauge(meter metric.Meter, repo OutboxCounter) error {
	gauge, err := meter.Int64ObservableGauge("outbox_entries",
		metric.WithDescription("Outbox entries by status"),
		metric.WithUnit("{entry}"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		counts, err := repo.CountByStatus(ctx)
		if err != nil {
			return err
		}
		for _, status := range []shared.OutboxStatus{
			shared.OutboxStatusPending,
			shared.OutboxStatusProcessing,
			shared.OutboxStatusSent,
			shared.OutboxStatusFailed,
			shared.OutboxStatusDead,
		} {
			o.ObserveInt64(gauge, counts[status], metric.WithAttributes(AttrOutboxStatus.String(string(status))))
		}
		return nil
	}, gauge)
	return err
}
