package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/erp/accounting/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSlowQueryThreshold = 200 * time.Millisecond
	queryStartKey             = "telemetry:query_start"
)

// DBObserver annotates GORM statements: span attributes, slow-query marks
// and the query duration and error instruments.
type DBObserver struct {
	slowThreshold time.Duration
	logger        *zap.Logger

	duration *Histogram
	errors   *Counter
}

// InstrumentDB installs the otelgorm plugin (when DB tracing is on), the
// statement observer and the connection pool gauges on db.
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, meter metric.Meter, logger *zap.Logger) (*DBObserver, error) {
	if cfg.DBTraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
		if !cfg.DBLogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, err
		}
	}

	obs, err := newDBObserver(meter, cfg.DBSlowQueryThresh, logger)
	if err != nil {
		return nil, err
	}
	if err := obs.register(db); err != nil {
		return nil, err
	}
	if err := registerPoolGauges(db, meter); err != nil {
		return nil, err
	}

	logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", cfg.DBTraceEnabled),
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", obs.slowThreshold),
	)
	return obs, nil
}

func newDBObserver(meter metric.Meter, slow time.Duration, logger *zap.Logger) (*DBObserver, error) {
	if slow <= 0 {
		slow = defaultSlowQueryThreshold
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query duration",
		Unit:        "s",
		Buckets:     DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	errCounter, err := NewCounter(meter, "db_query_errors_total", "Failed database queries", "{query}")
	if err != nil {
		return nil, err
	}
	return &DBObserver{slowThreshold: slow, logger: logger, duration: duration, errors: errCounter}, nil
}

func (o *DBObserver) register(db *gorm.DB) error {
	cb := db.Callback()
	steps := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("telemetry:before_create", o.before) },
		func() error { return cb.Query().Before("gorm:query").Register("telemetry:before_query", o.before) },
		func() error { return cb.Update().Before("gorm:update").Register("telemetry:before_update", o.before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", o.before) },
		func() error { return cb.Row().Before("gorm:row").Register("telemetry:before_row", o.before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", o.before) },

		func() error { return cb.Create().After("gorm:create").Register("telemetry:after_create", o.after("create")) },
		func() error { return cb.Query().After("gorm:query").Register("telemetry:after_query", o.after("select")) },
		func() error { return cb.Update().After("gorm:update").Register("telemetry:after_update", o.after("update")) },
		func() error { return cb.Delete().After("gorm:delete").Register("telemetry:after_delete", o.after("delete")) },
		func() error { return cb.Row().After("gorm:row").Register("telemetry:after_row", o.after("row")) },
		func() error { return cb.Raw().After("gorm:raw").Register("telemetry:after_raw", o.after("raw")) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (o *DBObserver) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (o *DBObserver) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		failed := db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound)

		attrs := []attribute.KeyValue{AttrDBOperation.String(operation), AttrDBTable.String(db.Statement.Table)}
		if failed {
			o.errors.Inc(ctx, attrs...)
		}

		var elapsed time.Duration
		if v, ok := db.InstanceGet(queryStartKey); ok {
			if start, ok := v.(time.Time); ok {
				elapsed = time.Since(start)
				o.duration.RecordDuration(ctx, elapsed, attrs...)
			}
		}

		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if failed {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
		if elapsed > o.slowThreshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", o.slowThreshold.Milliseconds()),
			))
		}
	}
}

// registerPoolGauges reports sql.DB pool statistics on every collection
func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Database pool connections by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(connections, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(connections, int64(stats.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, connections, waits)
	return err
}
