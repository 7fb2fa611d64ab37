package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/erp/accounting/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sampleRow struct {
	ID   uint `gorm:"primaryKey"`
	Code string
}

func openSampleDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&sampleRow{}))
	return db
}

func TestInstrumentDB_RecordsQueries(t *testing.T) {
	db := openSampleDB(t)
	mp, reader := newTestMeter(t)

	_, err := InstrumentDB(db, config.TelemetryConfig{}, mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, db.Create(&sampleRow{Code: "1-1000"}).Error)
	var row sampleRow
	require.NoError(t, db.First(&row, "code = ?", "1-1000").Error)
	assert.Error(t, db.Exec("SELECT * FROM missing_table").Error)

	metrics := collect(t, reader)

	hist, ok := metrics["db_query_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	ops := map[string]uint64{}
	for _, dp := range hist.DataPoints {
		v, _ := dp.Attributes.Value(AttrDBOperation)
		ops[v.AsString()] += dp.Count
	}
	assert.Equal(t, uint64(1), ops["create"])
	assert.Equal(t, uint64(1), ops["select"])
	assert.Equal(t, uint64(1), ops["raw"])

	assert.Equal(t, map[string]int64{"raw": 1}, sumByAttr(t, metrics["db_query_errors_total"], string(AttrDBOperation)))

	gauge, ok := metrics["db_pool_connections"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	states := map[string]int64{}
	for _, dp := range gauge.DataPoints {
		v, _ := dp.Attributes.Value(AttrDBState)
		states[v.AsString()] = dp.Value
	}
	assert.Equal(t, int64(1), states["max"])
}

func TestInstrumentDB_NotFoundIsNotAnError(t *testing.T) {
	db := openSampleDB(t)
	mp, reader := newTestMeter(t)
	_, err := InstrumentDB(db, config.TelemetryConfig{}, mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)

	var row sampleRow
	assert.ErrorIs(t, db.First(&row, "code = ?", "none").Error, gorm.ErrRecordNotFound)

	_, present := collect(t, reader)["db_query_errors_total"]
	assert.False(t, present)
}

func TestDBObserver_MarksSlowQueriesOnSpan(t *testing.T) {
	db := openSampleDB(t)
	mp, _ := newTestMeter(t)
	recorder := recordSpans(t)

	obs, err := InstrumentDB(db, config.TelemetryConfig{DBSlowQueryThresh: time.Nanosecond}, mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, time.Nanosecond, obs.slowThreshold)

	ctx, span := StartSpan(context.Background(), "repo.save")
	require.NoError(t, db.WithContext(ctx).Create(&sampleRow{Code: "2-1000"}).Error)
	span.End()

	got := recorder.Ended()
	require.Len(t, got, 1)
	attrs := attrMap(got[0].Attributes())
	assert.Equal(t, "true", attrs["db.slow_query"])
	assert.Equal(t, "1", attrs["db.rows_affected"])
	assert.Equal(t, "sample_rows", attrs["db.sql.table"])
}

func TestNewDBObserver_DefaultThreshold(t *testing.T) {
	mp, _ := newTestMeter(t)
	obs, err := newDBObserver(mp.Meter("test"), 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, defaultSlowQueryThreshold, obs.slowThreshold)
}
