package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// SQLLogger writes GORM statements to zap. Each statement is tagged with its
// verb and target table plus the tenant, request and trace of the context it
// ran under, so a slow ledger write can be tied to the call that issued it.
type SQLLogger struct {
	log          *zap.Logger
	level        gormlogger.LogLevel
	slow         time.Duration
	keepNotFound bool
}

// SQLLoggerOption configures an SQLLogger
type SQLLoggerOption func(*SQLLogger)

// WithSlowThreshold sets the duration above which a statement logs at warn.
// Zero disables slow statement reporting.
func WithSlowThreshold(threshold time.Duration) SQLLoggerOption {
	return func(l *SQLLogger) {
		l.slow = threshold
	}
}

// WithRecordNotFound logs lookups that found no row as errors
func WithRecordNotFound() SQLLoggerOption {
	return func(l *SQLLogger) {
		l.keepNotFound = true
	}
}

func NewSQLLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...SQLLoggerOption) *SQLLogger {
	l := &SQLLogger{
		log:   base.Named("sql"),
		level: level,
		slow:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *SQLLogger) message(ctx context.Context, at gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < at {
		return
	}
	if ce := l.log.Check(lvl, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write(scopeFields(ctx)...)
	}
}

// Trace is called by GORM once per statement
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var lvl zapcore.Level
	var msg string
	switch {
	case err != nil && l.level >= gormlogger.Error:
		if !l.keepNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		lvl, msg = zapcore.ErrorLevel, "statement failed"
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		lvl, msg = zapcore.WarnLevel, "slow statement"
	case l.level >= gormlogger.Info:
		lvl, msg = zapcore.DebugLevel, "statement"
	default:
		return
	}

	ce := l.log.Check(lvl, msg)
	if ce == nil {
		return
	}
	sql, rows := fc()
	verb, table := describeStatement(sql)
	fields := append(scopeFields(ctx),
		zap.String("verb", verb),
		zap.String("table", table),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
	)
	if lvl == zapcore.WarnLevel {
		fields = append(fields, zap.Duration("threshold", l.slow))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// scopeFields carries the tenant, request and trace of ctx
func scopeFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 8)
	if companyID, ok := GetCompanyID(ctx); ok {
		fields = append(fields, zap.String("company_id", companyID.String()))
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	return fields
}

// describeStatement returns the lower-cased verb of sql and the first table
// it names. Either is empty when it cannot be read off the statement.
func describeStatement(sql string) (verb, table string) {
	words := strings.Fields(sql)
	if len(words) == 0 {
		return "", ""
	}
	verb = strings.ToLower(words[0])

	var after string
	switch verb {
	case "select", "delete":
		after = "from"
	case "insert":
		after = "into"
	case "update":
		after = "update"
	default:
		return verb, ""
	}
	for i := 0; i < len(words)-1; i++ {
		if strings.EqualFold(words[i], after) {
			return verb, strings.Trim(words[i+1], "\"`(")
		}
	}
	return verb, ""
}

// SQLLogLevel maps the application log level onto GORM's levels
func SQLLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
