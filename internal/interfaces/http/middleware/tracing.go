// Package middleware provides the HTTP middleware of the accounting API.
package middleware

import (
	"net/http"

	"github.com/erp/accounting/internal/infrastructure/logger"
	"github.com/erp/accounting/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "erp-accounting",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig opens one server span per request. Span names follow
// the route pattern, e.g. "POST /api/v1/journal-entries/:id/reverse".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanAttributes tags the request span with the request and company ids and
// marks it failed on a 5xx. It must run after Tracing and CompanyScope.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if requestID := c.GetString(logger.GinRequestIDKey); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if companyID, ok := GetCompanyID(c); ok {
			span.SetAttributes(telemetry.AttrCompanyID.String(companyID.String()))
		}

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		if code, ok := c.Get(errorCodeKey); ok {
			if s, ok := code.(string); ok {
				span.SetAttributes(telemetry.AttrErrorCode.String(s))
			}
		}
	}
}

// errorCodeKey holds the domain error code a handler responded with
const errorCodeKey = "error_code"

// SetErrorCode records the error code of the response for tracing and metrics
func SetErrorCode(c *gin.Context, code string) {
	c.Set(errorCodeKey, code)
}
