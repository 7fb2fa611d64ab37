package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/accounting/internal/infrastructure/logger"
	"github.com/erp/accounting/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Request headers understood by the API
const (
	CompanyIDHeader      = "X-Company-ID"
	IdempotencyKeyHeader = "Idempotency-Key"
)

// CompanyScopeConfig configures the company middleware
type CompanyScopeConfig struct {
	// SkipPaths are served without a company, e.g. health checks
	SkipPaths []string
}

// DefaultCompanyScopeConfig skips the health endpoints
func DefaultCompanyScopeConfig() CompanyScopeConfig {
	return CompanyScopeConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health", "/api/v1/system"},
	}
}

// CompanyScope resolves the company a request acts for from X-Company-ID.
// Every repository query downstream is filtered by this id, so a request
// without one never reaches a handler.
func CompanyScope(cfg CompanyScopeConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		raw := strings.TrimSpace(c.GetHeader(CompanyIDHeader))
		if raw == "" {
			abortCompany(c, dto.ErrCodeCompanyMissing, "X-Company-ID header is required")
			return
		}
		companyID, err := uuid.Parse(raw)
		if err != nil || companyID == uuid.Nil {
			abortCompany(c, dto.ErrCodeCompanyInvalid, "X-Company-ID must be a UUID")
			return
		}

		c.Set(logger.GinCompanyIDKey, companyID)
		ctx, reqLogger := logger.WithCompanyID(c.Request.Context(), logger.GetGinLogger(c), companyID)
		c.Set(logger.GinLoggerKey, reqLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortCompany(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		code, message, c.GetString(logger.GinRequestIDKey),
	))
}

// GetCompanyID returns the company resolved by CompanyScope
func GetCompanyID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(logger.GinCompanyIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
