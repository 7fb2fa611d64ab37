package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/erp/accounting/internal/infrastructure/config"
	"github.com/erp/accounting/internal/infrastructure/logger"
	"github.com/erp/accounting/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const rateLimitPrefix = "erp:ratelimit"

// NewRateLimiter builds the write-endpoint limiter. A redis client shares
// the counters across replicas; without one they live in process memory.
func NewRateLimiter(cfg config.HTTPConfig, client *redis.Client) (*limiter.Limiter, error) {
	rate := limiter.Rate{Period: cfg.RateLimitWindow, Limit: cfg.RateLimitRequests}
	if rate.Limit <= 0 || rate.Period <= 0 {
		return nil, fmt.Errorf("invalid rate limit %d per %s", rate.Limit, rate.Period)
	}

	if client == nil {
		return limiter.New(memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix}), rate), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
	if err != nil {
		return nil, fmt.Errorf("rate limit store: %w", err)
	}
	return limiter.New(store, rate), nil
}

// RateLimitKey buckets a request by company and client address
func RateLimitKey(c *gin.Context) string {
	key := c.ClientIP()
	if companyID, ok := GetCompanyID(c); ok {
		key = companyID.String() + ":" + key
	}
	return key
}

// RateLimit rejects requests once the caller's bucket is spent. Store
// failures let the request through so a redis outage does not stop posting.
func RateLimit(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := RateLimitKey(c)
		ctx, err := l.Get(c.Request.Context(), key)
		if err != nil {
			logger.GetGinLogger(c).Warn("Rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			logger.GetGinLogger(c).Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int64("limit", ctx.Limit),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				c.GetString(logger.GinRequestIDKey),
			))
			return
		}

		c.Next()
	}
}
