package middleware

import (
	"errors"
	"strconv"

	"joingo/internal/core"
	"joingo/internal/database/redis/repository"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/pkg/response"
	"joingo/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RateLimit struct {
	logger                *zap.Logger
	trace                 *telemetry.Trace
	metric                *telemetry.Metric
	rateLimiterRepository *repository.RateLimiterRepository
}

func NewRateLimit(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	rateLimiterRepository *repository.RateLimiterRepository,
) *RateLimit {
	return &RateLimit{
		logger:                logger,
		trace:                 trace,
		metric:                metric,
		rateLimiterRepository: rateLimiterRepository,
	}
}

// ByClientIP 以來源 IP 計數，用於未登入的端點
func (middleware *RateLimit) ByClientIP(scope string, limit int, windowSec int64) gin.HandlerFunc {
	return middleware.guard(scope, limit, windowSec, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// ByUser 以 uid 計數，必須掛在 Auth 之後
func (middleware *RateLimit) ByUser(scope string, limit int, windowSec int64) gin.HandlerFunc {
	return middleware.guard(scope, limit, windowSec, func(c *gin.Context) string {
		return c.GetString(core.ContextUIDKey)
	})
}

// guard limit 或 window 未設定時不限流；Redis 錯誤時放行
func (middleware *RateLimit) guard(scope string, limit int, windowSec int64, subjectOf func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := subjectOf(c)
		if limit <= 0 || windowSec <= 0 || subject == "" {
			c.Next()
			return
		}

		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRateLimitMiddleware))
		meta := core.TraceRateLimitMiddlewareMeta{
			Scope:       scope,
			Subject:     subject,
			ConfigLimit: limit,
		}

		remaining, ttlSec, err := middleware.rateLimiterRepository.Consume(ctx, scope, subject, limit, windowSec)
		blocked := errors.Is(err, repository.ErrRateLimitExceeded)
		if err != nil && !blocked {
			meta.FailedOpen = true
			middleware.trace.ApplyTraceAttributes(span, meta)
			end(nil)
			middleware.logger.Warn("rate limiter unavailable, allowing request",
				zap.String("scope", scope),
				zap.Error(err),
			)
			c.Next()
			return
		}

		meta.Remaining, meta.TTLSeconds, meta.Blocked = remaining, ttlSec, blocked
		middleware.trace.ApplyTraceAttributes(span, meta)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if ttlSec > 0 {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(ttlSec, 10))
		}

		if blocked {
			retryAfter := ttlSec
			if retryAfter <= 0 {
				retryAfter = windowSec
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			middleware.metric.IncRateLimited(scope)
			rejected := cErr.RateLimitExceeded("Too many requests, please retry later")
			end(nil)
			response.AbortWithError(c, rejected)
			return
		}
		end(nil)
		c.Next()
	}
}
