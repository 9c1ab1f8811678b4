package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewLimiter builds a limiter for a formatted rate such as "300-M". With an empty
// redisAddr the counters live in process memory, otherwise they are shared through Redis.
func NewLimiter(formatted, redisAddr string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}

	if redisAddr == "" {
		return limiter.New(memory.NewStore(), rate), nil
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "ft_limiter"})
	if err != nil {
		return nil, fmt.Errorf("creating redis limiter store: %w", err)
	}
	return limiter.New(store, rate), nil
}

// RateLimit creates a Gin middleware for rate limiting requests per client IP.
func RateLimit(limiterInstance *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		logger := GetLoggerFromCtx(c.Request.Context())

		lctx, err := limiterInstance.Get(c.Request.Context(), ip)
		if err != nil {
			logger.Error("Failed to get rate limit context", slog.String("ip", ip), slog.String("error", err.Error()))
			body, status := dto.Failure(err)
			c.AbortWithStatusJSON(status, body)
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprint(lctx.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprint(lctx.Remaining))

		if lctx.Reached {
			logger.Warn("Rate limit exceeded", slog.String("ip", ip), slog.Int64("limit", lctx.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.Result{
				ErrorKind: apperrors.KindRateLimited,
				Message:   "Too many requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
