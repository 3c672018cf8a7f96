package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niwaya/kintai-backend/internal/handler/http/response"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewLoginLimiter builds an in-memory limiter from a formatted rate such as "10-M".
func NewLoginLimiter(rate string) (*limiter.Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), parsed, limiter.WithTrustForwardHeader(true)), nil
}

// RateLimit rejects callers whose IP has used up the limiter's budget.
func RateLimit(limiterInstance *limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := limiterInstance.GetIPKey(r)

			context, err := limiterInstance.Get(r.Context(), ip)
			if err != nil {
				slog.Error("Failed to get rate limit context", slog.String("ip", ip), slog.String("error", err.Error()))
				response.InternalServerError(w, "Internal server error during rate limit check")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(context.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(context.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(context.Reset, 10))

			if context.Reached {
				slog.Warn("Rate limit exceeded", slog.String("ip", ip), slog.Int64("limit", context.Limit))
				response.TooManyRequests(w, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
