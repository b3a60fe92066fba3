package daemon

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"subburn/internal/metrics"
)

// uploadLimiter throttles uploads per client IP. A nil limiter allows all.
type uploadLimiter struct {
	limiter *limiter.Limiter
	metrics *metrics.Metrics
}

func newUploadLimiter(rate string, m *metrics.Metrics) (*uploadLimiter, error) {
	rate = strings.TrimSpace(rate)
	if rate == "" {
		return nil, nil
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("upload rate %q: %w", rate, err)
	}
	return &uploadLimiter{
		limiter: limiter.New(memory.NewStore(), parsed),
		metrics: m,
	}, nil
}

func (u *uploadLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u == nil {
			c.Next()
			return
		}
		result, err := u.limiter.Get(c.Request.Context(), "upload:"+c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))
		if result.Reached {
			retry := time.Until(time.Unix(result.Reset, 0))
			if retry < time.Second {
				retry = time.Second
			}
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())))
			u.metrics.RateLimited(c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many uploads, try again later"})
			return
		}
		c.Next()
	}
}
