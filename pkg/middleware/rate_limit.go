package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "classbook/pkg/errors"
	"classbook/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const RequesterEmailHeader = "X-Requester-Email"

type KeyExtractor func(r *http.Request) string

// RequesterRateLimiter gives every requester its own token bucket of limit
// requests per window. Idle buckets are evicted after two windows.
type RequesterRateLimiter struct {
	mu        sync.Mutex
	limiters  *cache.Cache
	limit     rate.Limit
	burst     int
	extractor KeyExtractor
	log       *logger.Logger
}

func NewRequesterRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *RequesterRateLimiter {
	if extractor == nil {
		extractor = DefaultRequesterExtractor
	}
	return &RequesterRateLimiter{
		limiters:  cache.New(2*window, window),
		limit:     rate.Every(window / time.Duration(limit)),
		burst:     limit,
		extractor: extractor,
		log:       log,
	}
}

func (rl *RequesterRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	rl.mu.Lock()
	var limiter *rate.Limiter
	if v, ok := rl.limiters.Get(key); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
	}
	rl.limiters.SetDefault(key, limiter)
	rl.mu.Unlock()

	return limiter.Allow()
}

func (rl *RequesterRateLimiter) Stop() {
	rl.limiters.Flush()
}

func RequesterRateLimit(limiter *RequesterRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extractor(r)

			if !limiter.Allow(key) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"requester", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", "1")
				reject(w, r, limiter.log, apperrors.RateLimited("Rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultRequesterExtractor keys on the requester email header, falling back
// to the client address.
func DefaultRequesterExtractor(r *http.Request) string {
	if email := strings.ToLower(strings.TrimSpace(r.Header.Get(RequesterEmailHeader))); email != "" {
		return "email:" + email
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
