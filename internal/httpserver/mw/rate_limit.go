package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/nearby/internal/metrics"
	"github.com/MrSnakeDoc/nearby/internal/utils"
)

// RateLimitConfig configures a token bucket per client IP. Each call to
// RateLimit owns its own buckets, so search and chat are limited
// independently.
type RateLimitConfig struct {
	Name              string // metric label; defaults to "default"
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int
	SweepInterval     time.Duration
	IdleTTL           time.Duration
	TrustProxy        bool             // resolve IP from proxy headers when true
	Now               func() time.Time // for testing, defaults to time.Now
}

// limiter keeps one rate.Limiter per client. Idle clients expire from the
// cache; a full table is swept before new clients are admitted.
type limiter struct {
	cfg     RateLimitConfig
	every   rate.Limit
	mu      sync.Mutex
	clients *cache.Cache
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerIPPerMin < 1 {
		cfg.RefillPerIPPerMin = 1
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &limiter{
		cfg:     cfg,
		every:   rate.Limit(float64(cfg.RefillPerIPPerMin) / 60.0),
		clients: cache.New(cfg.IdleTTL, cfg.SweepInterval),
	}
}

func (l *limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.clients.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.clients.SetDefault(key, lim) // touch
		return lim
	}
	if l.cfg.MaxEntries > 0 && l.clients.ItemCount() >= l.cfg.MaxEntries {
		l.clients.DeleteExpired()
	}
	lim := rate.NewLimiter(l.every, l.cfg.Burst)
	l.clients.SetDefault(key, lim)
	return lim
}

func (l *limiter) allow(key string, now time.Time) (ok bool, remaining int, retryAfterSec int) {
	lim := l.get(key)
	if lim.AllowN(now, 1) {
		return true, int(math.Floor(lim.TokensAt(now))), 0
	}

	needed := 1.0 - lim.TokensAt(now)
	sec := int(math.Ceil(needed / float64(l.every)))
	if sec < 1 {
		sec = 1
	}
	return false, 0, sec
}

func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limitStr := strconv.Itoa(l.cfg.Burst)
	denied := metrics.RequestsDenied.WithLabelValues("rate_limit_" + l.cfg.Name)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := utils.ClientIP(r, l.cfg.TrustProxy)

			ok, remaining, retry := l.allow(key, l.cfg.Now())
			w.Header().Set("X-RateLimit-Limit", limitStr)
			if !ok {
				denied.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("X-RateLimit-Remaining", "0")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
			next.ServeHTTP(w, r)
		})
	}
}
