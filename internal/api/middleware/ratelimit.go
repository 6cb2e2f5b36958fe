package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/thaivisachecklist/server/internal/api/problem"
	"github.com/thaivisachecklist/server/internal/config"
	"golang.org/x/time/rate"
)

type RateLimitTier string

const (
	TierPublic  RateLimitTier = "public"
	TierContact RateLimitTier = "contact" // contact form submissions, limited per hour
)

const (
	limiterTTL      = 2 * time.Hour
	cleanupInterval = 5 * time.Minute
)

type rateLimitKey string

const rateLimitTierKey rateLimitKey = "rateLimitTier"

func WithRateLimitTier(ctx context.Context, tier RateLimitTier) context.Context {
	return context.WithValue(ctx, rateLimitTierKey, tier)
}

// WithRateLimitTierHandler marks requests to next with tier. It must run
// before RateLimiter.Middleware sees the request.
func WithRateLimitTierHandler(tier RateLimitTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithRateLimitTier(r.Context(), tier)))
		})
	}
}

// RateLimiter keeps one token bucket per tier and client IP.
type RateLimiter struct {
	cfg  config.RateLimitConfig
	env  string
	now  func() time.Time
	once sync.Once
	stop chan struct{}

	mu       sync.Mutex
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter starts the background sweep of idle buckets; call Stop to
// end it.
func NewRateLimiter(cfg config.RateLimitConfig, env string) *RateLimiter {
	rl := &RateLimiter{
		cfg:      cfg,
		env:      env,
		now:      time.Now,
		stop:     make(chan struct{}),
		limiters: make(map[string]*limiterEntry),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		tier := TierPublic
		if value, ok := r.Context().Value(rateLimitTierKey).(RateLimitTier); ok {
			tier = value
		}

		limiter := rl.limiter(tier, clientKey(r, rl.cfg.TrustedProxyCIDRs))
		if limiter != nil && !limiter.Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.refill(tier).Seconds())))
			problem.Write(w, r, http.StatusTooManyRequests, problem.TypeRateLimited,
				"Too many requests", nil, rl.env)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// refill is the time one token takes to come back for tier.
func (rl *RateLimiter) refill(tier RateLimitTier) time.Duration {
	if tier == TierContact {
		return time.Hour / time.Duration(rl.cfg.ContactPerHour)
	}
	return time.Minute / time.Duration(rl.cfg.PublicPerMinute)
}

func (rl *RateLimiter) limit(tier RateLimitTier) int {
	if tier == TierContact {
		return rl.cfg.ContactPerHour
	}
	return rl.cfg.PublicPerMinute
}

// limiter returns nil when the tier is unlimited.
func (rl *RateLimiter) limiter(tier RateLimitTier, key string) *rate.Limiter {
	limit := rl.limit(tier)
	if limit <= 0 {
		return nil
	}

	lookup := string(tier) + ":" + key

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if entry, ok := rl.limiters[lookup]; ok {
		entry.lastSeen = rl.now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Every(rl.refill(tier)), limit)
	rl.limiters[lookup] = &limiterEntry{limiter: limiter, lastSeen: rl.now()}
	return limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup drops buckets idle for longer than limiterTTL. A contact bucket
// is fully refilled well before then.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(rl.limiters, key)
		}
	}
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// clientKey identifies the client. X-Forwarded-For and X-Real-IP are only
// believed when the connection comes from a trusted proxy.
func clientKey(r *http.Request, trustedProxyCIDRs []string) string {
	if r == nil {
		return ""
	}

	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if isTrustedProxy(remoteIP, trustedProxyCIDRs) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
	}
	return remoteIP
}

func isTrustedProxy(ip string, trustedCIDRs []string) bool {
	if len(trustedCIDRs) == 0 {
		return false
	}
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}
	for _, cidrStr := range trustedCIDRs {
		_, cidr, err := net.ParseCIDR(cidrStr)
		if err != nil {
			continue
		}
		if cidr.Contains(parsedIP) {
			return true
		}
	}
	return false
}
