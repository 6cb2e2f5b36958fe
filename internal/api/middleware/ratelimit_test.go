package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thaivisachecklist/server/internal/config"
)

func newTestLimiter(t *testing.T, cfg config.RateLimitConfig) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(cfg, "test")
	t.Cleanup(rl.Stop)
	return rl
}

func send(handler http.Handler, path, remote string, tier RateLimitTier) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = remote
	if tier != "" {
		req = req.WithContext(WithRateLimitTier(req.Context(), tier))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_ContactTierBlocksAfterBurst(t *testing.T) {
	rl := newTestLimiter(t, config.RateLimitConfig{PublicPerMinute: 100, ContactPerHour: 5})
	handler := rl.Middleware(okHandler())

	for i := 0; i < 5; i++ {
		if rec := send(handler, "/api/contact", "192.168.1.100:1234", TierContact); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := send(handler, "/api/contact", "192.168.1.100:1234", TierContact)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "720" {
		t.Errorf("expected Retry-After 720, got %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/problem+json" {
		t.Errorf("expected problem+json, got %q", got)
	}

	// The public tier for the same client is a separate bucket.
	if rec := send(handler, "/", "192.168.1.100:1234", ""); rec.Code != http.StatusOK {
		t.Errorf("public tier should be unaffected, got %d", rec.Code)
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	rl := newTestLimiter(t, config.RateLimitConfig{PublicPerMinute: 1, ContactPerHour: 1})
	handler := rl.Middleware(okHandler())

	if rec := send(handler, "/", "10.0.0.1:1", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := send(handler, "/", "10.0.0.1:2", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("same IP should be limited, got %d", rec.Code)
	}
	if rec := send(handler, "/", "10.0.0.2:1", ""); rec.Code != http.StatusOK {
		t.Fatalf("other IP should pass, got %d", rec.Code)
	}
}

func TestRateLimit_SkipsProbes(t *testing.T) {
	rl := newTestLimiter(t, config.RateLimitConfig{PublicPerMinute: 1})
	handler := rl.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
			if rec := send(handler, path, "10.0.0.1:1", ""); rec.Code != http.StatusOK {
				t.Fatalf("%s should not be limited, got %d", path, rec.Code)
			}
		}
	}
}

func TestRateLimit_ZeroMeansUnlimited(t *testing.T) {
	rl := newTestLimiter(t, config.RateLimitConfig{})
	handler := rl.Middleware(okHandler())

	for i := 0; i < 20; i++ {
		if rec := send(handler, "/api/contact", "10.0.0.1:1", TierContact); rec.Code != http.StatusOK {
			t.Fatalf("expected no limit, got %d", rec.Code)
		}
	}
}

func TestRateLimit_TierHandler(t *testing.T) {
	rl := newTestLimiter(t, config.RateLimitConfig{PublicPerMinute: 100, ContactPerHour: 1})
	handler := WithRateLimitTierHandler(TierContact)(rl.Middleware(okHandler()))

	send(handler, "/contact", "10.0.0.9:1", "")
	if rec := send(handler, "/contact", "10.0.0.9:1", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected contact tier to apply, got %d", rec.Code)
	}
}

func TestRateLimit_CleanupDropsIdleBuckets(t *testing.T) {
	rl := newTestLimiter(t, config.RateLimitConfig{PublicPerMinute: 10})
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiter(TierPublic, "10.0.0.1")
	now = now.Add(limiterTTL + time.Second)
	rl.limiter(TierPublic, "10.0.0.2")
	rl.cleanup()

	if _, ok := rl.limiters["public:10.0.0.1"]; ok {
		t.Error("idle bucket should be removed")
	}
	if _, ok := rl.limiters["public:10.0.0.2"]; !ok {
		t.Error("recent bucket should be kept")
	}
}

func TestClientKey(t *testing.T) {
	trusted := []string{"10.0.0.0/8"}

	tests := []struct {
		name   string
		remote string
		xff    string
		realIP string
		want   string
	}{
		{name: "direct", remote: "203.0.113.5:443", want: "203.0.113.5"},
		{name: "untrusted proxy header ignored", remote: "203.0.113.5:443", xff: "198.51.100.1", want: "203.0.113.5"},
		{name: "trusted proxy first hop", remote: "10.1.2.3:80", xff: "198.51.100.1, 10.1.2.3", want: "198.51.100.1"},
		{name: "trusted proxy real ip", remote: "10.1.2.3:80", realIP: "198.51.100.2", want: "198.51.100.2"},
		{name: "no port", remote: "203.0.113.7", want: "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := clientKey(req, trusted); got != tt.want {
				t.Errorf("clientKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
