package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBurstThenDeny(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	fixed := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	if !rl.Allow("sess-1") || !rl.Allow("sess-1") {
		t.Fatal("expected burst of two to be allowed")
	}
	if rl.Allow("sess-1") {
		t.Fatal("expected third request in the same instant to be denied")
	}
	if !rl.Allow("sess-2") {
		t.Fatal("expected independent bucket per key")
	}

	fixed = fixed.Add(time.Second)
	if !rl.Allow("sess-1") {
		t.Fatal("expected a token to refill after one second")
	}
}

func TestRateLimiterEvictsIdleKeys(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	fixed := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	rl.Allow("old")

	fixed = fixed.Add(time.Hour)
	rl.Allow("new")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.limiters["old"]; ok {
		t.Fatal("expected idle key to be evicted")
	}
}

func TestRateLimiterSweepsOncePerInterval(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.idleTTL = time.Second
	fixed := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	rl.Allow("a")

	fixed = fixed.Add(10 * time.Second)
	rl.Allow("b")
	rl.mu.Lock()
	_, kept := rl.limiters["a"]
	rl.mu.Unlock()
	if !kept {
		t.Fatal("expected no sweep before the interval elapses")
	}

	fixed = fixed.Add(time.Minute)
	rl.Allow("c")
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.limiters["a"]; ok {
		t.Fatal("expected idle key swept once the interval elapsed")
	}
	if len(rl.limiters) != 1 {
		t.Fatalf("expected only the fresh key to remain, got %d", len(rl.limiters))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimit(0.001, 1, func(r *http.Request) string { return r.Header.Get("X-Key") })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/booking-wizard/x/selection", nil)
	req.Header.Set("X-Key", "a")
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusNoContent {
		t.Fatalf("expected first request through, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}
