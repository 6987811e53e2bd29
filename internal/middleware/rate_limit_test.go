package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow("127.0.0.1") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be rate limited (exceeded burst)
	if rl.Allow("127.0.0.1") {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentClients(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Errorf("Client 1 request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Client 1 should be rate limited")
	}

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.2") {
			t.Errorf("Client 2 request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_RemoveStale(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 1)
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	rl.removeStale(time.Now().Add(LimiterTTL + time.Minute))

	rl.mu.RLock()
	count := len(rl.limiters)
	rl.mu.RUnlock()
	if count != 0 {
		t.Errorf("Expected stale limiter removed, %d left", count)
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 1)
	rl.Stop()
	rl.Stop()
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(1, 2)
	defer rl.Stop()

	handlerCalls := 0
	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		handlerCalls++
		return c.String(http.StatusOK, "OK")
	})

	var rec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses/monthly", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		rec = httptest.NewRecorder()
		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if handlerCalls != 2 {
		t.Errorf("Expected 2 handler calls, got %d", handlerCalls)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Limit") != "1" {
		t.Errorf("Expected limit header 1, got %s", rec.Header().Get("X-RateLimit-Limit"))
	}

	var problem problemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Status != http.StatusTooManyRequests || problem.Type != errorTypeRateLimit {
		t.Errorf("Unexpected problem response: %+v", problem)
	}
}

func TestRateLimitMiddleware_SetsHeadersOnSuccess(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(60, 5)
	defer rl.Stop()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/planner", nil)
	req.RemoteAddr = "192.0.2.9:5000"
	rec := httptest.NewRecorder()

	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "4" {
		t.Errorf("Expected 4 remaining, got %s", rec.Header().Get("X-RateLimit-Remaining"))
	}
}
