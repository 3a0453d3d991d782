package api

import (
	"testing"
	"time"
)

func TestIPRateLimiterBudget(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             3,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst was rejected", i)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request past the burst should be rejected")
	}

	// Budgets are per IP
	if !rl.Allow("10.0.0.2") {
		t.Error("fresh IP should have its own budget")
	}

	stats := rl.GetStats()
	if stats["allowed"] != 4 || stats["rejected"] != 1 {
		t.Errorf("stats = %v, want 4 allowed / 1 rejected", stats)
	}
}

func TestWebSocketRateLimiterSlots(t *testing.T) {
	wrl := NewWebSocketRateLimiter(2)

	if !wrl.Allow("10.0.0.1") || !wrl.Allow("10.0.0.1") {
		t.Fatal("connections within the cap were rejected")
	}
	if wrl.Allow("10.0.0.1") {
		t.Error("third connection should hit the per-IP cap")
	}
	if wrl.GetConnectionCount("10.0.0.1") != 2 {
		t.Errorf("count = %d, want 2", wrl.GetConnectionCount("10.0.0.1"))
	}

	wrl.Release("10.0.0.1")
	if !wrl.Allow("10.0.0.1") {
		t.Error("released slot should be reusable")
	}
}

func TestIsAllowedOrigin(t *testing.T) {
	cases := []struct {
		origin string
		want   bool
	}{
		{"", false},
		{"http://localhost", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:8080", true},
		{"https://example.com", false},
	}
	for _, c := range cases {
		if got := IsAllowedOrigin(c.origin); got != c.want {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", c.origin, got, c.want)
		}
	}
}
