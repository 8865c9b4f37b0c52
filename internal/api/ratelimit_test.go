package api

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	t.Run("burst bounds a single ip", func(t *testing.T) {
		rl := newRateLimiter(1.0, 2)
		if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.1") {
			t.Fatal("requests within burst denied")
		}
		if rl.allow("10.0.0.1") {
			t.Error("request past burst allowed")
		}
	})

	t.Run("ips have independent budgets", func(t *testing.T) {
		rl := newRateLimiter(1.0, 1)
		if !rl.allow("10.0.0.1") {
			t.Fatal("first request denied")
		}
		if rl.allow("10.0.0.1") {
			t.Error("exhausted ip allowed")
		}
		if !rl.allow("10.0.0.2") {
			t.Error("fresh ip denied")
		}
	})

	t.Run("refill rate restores tokens", func(t *testing.T) {
		rl := newRateLimiter(1000, 1)
		if !rl.allow("10.0.0.1") {
			t.Fatal("first request denied")
		}
		time.Sleep(10 * time.Millisecond)
		if !rl.allow("10.0.0.1") {
			t.Error("token not refilled at 1000/s")
		}
	})

	t.Run("stale buckets are swept", func(t *testing.T) {
		rl := newRateLimiter(1.0, 1)
		rl.allow("10.0.0.1")
		rl.buckets["10.0.0.1"].lastSeen = time.Now().Add(-2 * rateLimiterStaleThreshold)
		rl.lastCleanup = time.Now().Add(-2 * rateLimiterCleanupInterval)

		rl.allow("10.0.0.2")
		if _, ok := rl.buckets["10.0.0.1"]; ok {
			t.Error("idle bucket kept past the stale threshold")
		}
	})
}
