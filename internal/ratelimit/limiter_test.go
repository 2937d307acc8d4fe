package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDomainLimiter_PerHostBuckets(t *testing.T) {
	dl := NewDomainLimiter(1000, 1)
	ctx := context.Background()

	urls := []string{
		"https://devpost.com/api/hackathons?page=1",
		"https://DEVPOST.com/api/hackathons?page=2",
		"https://mlh.io/seasons/2026/events",
	}
	for _, u := range urls {
		if err := dl.Wait(ctx, u); err != nil {
			t.Fatalf("Wait(%s) failed: %v", u, err)
		}
	}

	if dl.Hosts() != 2 {
		t.Errorf("Expected 2 hosts, got %d", dl.Hosts())
	}
}

func TestDomainLimiter_Paces(t *testing.T) {
	dl := NewDomainLimiter(20, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := dl.Wait(ctx, "https://devpost.com/hackathons"); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}

	// Burst of 1 at 20/s: the 2nd and 3rd requests wait ~50ms each
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("Expected pacing of at least 80ms, got %v", elapsed)
	}
}

func TestDomainLimiter_CancelledContext(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	dl.SetLimit("slow.example.com", 0.001, 1)

	// Drain the single token
	if err := dl.Wait(context.Background(), "https://slow.example.com/a"); err != nil {
		t.Fatalf("First wait failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := dl.Wait(ctx, "https://slow.example.com/b"); err == nil {
		t.Error("Expected error for cancelled context, got nil")
	}
}

func TestDomainLimiter_InvalidURL(t *testing.T) {
	dl := NewDomainLimiter(1, 1)
	if err := dl.Wait(context.Background(), "://bad"); err != nil {
		t.Errorf("Expected invalid URL to pass through, got %v", err)
	}
}
