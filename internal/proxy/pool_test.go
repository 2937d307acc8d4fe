package proxy

import (
	"testing"
	"time"
)

func TestPool_Rotation(t *testing.T) {
	pool := NewPool([]string{"p1", "p2", "p3"})

	for _, want := range []string{"p1", "p2", "p3", "p1"} {
		if p := pool.Next(); p != want {
			t.Errorf("Expected %s, got %s", want, p)
		}
	}
}

func TestPool_SkipsFailed(t *testing.T) {
	pool := NewPool([]string{"p1", "p2", "p3"})
	pool.Next() // p1

	pool.MarkFailed("p2")

	if p := pool.Next(); p != "p3" {
		t.Errorf("Expected p3 (skipping p2), got %s", p)
	}
	if p := pool.Next(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.Next(); p != "p3" {
		t.Errorf("Expected p3, got %s", p)
	}

	pool.MarkHealthy("p2")

	if p := pool.Next(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.Next(); p != "p2" {
		t.Errorf("Expected p2, got %s", p)
	}
}

func TestPool_CooldownExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pool := NewPool([]string{"p1", "p2"})
	pool.now = func() time.Time { return now }

	pool.MarkFailed("p1")
	if p := pool.Next(); p != "p2" {
		t.Errorf("Expected p2 while p1 cools down, got %s", p)
	}

	now = now.Add(DefaultCooldown)
	if p := pool.Next(); p != "p1" {
		t.Errorf("Expected p1 after cooldown, got %s", p)
	}
}

func TestPool_AllFailed(t *testing.T) {
	pool := NewPool([]string{"p1", "p2"})
	pool.MarkFailed("p1")
	pool.MarkFailed("p2")

	if p := pool.Next(); p == "" {
		t.Error("Expected a proxy even when all are failing, got empty")
	}
}

func TestPool_Empty(t *testing.T) {
	pool := NewPool(nil)
	if p := pool.Next(); p != "" {
		t.Errorf("Expected empty proxy, got %s", p)
	}
	if pool.Len() != 0 {
		t.Errorf("Expected 0 proxies, got %d", pool.Len())
	}
}
