package app

import (
	"context"
	"testing"

	"github.com/law-makers/hackscout/internal/config"
)

func TestNew_RegistersSources(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close(context.Background())

	var names []string
	for _, c := range a.Registry.List() {
		names = append(names, c.Name())
	}
	want := []string{"devpost", "devpost-api", "mlh"}
	if len(names) != len(want) {
		t.Fatalf("Expected sources %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, names[i])
		}
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(context.Background(), nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestClose_WritesMetricsFile(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.MetricsFile = t.TempDir() + "/hackscout.prom"

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a.Metrics.PageFetched("devpost")

	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestProxyFunc(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.Proxies = []string{"http://p1.example.com:8080"}

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	u, err := proxyFunc(a.Proxies)(nil)
	if err != nil || u == nil || u.Host != "p1.example.com:8080" {
		t.Errorf("Expected pool proxy, got %v (%v)", u, err)
	}
}
