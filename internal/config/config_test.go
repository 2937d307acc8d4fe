package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("Expected timeout %v, got %v", DefaultHTTPTimeout, cfg.HTTPTimeout)
	}
	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("Expected 3 retries, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.InitialBackoff != 2*time.Second {
		t.Errorf("Expected initial backoff 2s, got %v", cfg.Retry.InitialBackoff)
	}
	if cfg.StreamTimeout != 5*time.Minute {
		t.Errorf("Expected stream timeout 5m, got %v", cfg.StreamTimeout)
	}
	if cfg.MaxPages != 0 {
		t.Errorf("Expected unbounded pages, got %d", cfg.MaxPages)
	}
}

func TestLoad_FileThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hackscout.yaml")
	content := `
user_agent: "FileAgent/2.0"
http_timeout: 9s
max_pages: 4
retry:
  max_retries: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := &cobra.Command{Use: "test"}
	RegisterFlags(cmd)
	if err := cmd.ParseFlags([]string{"--config", path, "--user-agent", "FlagAgent/3.0"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.UserAgent != "FlagAgent/3.0" {
		t.Errorf("Expected flag to override file user agent, got %q", cfg.UserAgent)
	}
	if cfg.HTTPTimeout != 9*time.Second {
		t.Errorf("Expected timeout 9s from file, got %v", cfg.HTTPTimeout)
	}
	if cfg.MaxPages != 4 {
		t.Errorf("Expected max pages 4, got %d", cfg.MaxPages)
	}
	if cfg.Retry.MaxRetries != 5 {
		t.Errorf("Expected 5 retries, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.MaxBackoff != DefaultRetryMaxDelay {
		t.Errorf("Expected untouched max backoff %v, got %v", DefaultRetryMaxDelay, cfg.Retry.MaxBackoff)
	}
}

func TestLoad_ProxyListFromEnv(t *testing.T) {
	t.Setenv("HACKSCOUT_PROXY", "http://p1:8080, http://p2:8080")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Proxies) != 2 || cfg.Proxies[1] != "http://p2:8080" {
		t.Errorf("Expected two proxies, got %v", cfg.Proxies)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	RegisterFlags(cmd)
	if err := cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if _, err := Load(cmd); err == nil {
		t.Error("Expected error for missing config file, got nil")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.MaxCount = 5
	if err := validate(cfg); err == nil {
		t.Error("Expected error when max count is below default count")
	}

	cfg = Default()
	cfg.Retry.InitialBackoff = time.Minute
	if err := validate(cfg); err == nil {
		t.Error("Expected error when initial backoff exceeds max backoff")
	}
}

func TestClampCount(t *testing.T) {
	cfg := Default()

	tests := []struct {
		in, want int
	}{
		{0, 10},
		{-3, 10},
		{1, 1},
		{25, 25},
		{50, 50},
		{51, 50},
		{1000, 50},
	}

	for _, tt := range tests {
		if got := cfg.ClampCount(tt.in); got != tt.want {
			t.Errorf("ClampCount(%d): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}
