package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/hackscout/pkg/models"
)

func TestDownload_Success(t *testing.T) {
	content := "png bytes"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte(content))
	}))
	defer server.Close()

	dir := t.TempDir()
	dl := NewDownloader(Options{UserAgent: "Test/1.0", Logger: zerolog.Nop()})

	result := dl.Download(context.Background(), Job{EventID: 42, Title: "AI Hack", ImageURL: server.URL + "/thumb"}, dir)
	if !result.Success() {
		t.Fatalf("Download failed: %v", result.Err)
	}

	if filepath.Base(result.FilePath) != "42-ai-hack.png" {
		t.Errorf("Expected 42-ai-hack.png, got %s", filepath.Base(result.FilePath))
	}
	data, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != content {
		t.Errorf("Content mismatch: got %q, want %q", string(data), content)
	}
}

func TestDownload_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dl := NewDownloader(Options{Logger: zerolog.Nop()})
	result := dl.Download(context.Background(), Job{EventID: 1, ImageURL: server.URL + "/x.jpg"}, t.TempDir())
	if result.Success() {
		t.Error("Expected failure for 404")
	}
}

func TestDownload_InvalidURL(t *testing.T) {
	dl := NewDownloader(Options{Logger: zerolog.Nop()})
	result := dl.Download(context.Background(), Job{EventID: 1, ImageURL: "data:image/png;base64,AAAA"}, t.TempDir())
	if result.Success() {
		t.Error("Expected failure for non-http URL")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		raw, contentType, want string
	}{
		{"https://cdn.example.com/a/photo.JPG", "", "7-hack-the-planet.jpg"},
		{"https://cdn.example.com/a/photo?w=200", "image/webp", "7-hack-the-planet.webp"},
		{"https://cdn.example.com/a/photo", "", "7-hack-the-planet.img"},
		{"https://cdn.example.com/a/../../etc/passwd", "", "7-hack-the-planet.img"},
	}
	job := Job{EventID: 7, Title: "Hack the Planet!"}
	for _, tt := range tests {
		u, _ := url.Parse(tt.raw)
		if got := Filename(job, u, tt.contentType); got != tt.want {
			t.Errorf("Filename(%q, %q): expected %q, got %q", tt.raw, tt.contentType, tt.want, got)
		}
	}
}

func TestSlug_Security(t *testing.T) {
	dangerous := []string{"../../etc/passwd", "/etc/shadow", "file:with:colons", "C:\\Windows"}
	for _, input := range dangerous {
		got := Slug(input)
		if strings.ContainsAny(got, `/\.:`) {
			t.Errorf("Slug(%q) contains unsafe characters: %q", input, got)
		}
	}
	if got := Slug("  Café -- Jam 2026 "); got != "caf-jam-2026" {
		t.Errorf("Unexpected slug %q", got)
	}
}

func TestJobsFor(t *testing.T) {
	events := []models.Event{
		{ID: 1, Title: "A", ImageURL: "https://x/a.png"},
		{ID: 2, Title: "B"},
		{ID: 3, Title: "C", ImageURL: "https://x/a.png"},
		{ID: 4, Title: "D", ImageURL: "https://x/d.png"},
	}
	jobs := JobsFor(events)
	if len(jobs) != 2 || jobs[0].EventID != 1 || jobs[1].EventID != 4 {
		t.Errorf("Expected jobs for events 1 and 4, got %+v", jobs)
	}
}

func TestWorkerPool_Concurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		w.Write([]byte("data"))
	}))
	defer server.Close()

	jobs := []Job{
		{EventID: 1, ImageURL: server.URL + "/1.png"},
		{EventID: 2, ImageURL: server.URL + "/2.png"},
		{EventID: 3, ImageURL: server.URL + "/3.png"},
		{EventID: 4, ImageURL: server.URL + "/4.png"},
	}

	pool := NewWorkerPool(NewDownloader(Options{Logger: zerolog.Nop()}), 2, 50)
	done := 0
	results := pool.DownloadBatch(context.Background(), jobs, t.TempDir(), func(Result) { done++ })

	if len(results) != len(jobs) || done != len(jobs) {
		t.Fatalf("Expected %d results, got %d (callbacks %d)", len(jobs), len(results), done)
	}
	for _, r := range results {
		if !r.Success() {
			t.Errorf("Download of %s failed: %v", r.Job.ImageURL, r.Err)
		}
	}
	if peak.Load() > 2 {
		t.Errorf("Expected at most 2 concurrent downloads, got %d", peak.Load())
	}
}

func TestWorkerPool_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewWorkerPool(NewDownloader(Options{Logger: zerolog.Nop()}), 2, 50)
	results := pool.DownloadBatch(ctx, []Job{{EventID: 1, ImageURL: "https://example.com/a.png"}}, t.TempDir(), nil)

	if len(results) != 1 || results[0].Success() {
		t.Errorf("Expected one failed result, got %+v", results)
	}
}

func TestNewWorkerPool_Clamp(t *testing.T) {
	d := NewDownloader(Options{})
	if p := NewWorkerPool(d, 0, 50); p.concurrency != 5 {
		t.Errorf("Expected default 5 workers, got %d", p.concurrency)
	}
	if p := NewWorkerPool(d, 80, 50); p.concurrency != 50 {
		t.Errorf("Expected 50 workers, got %d", p.concurrency)
	}
}
