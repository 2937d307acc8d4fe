// internal/downloader/downloader.go
package downloader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/hackscout/internal/ratelimit"
	"github.com/law-makers/hackscout/pkg/models"
)

// maxImageBytes caps a single image download
const maxImageBytes = 32 << 20

// Job is one event image to fetch
type Job struct {
	EventID  int64
	Title    string
	ImageURL string
}

// Result represents the result of a download operation
type Result struct {
	Job      Job
	FilePath string
	Size     int64
	Err      error
	Duration time.Duration
}

// Success reports whether the image was saved
func (r Result) Success() bool {
	return r.Err == nil
}

// Options configures a Downloader
type Options struct {
	Client    *http.Client
	UserAgent string
	Limiter   ratelimit.RateLimiter
	Logger    zerolog.Logger
}

// Downloader saves event images with streaming I/O
type Downloader struct {
	client    *http.Client
	userAgent string
	limiter   ratelimit.RateLimiter
	logger    zerolog.Logger
}

// NewDownloader creates a Downloader
func NewDownloader(opts Options) *Downloader {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &Downloader{
		client:    client,
		userAgent: opts.UserAgent,
		limiter:   limiter,
		logger:    opts.Logger,
	}
}

// JobsFor returns one job per distinct image URL among events
func JobsFor(events []models.Event) []Job {
	seen := make(map[string]bool)
	var jobs []Job
	for _, ev := range events {
		if ev.ImageURL == "" || seen[ev.ImageURL] {
			continue
		}
		seen[ev.ImageURL] = true
		jobs = append(jobs, Job{EventID: ev.ID, Title: ev.Title, ImageURL: ev.ImageURL})
	}
	return jobs
}

// Download fetches job's image into dir
func (d *Downloader) Download(ctx context.Context, job Job, dir string) Result {
	start := time.Now()
	result := Result{Job: job}
	fail := func(err error) Result {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	u, err := url.Parse(job.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fail(fmt.Errorf("invalid image URL %q", job.ImageURL))
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}

	if err := d.limiter.Wait(ctx, job.ImageURL); err != nil {
		return fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.ImageURL, nil)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fail(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("bad status: %s", resp.Status))
	}

	name := Filename(job, u, resp.Header.Get("Content-Type"))
	filePath := filepath.Join(dir, name)
	result.FilePath = filePath

	out, err := os.Create(filePath)
	if err != nil {
		return fail(fmt.Errorf("failed to create file: %w", err))
	}

	written, err := io.Copy(out, io.LimitReader(resp.Body, maxImageBytes))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filePath)
		return fail(fmt.Errorf("failed to write file: %w", err))
	}

	result.Size = written
	result.Duration = time.Since(start)

	d.logger.Debug().
		Str("url", job.ImageURL).
		Str("file", filePath).
		Int64("bytes", written).
		Dur("duration", result.Duration).
		Msg("Image saved")

	return result
}

// Filename builds "<id>-<title-slug><ext>". The extension comes from the URL
// path, then the content type, and defaults to .img.
func Filename(job Job, u *url.URL, contentType string) string {
	ext := strings.ToLower(path.Ext(u.Path))
	if !validExt(ext) {
		ext = ""
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
				ext = exts[0]
			}
		}
	}
	if ext == "" {
		ext = ".img"
	}

	name := fmt.Sprintf("%d", job.EventID)
	if slug := Slug(job.Title); slug != "" {
		name += "-" + slug
	}
	return name + ext
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// Slug lowercases s and keeps only ASCII letters and digits, joined by dashes.
// The result never contains path separators or dots.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > 60 {
		slug = strings.TrimSuffix(slug[:60], "-")
	}
	return slug
}
