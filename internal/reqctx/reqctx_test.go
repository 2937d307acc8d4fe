package reqctx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestWithCrawl(t *testing.T) {
	ctx := WithCrawl(context.Background(), "DEVPOST")
	cc := FromContext(ctx)

	if _, err := uuid.Parse(cc.CrawlID); err != nil {
		t.Errorf("Expected a UUID crawl id, got %q", cc.CrawlID)
	}
	if cc.Provider != "DEVPOST" {
		t.Errorf("Expected provider DEVPOST, got %s", cc.Provider)
	}

	other := FromContext(WithCrawl(context.Background(), "MLH"))
	if other.CrawlID == cc.CrawlID {
		t.Error("Expected distinct crawl ids")
	}
}

func TestFromContext_Missing(t *testing.T) {
	if id := FromContext(context.Background()).CrawlID; id != "unknown" {
		t.Errorf("Expected 'unknown', got %s", id)
	}
}

func TestLogger_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithCrawl(context.Background(), "MLH")
	logger := Logger(ctx, base)
	logger.Info().Msg("Page fetched")

	out := buf.String()
	if !strings.Contains(out, FromContext(ctx).CrawlID) {
		t.Errorf("Expected crawl id in log line, got %s", out)
	}
	if !strings.Contains(out, `"provider":"MLH"`) {
		t.Errorf("Expected provider field in log line, got %s", out)
	}
}

func TestNewCrawlError(t *testing.T) {
	ctx := WithCrawl(context.Background(), "DEVPOST")
	root := errors.New("listing failed")

	err := NewCrawlError(ctx, root)
	if !errors.Is(err, root) {
		t.Error("Expected wrapped error to match root")
	}
	if !strings.HasPrefix(err.Error(), "["+FromContext(ctx).CrawlID+"]") {
		t.Errorf("Expected crawl id prefix, got %s", err.Error())
	}
	if NewCrawlError(ctx, nil) != nil {
		t.Error("Expected nil for nil error")
	}
}
