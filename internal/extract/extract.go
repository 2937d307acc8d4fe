// Package extract implements the two extraction phases: cheap field reads
// from listing tiles, then per-event enrichment from detail pages.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/hackscout/internal/engine"
	"github.com/law-makers/hackscout/pkg/models"
)

// StaleAttempts is how many times a field read is tried when the element
// went stale underneath it
const StaleAttempts = 3

// Getter reads one field
type Getter func(ctx context.Context) (string, error)

// OrDefault runs get and returns its value, or def when the element is
// missing, keeps going stale, or the read fails in any other way. Stale
// reads are retried up to StaleAttempts times in total.
func OrDefault(ctx context.Context, field string, get Getter, def string) string {
	logger := zerolog.Ctx(ctx)

	for attempt := 1; attempt <= StaleAttempts; attempt++ {
		v, err := safeGet(ctx, get)
		switch {
		case err == nil:
			return v
		case errors.Is(err, engine.ErrNotFound):
			return def
		case engine.IsStale(err) && attempt < StaleAttempts:
			logger.Debug().Str("field", field).Int("attempt", attempt).Msg("Stale element, retrying read")
			continue
		default:
			logger.Debug().Str("field", field).Err(err).Msg("Field read failed, using default")
			return def
		}
	}
	return def
}

func safeGet(ctx context.Context, get Getter) (v string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("field read panicked: %v", r)
		}
	}()
	return get(ctx)
}

// Stamp carries the values every phase-1 record receives
type Stamp struct {
	Provider models.Provider
	Type     models.EventType
	Now      func() time.Time
}

// BasicFunc reads the listing-level fields of one item
type BasicFunc[N any] func(ctx context.Context, node N) (models.Event, error)

// Phase1 reads every node into a detached Event value. Items whose read
// fails or panics are skipped; the rest of the page is unaffected. The
// returned events hold no reference to the nodes.
func Phase1[N any](ctx context.Context, nodes []N, basic BasicFunc[N], stamp Stamp) []models.Event {
	logger := zerolog.Ctx(ctx)
	now := stamp.Now
	if now == nil {
		now = time.Now
	}

	events := make([]models.Event, 0, len(nodes))
	for i, node := range nodes {
		if ctx.Err() != nil {
			break
		}

		ev, err := readItem(ctx, node, basic)
		if err != nil {
			logger.Warn().Int("item", i).Err(err).Msg("Skipping unreadable listing item")
			continue
		}

		if strings.TrimSpace(ev.Title) == "" {
			ev.Title = models.UnknownTitle
		}
		if ev.Provider == "" {
			ev.Provider = stamp.Provider
		}
		if ev.Type == "" {
			ev.Type = stamp.Type
		}
		ev.ScrapedAt = now()
		events = append(events, ev)
	}
	return events
}

func readItem[N any](ctx context.Context, node N, basic BasicFunc[N]) (ev models.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listing item panicked: %v", r)
		}
	}()
	return basic(ctx, node)
}

// Navigator loads an event's detail page
type Navigator[D any] func(ctx context.Context, url string) (D, error)

// DetailFunc reads the detail fields of a loaded page
type DetailFunc[D any] func(ctx context.Context, doc D) models.Detail

// Enrich returns ev with the fields found on its detail page. The returned
// event is always usable: without a URL, or when navigation fails, it is
// ev unchanged. The error reports a failed navigation for accounting only.
func Enrich[D any](ctx context.Context, ev models.Event, open Navigator[D], detail DetailFunc[D]) (models.Event, error) {
	if strings.TrimSpace(ev.URL) == "" {
		return ev, nil
	}

	doc, err := open(ctx, ev.URL)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Str("url", ev.URL).
			Str("code", string(engine.CodeOf(err))).
			Err(err).
			Msg("Detail page failed, keeping listing fields")
		return ev, err
	}

	d, err := readDetail(ctx, doc, detail)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Str("url", ev.URL).Err(err).Msg("Detail extraction failed")
		return ev, err
	}
	return ev.Enrich(d), nil
}

func readDetail[D any](ctx context.Context, doc D, detail DetailFunc[D]) (d models.Detail, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detail extraction panicked: %v", r)
		}
	}()
	return detail(ctx, doc), nil
}
