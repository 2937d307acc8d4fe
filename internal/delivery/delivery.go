// Package delivery exposes crawls as a batch call or as a stream of events
package delivery

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/law-makers/hackscout/internal/crawl"
	"github.com/law-makers/hackscout/pkg/models"
)

// maxPrealloc bounds the room reserved up front for a request's events.
// Larger requests grow as events arrive.
const maxPrealloc = 64

// ErrStreamClosed is reported when a stream ended without a terminal message
var ErrStreamClosed = errors.New("stream closed before completion")

// Kind tags a stream Message
type Kind int

const (
	KindItem Kind = iota
	KindDone
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindDone:
		return "done"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Message is one element of a stream: an event, or the terminal done/error
type Message struct {
	Kind    Kind
	Event   models.Event
	Summary crawl.Summary
	Err     error
}

// Scheduler runs a crawl in the background
type Scheduler interface {
	Go(fn func())
}

// GoScheduler runs each crawl on its own goroutine
type GoScheduler struct{}

func (GoScheduler) Go(fn func()) {
	go fn()
}

// InlineScheduler runs crawls on the calling goroutine. A stream run inline
// buffers at most maxPrealloc events before its crawl blocks on a reader.
type InlineScheduler struct{}

func (InlineScheduler) Go(fn func()) {
	fn()
}

// Observer is told about each event of a batch crawl as it is delivered
type Observer func(ev models.Event)

// Options configures a Service
type Options struct {
	Scheduler Scheduler
	Logger    zerolog.Logger
}

// Service runs crawlers for batch and streaming callers
type Service struct {
	scheduler Scheduler
	logger    zerolog.Logger
}

// NewService creates a Service; without a scheduler crawls get their own goroutine
func NewService(opts Options) *Service {
	if opts.Scheduler == nil {
		opts.Scheduler = GoScheduler{}
	}
	return &Service{scheduler: opts.Scheduler, logger: opts.Logger}
}

// Scrape runs c to completion and returns the events in discovery order.
// An abnormal stop is logged and whatever was found is still returned.
func (s *Service) Scrape(ctx context.Context, c crawl.Crawler, req models.CrawlRequest, observers ...Observer) ([]models.Event, crawl.Summary) {
	events := make([]models.Event, 0, prealloc(req.Count))

	sum := c.Crawl(ctx, req, func(ev models.Event) bool {
		events = append(events, ev)
		for _, obs := range observers {
			obs(ev)
		}
		return true
	})

	if sum.Err != nil {
		s.logger.Warn().
			Str("source", c.Name()).
			Str("stop", string(sum.Stop)).
			Int("delivered", len(events)).
			Err(sum.Err).
			Msg("Crawl ended early, returning partial results")
	}
	return events, sum
}

// Stream starts c on the scheduler and returns its messages. Each event is
// sent as soon as it is complete, followed by exactly one KindDone or
// KindError, after which the channel is closed. Cancelling ctx tells the
// crawl the receiver is gone.
func (s *Service) Stream(ctx context.Context, c crawl.Crawler, req models.CrawlRequest) <-chan Message {
	out := make(chan Message, prealloc(req.Count)+1)
	em := &emitter{ctx: ctx, out: out}

	s.scheduler.Go(func() {
		defer close(out)
		sum := c.Crawl(ctx, req, em.item)
		em.finish(sum)

		s.logger.Debug().
			Str("source", c.Name()).
			Str("stop", string(sum.Stop)).
			Int("delivered", sum.Delivered).
			Msg("Stream finished")
	})
	return out
}

// StreamFunc is Stream for callback consumers. onEvent runs for every event
// and onComplete exactly once, with nil on a normal end.
func (s *Service) StreamFunc(ctx context.Context, c crawl.Crawler, req models.CrawlRequest, onEvent func(models.Event), onComplete func(error)) {
	msgs := s.Stream(ctx, c, req)

	s.scheduler.Go(func() {
		completed := false
		for m := range msgs {
			switch m.Kind {
			case KindItem:
				onEvent(m.Event)
			case KindDone:
				completed = true
				onComplete(nil)
			case KindError:
				completed = true
				onComplete(m.Err)
			}
		}
		if !completed {
			err := ctx.Err()
			if err == nil {
				err = ErrStreamClosed
			}
			onComplete(err)
		}
	})
}

func prealloc(count int) int {
	return min(max(count, 0), maxPrealloc)
}

// emitter sends one stream's messages. Once ended, nothing more is sent.
type emitter struct {
	ctx   context.Context
	out   chan<- Message
	ended atomic.Bool
}

func (e *emitter) item(ev models.Event) bool {
	if e.ended.Load() {
		return false
	}
	if e.ctx.Err() != nil {
		e.ended.Store(true)
		return false
	}
	return e.send(Message{Kind: KindItem, Event: ev})
}

func (e *emitter) finish(sum crawl.Summary) {
	if !e.ended.CompareAndSwap(false, true) {
		return
	}

	m := Message{Kind: KindDone, Summary: sum}
	if sum.Err != nil {
		m.Kind = KindError
		m.Err = sum.Err
	}
	e.send(m)
}

func (e *emitter) send(m Message) bool {
	select {
	case e.out <- m:
		return true
	default:
	}

	select {
	case e.out <- m:
		return true
	case <-e.ctx.Done():
		e.ended.Store(true)
		return false
	}
}
