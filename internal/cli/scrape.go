package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/hackscout/internal/app"
	"github.com/law-makers/hackscout/internal/crawl"
	"github.com/law-makers/hackscout/internal/delivery"
	"github.com/law-makers/hackscout/internal/downloader"
	"github.com/law-makers/hackscout/internal/ui"
	"github.com/law-makers/hackscout/internal/utils/output"
	"github.com/law-makers/hackscout/pkg/models"
)

var (
	domain     string
	location   string
	count      int
	stream     bool
	outputPath string
	timestamp  bool
	imagesDir  string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <source>",
	Short: "Crawl a source for hackathons",
	Long: `Crawls listing pages of a source, keeps events matching the domain keyword and
location, and enriches each one from its detail page.

Batch mode prints a summary table once the crawl ends. With --stream every event is
written to stdout as one JSON object per line as soon as it is ready, followed by a
final "done" or "error" line.`,
	Example: `  # Ten AI hackathons from Devpost
  hackscout scrape devpost --domain=ai

  # Online events from the Devpost API, saved as Markdown
  hackscout scrape devpost-api --location=online --output=events.md

  # Stream MLH events as NDJSON
  hackscout scrape mlh --count=25 --stream

  # Save thumbnails next to a timestamped CSV
  hackscout scrape devpost-api --output=events.csv --timestamp --images=./thumbs`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&domain, "domain", "d", "", "Keyword the event title must contain (case-insensitive)")
	scrapeCmd.Flags().StringVarP(&location, "location", "l", "", "Location the event must mention, \"online\" also matches virtual events")
	scrapeCmd.Flags().IntVarP(&count, "count", "n", 0, "Number of events to collect (default 10, max 50)")
	scrapeCmd.Flags().BoolVar(&stream, "stream", false, "Write events to stdout as NDJSON while crawling")
	scrapeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "File to save events to (.json, .csv or .md)")
	scrapeCmd.Flags().BoolVar(&timestamp, "timestamp", false, "Append a timestamp to the output filename")
	scrapeCmd.Flags().StringVar(&imagesDir, "images", "", "Directory to download event thumbnails into")
	scrapeCmd.Flags().Int("max-pages", 0, "Stop after this many listing pages, 0 crawls until exhausted")
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	c, err := a.Registry.Get(args[0])
	if err != nil {
		return fmt.Errorf("%w (see 'hackscout sources')", err)
	}

	if outputPath != "" {
		if _, err := output.FormatOf(outputPath); err != nil {
			return err
		}
	}

	req := models.CrawlRequest{
		Domain:   strings.TrimSpace(domain),
		Location: strings.TrimSpace(location),
		Count:    a.Config.ClampCount(count),
	}
	log.Debug().
		Str("source", c.Name()).
		Str("domain", req.Domain).
		Str("location", req.Location).
		Int("count", req.Count).
		Msg("Starting scrape")

	var (
		events []models.Event
		sum    crawl.Summary
	)
	if stream {
		events, sum = runStream(cmd.Context(), a, c, req, cmd.OutOrStdout())
	} else {
		events, sum = runBatch(cmd.Context(), a, c, req)
		printSummary(cmd.OutOrStdout(), events, sum)
	}

	if outputPath != "" {
		path := outputPath
		if timestamp {
			path = output.TimestampedPath(path, time.Now())
		}
		if err := output.Save(events, path); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		log.Info().Str("file", path).Int("events", len(events)).Msg("Output saved")
		if !stream {
			fmt.Fprintf(cmd.OutOrStdout(), "%s Saved to %s\n", ui.Success("✓"), path)
		}
	}

	if imagesDir != "" {
		if err := downloadImages(cmd.Context(), a, events, imagesDir, stream); err != nil {
			return err
		}
	}

	if sum.Err != nil {
		return fmt.Errorf("crawl stopped early (%s) after %d event(s): %w", sum.Stop, sum.Delivered, sum.Err)
	}
	return nil
}

func runBatch(ctx context.Context, a *app.Application, c crawl.Crawler, req models.CrawlRequest) ([]models.Event, crawl.Summary) {
	bar := newBar(req.Count, "Crawling "+c.Name(), quiet(a))
	events, sum := a.Delivery.Scrape(ctx, c, req, func(ev models.Event) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	return events, sum
}

// streamEnd is the last NDJSON line of a stream
type streamEnd struct {
	Type      string  `json:"type"`
	CrawlID   string  `json:"crawl_id"`
	Delivered int     `json:"delivered"`
	Pages     int     `json:"pages"`
	Stop      string  `json:"stop"`
	Elapsed   float64 `json:"elapsed_seconds"`
	Error     string  `json:"error,omitempty"`
}

func runStream(ctx context.Context, a *app.Application, c crawl.Crawler, req models.CrawlRequest, w io.Writer) ([]models.Event, crawl.Summary) {
	ctx, cancel := context.WithTimeout(ctx, a.Config.StreamTimeout)
	defer cancel()

	lw := output.NewLineWriter(w)
	var (
		events []models.Event
		sum    crawl.Summary
	)
	for msg := range a.Delivery.Stream(ctx, c, req) {
		switch msg.Kind {
		case delivery.KindItem:
			events = append(events, msg.Event)
			if err := lw.Write(msg.Event); err != nil {
				log.Warn().Err(err).Msg("Stdout closed, stopping stream")
				cancel()
			}
		case delivery.KindDone, delivery.KindError:
			sum = msg.Summary
			end := streamEnd{
				Type:      msg.Kind.String(),
				CrawlID:   sum.CrawlID,
				Delivered: sum.Delivered,
				Pages:     sum.Pages,
				Stop:      string(sum.Stop),
				Elapsed:   sum.Elapsed.Seconds(),
			}
			if msg.Err != nil {
				end.Error = msg.Err.Error()
			}
			_ = lw.Write(end)
		}
	}
	return events, sum
}

func printSummary(w io.Writer, events []models.Event, sum crawl.Summary) {
	if len(events) == 0 {
		fmt.Fprintln(w, "\n"+ui.Info("No matching events found."))
	} else {
		fmt.Fprintf(w, "\n%s %s\n", ui.Bold("Found"), ui.Value(fmt.Sprintf("%d event(s):", len(events))))
		fmt.Fprintln(w, strings.Repeat("=", 80))
		for i, ev := range events {
			fmt.Fprintf(w, "%s %s\n", ui.Dim(fmt.Sprintf("%2d.", i+1)), ui.Value(ev.Title))
			if meta := joinNonEmpty(" · ", ev.Location, ev.Date); meta != "" {
				fmt.Fprintf(w, "    %s\n", ui.Dim(meta))
			}
			if ev.URL != "" {
				fmt.Fprintf(w, "    %s\n", ui.Cyan(ev.URL))
			}
		}
		fmt.Fprintln(w, strings.Repeat("=", 80))
	}

	stop := ui.Success(string(sum.Stop))
	if sum.Stop.Abnormal() {
		stop = ui.Error(string(sum.Stop))
	}
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", ui.Label(label), value)
	}
	fmt.Fprintf(w, "\n%s\n", ui.Bold("Summary:"))
	row("Delivered", ui.Success(strconv.Itoa(sum.Delivered)))
	row("Pages", ui.Value(strconv.Itoa(sum.Pages)))
	row("Filtered out", ui.Value(fmt.Sprintf("%d (%d duplicate)", sum.Rejected+sum.Duplicates, sum.Duplicates)))
	if sum.DetailFailures > 0 {
		row("Detail failures", ui.Info(strconv.Itoa(sum.DetailFailures)))
	}
	row("Stop", stop)
	row("Elapsed", ui.Value(sum.Elapsed.Round(time.Millisecond).String()))
}

func downloadImages(ctx context.Context, a *app.Application, events []models.Event, dir string, silent bool) error {
	jobs := downloader.JobsFor(events)
	if len(jobs) == 0 {
		log.Info().Msg("No event images to download")
		return nil
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("invalid images directory: %w", err)
	}

	bar := newBar(len(jobs), "Images", silent || quiet(a))
	results := a.Images.DownloadBatch(ctx, jobs, absDir, func(downloader.Result) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	failed := 0
	var total int64
	for _, r := range results {
		if !r.Success() {
			failed++
			log.Warn().Err(r.Err).Str("url", r.Job.ImageURL).Msg("Image download failed")
			continue
		}
		total += r.Size
	}
	log.Info().
		Int("saved", len(results)-failed).
		Int("failed", failed).
		Str("size", formatBytes(total)).
		Str("dir", absDir).
		Msg("Images downloaded")

	if failed > 0 {
		return fmt.Errorf("%d image download(s) failed", failed)
	}
	return nil
}

func newBar(total int, description string, silent bool) *progressbar.ProgressBar {
	if silent {
		return progressbar.DefaultSilent(int64(total), description)
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

func quiet(a *app.Application) bool {
	return a.Config.LogLevel == "error"
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// formatBytes formats byte count as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
