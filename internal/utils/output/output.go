// Package output writes crawled events to JSON, CSV and Markdown files
package output

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/law-makers/hackscout/pkg/models"
)

// Format is an export file format
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

// FormatOf picks the format from a file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use .json, .csv or .md)", filepath.Ext(path))
}

// Save writes events to path in the format its extension names
func Save(events []models.Event, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatCSV:
		return SaveCSV(events, path)
	case FormatMarkdown:
		return SaveMarkdown(events, path)
	}
	return SaveJSON(events, path)
}

// TimestampedPath inserts t before the extension: events.json becomes
// events-20260301-120000.json
func TimestampedPath(path string, t time.Time) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + t.Format("20060102-150405") + ext
}
