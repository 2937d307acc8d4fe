package output

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/law-makers/hackscout/pkg/models"
)

// csvHeader matches the JSON field names
var csvHeader = []string{
	"id", "title", "blurb", "description", "url", "location", "date", "image_url",
	"provider", "requirements", "judges", "judging_criteria", "type", "scraped_at",
}

// SaveCSV writes one row per event. HTML fields are reduced to plain text.
func SaveCSV(events []models.Event, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, ev := range events {
		row := []string{
			strconv.FormatInt(ev.ID, 10),
			ev.Title,
			ev.Blurb,
			PlainText(ev.Description),
			ev.URL,
			ev.Location,
			ev.Date,
			ev.ImageURL,
			string(ev.Provider),
			PlainText(ev.Requirements),
			PlainText(ev.Judges),
			PlainText(ev.JudgingCriteria),
			string(ev.Type),
			ev.ScrapedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
