package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/law-makers/hackscout/pkg/models"
)

// SaveJSON writes events as an indented JSON array
func SaveJSON(events []models.Event, path string) error {
	if events == nil {
		events = []models.Event{}
	}
	content, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

// LineWriter writes one JSON object per line, for streaming output
type LineWriter struct {
	enc *json.Encoder
}

// NewLineWriter returns a LineWriter on w
func NewLineWriter(w io.Writer) *LineWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &LineWriter{enc: enc}
}

// Write encodes v followed by a newline
func (lw *LineWriter) Write(v any) error {
	return lw.enc.Encode(v)
}
