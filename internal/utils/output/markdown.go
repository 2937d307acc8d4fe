package output

import (
	"fmt"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/law-makers/hackscout/pkg/models"
)

// SaveMarkdown writes events as a Markdown document, one section per event
func SaveMarkdown(events []models.Event, path string) error {
	content, err := RenderMarkdown(events)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// RenderMarkdown renders events as Markdown. HTML fields are cleaned and
// converted; relative links resolve against each event's URL.
func RenderMarkdown(events []models.Event) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	var sb strings.Builder
	sb.WriteString("# Hackathons\n\n")
	fmt.Fprintf(&sb, "%d events\n", len(events))

	for _, ev := range events {
		sb.WriteString("\n---\n\n")
		if ev.URL != "" {
			fmt.Fprintf(&sb, "## [%s](%s)\n\n", ev.Title, ev.URL)
		} else {
			fmt.Fprintf(&sb, "## %s\n\n", ev.Title)
		}

		for _, f := range []struct{ label, value string }{
			{"Provider", string(ev.Provider)},
			{"Location", ev.Location},
			{"Date", ev.Date},
		} {
			if f.value != "" {
				fmt.Fprintf(&sb, "- **%s:** %s\n", f.label, f.value)
			}
		}
		if ev.ImageURL != "" {
			fmt.Fprintf(&sb, "\n![%s](%s)\n", ev.Title, ev.ImageURL)
		}
		if ev.Blurb != "" {
			fmt.Fprintf(&sb, "\n> %s\n", strings.Join(strings.Fields(ev.Blurb), " "))
		}

		for _, s := range []struct{ heading, html string }{
			{"About", ev.Description},
			{"Requirements", ev.Requirements},
			{"Judges", ev.Judges},
			{"Judging criteria", ev.JudgingCriteria},
		} {
			if strings.TrimSpace(s.html) == "" {
				continue
			}
			body, err := toMarkdown(converter, s.html, ev.URL)
			if err != nil {
				return "", fmt.Errorf("%s of %q: %w", strings.ToLower(s.heading), ev.Title, err)
			}
			if body != "" {
				fmt.Fprintf(&sb, "\n### %s\n\n%s\n", s.heading, body)
			}
		}
	}
	return sb.String(), nil
}

func toMarkdown(converter *md.Converter, fragment, base string) (string, error) {
	cleaned, err := CleanHTML(fragment, base)
	if err != nil {
		return "", err
	}
	out, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
