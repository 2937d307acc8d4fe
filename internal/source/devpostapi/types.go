package devpostapi

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text decodes any JSON scalar, list or named object into plain text.
// The API is not consistent about which of those a field holds.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = Text(flatten(v))
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Count decodes a JSON number, a numeric string such as "1,204", or null.
// Anything else decodes as zero.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*c = 0
	switch x := v.(type) {
	case float64:
		*c = Count(x)
	case string:
		n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(x), ",", ""))
		if err == nil {
			*c = Count(n)
		}
	}
	return nil
}

// Flag decodes a JSON bool, "true"/"false", 0/1, or null
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = false
	switch x := v.(type) {
	case bool:
		*f = Flag(x)
	case float64:
		*f = x != 0
	case string:
		ok, _ := strconv.ParseBool(strings.TrimSpace(x))
		*f = Flag(ok)
	}
	return nil
}

func flatten(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		for _, k := range []string{"name", "location", "title", "text", "value"} {
			if s := flatten(x[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

// Hackathon is one entry of the API listing
type Hackathon struct {
	Title              Text  `json:"title"`
	URL                Text  `json:"url"`
	OrganizationName   Text  `json:"organization_name"`
	Location           Text  `json:"location"`
	StartA             Text  `json:"start_a"`
	EndA               Text  `json:"end_a"`
	PrizeAmount        Text  `json:"prize_amount"`
	RegistrationsCount Count `json:"registrations_count"`
	Featured           Flag  `json:"featured"`
	OpenState          Text  `json:"open_state"`
	ThumbnailURL       Text  `json:"thumbnail_url"`

	ShortDescription Text `json:"short_description"`
	Description      Text `json:"description"`
	Blurb            Text `json:"blurb"`
	Summary          Text `json:"summary"`

	Requirements          Text `json:"requirements"`
	ChallengeRequirements Text `json:"challenge_requirements"`
	RequirementsText      Text `json:"requirements_text"`

	Judges    Text `json:"judges"`
	JudgeList Text `json:"judge_list"`

	JudgingCriteria Text `json:"judging_criteria"`
	Criteria        Text `json:"criteria"`
	Judging         Text `json:"judging"`
}

type listingResponse struct {
	Hackathons []Hackathon
	// Skipped counts entries that were not hackathon objects
	Skipped int
}

func (r *listingResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		Hackathons []json.RawMessage `json:"hackathons"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Hackathons = make([]Hackathon, 0, len(raw.Hackathons))
	r.Skipped = 0
	for _, entry := range raw.Hackathons {
		var h Hackathon
		if err := json.Unmarshal(entry, &h); err != nil {
			r.Skipped++
			continue
		}
		r.Hackathons = append(r.Hackathons, h)
	}
	return nil
}

func firstText(values ...Text) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

// DateRange renders the start and end labels as "start - end"
func (h Hackathon) DateRange() string {
	start, end := string(h.StartA), string(h.EndA)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	}
	return end
}

// APIBlurb is the short description the API itself carries
func (h Hackathon) APIBlurb() string {
	return firstText(h.ShortDescription, h.Description, h.Blurb, h.Summary)
}

// Overview summarizes the typed listing fields, used when no description
// is available anywhere
func (h Hackathon) Overview() string {
	var parts []string
	if h.OrganizationName != "" {
		parts = append(parts, "Hosted by "+string(h.OrganizationName))
	}
	if prize := plainText(string(h.PrizeAmount)); prize != "" {
		parts = append(parts, prize+" in prizes")
	}
	if h.RegistrationsCount > 0 {
		parts = append(parts, strconv.Itoa(int(h.RegistrationsCount))+" participants")
	}
	if h.OpenState != "" {
		parts = append(parts, string(h.OpenState))
	}
	if h.Featured {
		parts = append(parts, "featured")
	}
	return strings.Join(parts, " · ")
}

func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
