package headers

import (
	"net/textproto"
	"strings"
)

// ParseHeaders converts "Key: Value" strings into a map with canonical keys.
// Malformed entries and empty keys are skipped; later entries win.
func ParseHeaders(h []string) map[string]string {
	m := make(map[string]string)
	for _, hdr := range h {
		parts := strings.SplitN(hdr, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		m[textproto.CanonicalMIMEHeaderKey(key)] = strings.TrimSpace(parts[1])
	}
	return m
}
