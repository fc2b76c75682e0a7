package ingest

import "strings"

// Segment splits a document into paragraph units. Paragraphs are separated
// by blank lines; surrounding whitespace is trimmed and empty results are
// dropped, so Segment(join(Segment(x))) is stable.
func Segment(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	parts := strings.Split(normalized, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
