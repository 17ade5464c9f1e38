// Package extract salvages the final document out of a raw model
// response. It is a best-effort policy, not a parser: it always
// returns some text.
package extract

import (
	"regexp"
	"strings"

	"github.com/rawitjan/Forte-hackathon/internal/prompt"
)

var headingPattern = regexp.MustCompile(`(?m)^#+\s`)

// Extract cleans a raw critique-pass response. Priority order: the
// substring between the sentinel markers, trimmed; else everything
// from the first markdown heading line; else the input unchanged.
func Extract(raw string) string {
	start := strings.Index(raw, prompt.StartSentinel)
	if start >= 0 {
		rest := raw[start+len(prompt.StartSentinel):]
		end := strings.Index(rest, prompt.EndSentinel)
		if end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}

	if loc := headingPattern.FindStringIndex(raw); loc != nil {
		return raw[loc[0]:]
	}

	return raw
}
