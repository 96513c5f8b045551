package fetch

import (
	"regexp"
	"strings"
)

var (
	timestampRe = regexp.MustCompile(`\[?\b\d{1,2}:\d{2}(?::\d{2})?\]?`)
	speakerRe   = regexp.MustCompile(`(?m)^[A-Z][A-Za-z .'-]{1,40}:\s`)
)

// CleanTranscript normalizes raw page text into transcript text suitable for
// extraction: timestamps and leading speaker labels are removed and
// whitespace is collapsed.
func CleanTranscript(text string) string {
	text = timestampRe.ReplaceAllString(text, " ")
	text = speakerRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
