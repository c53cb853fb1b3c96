// Package htmlsanitize wraps bluemonday policies for the two kinds of
// free text this app renders: plain text that must carry no markup at all
// (titles, names, skills) and description text where we preserve nothing
// but the characters themselves and render line breaks in the template.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Plain strips all HTML from s, leaving only text content.
func Plain(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
