package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Display strings (account names, folder and file names) are plain text, so
// the strict policy strips every tag rather than allowing a safe subset.
var sanitizer = bluemonday.StrictPolicy()

// SanitizeName strips HTML from a user-supplied display string and trims the
// surrounding whitespace, so stored names render safely everywhere.
func SanitizeName(input string) string {
	return strings.TrimSpace(sanitizer.Sanitize(input))
}
