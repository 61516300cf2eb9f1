package internal

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Version is the application version reported by --version
const Version = "0.3.0"

// GenerateRequestID creates a unique ID for one pipeline run.
// It names per-request artifacts such as the pronunciation clip.
func GenerateRequestID() string {
	return uuid.NewString()
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isAlphaNumeric reports letters and digits of any script, so Urdu input
// survives sanitising as well as Latin.
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
