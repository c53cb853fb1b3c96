// Package normalize centralizes the small string normalizations applied at
// store boundaries so comparisons behave the same everywhere.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses interior runs of whitespace.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns the case- and diacritic-insensitive form used for *_ci
// fields and search comparisons.
func Fold(s string) string {
	return text.Fold(Name(s))
}

// Role lowercases and trims a role value. It does not validate; callers
// that need a known role use models.IsValidRole.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// VerificationStatus lowercases and trims a company verification status.
func VerificationStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
