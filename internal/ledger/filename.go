package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Filename derives the canonical document name for a person's monthly
// ledger. It is pure: the same inputs always produce the same name, so
// re-derivation always finds the same document on the share.
func Filename(personName string, month time.Month, year int) string {
	return fmt.Sprintf("monthly_data_%s_%s_%d.xlsx", sanitizeName(personName), month.String(), year)
}

// PreviousMonth steps one calendar month back, adjusting the year
// across the January boundary.
func PreviousMonth(month time.Month, year int) (time.Month, int) {
	if month == time.January {
		return time.December, year - 1
	}
	return month - 1, year
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '/' || r == '\\' || r == ':':
			// path separators have no place in a share filename
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
