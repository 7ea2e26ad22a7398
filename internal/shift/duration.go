package shift

import (
	"fmt"
	"time"
)

// FormatDuration renders a shift duration the way the end-of-shift
// notification spells it out, using floor division into whole hours
// and remainder minutes.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	return fmt.Sprintf("%d Stunden und %d Minuten", hours, minutes)
}

// FormatHoursMinutes renders a minute count as HH:MM for ledger rows.
func FormatHoursMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
