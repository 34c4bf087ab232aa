package catalog

import (
	"fmt"
	"time"
)

// FormatElapsed renders the time between t and now, e.g. "5 minutes ago".
// Months are 30 days and years are 12 months.
func FormatElapsed(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	seconds := int64(now.Sub(t) / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	if seconds < 60 {
		return fmt.Sprintf("%d seconds ago", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d minutes ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%d days ago", days)
	}
	months := days / 30
	if months < 12 {
		return fmt.Sprintf("%d months ago", months)
	}
	return fmt.Sprintf("%d years ago", months/12)
}
