// Package domain holds the read model of the lead intelligence engine and the
// formatting rules shared by every component.
package domain

import (
	"fmt"
	"time"
)

// TimeAgo renders the distance between ts and now using integer-floor units:
// minutes under an hour, hours under a day, days under a week, then weeks.
func TimeAgo(ts, now time.Time) string {
	elapsed := now.Sub(ts)
	if elapsed < time.Minute {
		return "just now"
	}

	minutes := int(elapsed / time.Minute)
	switch {
	case minutes < 60:
		return plural(minutes, "minute")
	case minutes < 24*60:
		return plural(minutes/60, "hour")
	case minutes < 7*24*60:
		return plural(minutes/(24*60), "day")
	default:
		return plural(minutes/(7*24*60), "week")
	}
}

// ShortAgo renders elapsed time as "Nh ago" under a day and "Nd ago" beyond.
func ShortAgo(ts, now time.Time) string {
	elapsed := now.Sub(ts)
	if elapsed < 0 {
		elapsed = 0
	}
	hours := int(elapsed / time.Hour)
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	return fmt.Sprintf("%dd ago", hours/24)
}

// DaysBetween returns the fractional number of days from ts to now, never
// negative.
func DaysBetween(ts, now time.Time) float64 {
	d := now.Sub(ts).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
