package web

import (
	"fmt"
	"time"
)

// Display formatting for template rendering. The statistics core keeps
// full precision; rounding happens only here.

func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%.0f m", meters)
}

func FormatDuration(seconds int64) string {
	d := time.Duration(seconds) * time.Second

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
}

// FormatDurationPtr renders nullable durations, showing a dash for
// tracks without time data.
func FormatDurationPtr(seconds *int64) string {
	if seconds == nil {
		return "–"
	}
	return FormatDuration(*seconds)
}

func FormatSpeed(kmh float64) string {
	return fmt.Sprintf("%.1f km/h", kmh)
}

func FormatElevation(meters float64) string {
	return fmt.Sprintf("%.0f m", meters)
}

func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
