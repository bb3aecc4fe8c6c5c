package utils

import (
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
)

// Iso8601 formats t in ISO8601 with its own offset.
func Iso8601(t time.Time) string {
	return t.Format(time.RFC3339)
}

// Iso8601Now returns the current time in ISO8601 format
func Iso8601Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ValidUntil returns base+d in ISO8601, or "" when d is not positive.
func ValidUntil(base time.Time, d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return Iso8601(base.Add(d))
}

// ServiceDate returns the YYYY-MM-DD service day of t. Times before the
// service day start belong to the previous day.
func ServiceDate(t time.Time) string {
	if schedule.MinuteOfDay(t) < schedule.ServiceDayStart {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format("2006-01-02")
}

// IsoDurationFromMinutes formats a delay as an ISO-8601 duration.
func IsoDurationFromMinutes(minutes int) string {
	if minutes <= 0 {
		return "PT0S"
	}
	if minutes >= 60 {
		if minutes%60 == 0 {
			return fmt.Sprintf("PT%dH", minutes/60)
		}
		return fmt.Sprintf("PT%dH%dM", minutes/60, minutes%60)
	}
	return fmt.Sprintf("PT%dM", minutes)
}

// ClockOnDay anchors an "HH:MM" schedule time to the service day of ref and
// returns it in ISO8601. It returns "" for unparseable times.
func ClockOnDay(ref time.Time, clock string) string {
	t, ok := ClockTimeOnDay(ref, clock)
	if !ok {
		return ""
	}
	return Iso8601(t)
}

// ClockTimeOnDay anchors an "HH:MM" schedule time to the service day of ref.
func ClockTimeOnDay(ref time.Time, clock string) (time.Time, bool) {
	m, ok := schedule.ParseClock(clock)
	if !ok {
		return time.Time{}, false
	}
	day := ref
	if schedule.MinuteOfDay(ref) < schedule.ServiceDayStart {
		day = day.AddDate(0, 0, -1)
	}
	y, mo, d := day.Date()
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, ref.Location())
	return midnight.Add(time.Duration(schedule.Adjust(m)) * time.Minute), true
}
