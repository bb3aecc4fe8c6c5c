package schedule

import (
	"strconv"
	"strings"
	"time"
)

const (
	// MinutesPerDay is the length of the clock circle.
	MinutesPerDay = 24 * 60
	// ServiceDayStart is the minute-of-day before which times belong to the
	// previous service day.
	ServiceDayStart = 4 * 60
)

// ParseClock parses "HH:MM" (seconds are accepted and ignored) into minutes
// since midnight.
func ParseClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 47 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// Adjust shifts early-morning minutes onto the end of the service day.
func Adjust(minutes int) int {
	if minutes < ServiceDayStart {
		return minutes + MinutesPerDay
	}
	return minutes
}

// MinuteOfDay truncates t to minute resolution in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// SignedDiff returns now-scheduled in minutes along the shortest arc of the
// 24h clock, in the range (-720, 720].
func SignedDiff(now, scheduled int) int {
	d := (now - scheduled) % MinutesPerDay
	if d < 0 {
		d += MinutesPerDay
	}
	if d > MinutesPerDay/2 {
		d -= MinutesPerDay
	}
	return d
}

// AbsDiff returns the absolute clock distance between two minute values.
func AbsDiff(a, b int) int {
	d := SignedDiff(a, b)
	if d < 0 {
		return -d
	}
	return d
}
