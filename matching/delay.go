package matching

import (
	"github.com/theoremus-urban-solutions/geotren-matcher/feed"
	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
)

// EstimateDelay returns the delay in whole minutes, never negative. Explicit
// on-time data from the feed wins; otherwise nowMinute is measured against
// the scheduled minute on the 24h clock, or zero when scheduledMinutes is
// invalid. Both arguments are minutes, as from schedule.MinuteOfDay.
func EstimateDelay(rec *feed.Record, scheduledMinutes, nowMinute int) int {
	if rec.OnTime != nil {
		if *rec.OnTime || rec.DelayMinutes == nil {
			return 0
		}
		if d := *rec.DelayMinutes; d > 0 {
			return d
		}
		return 0
	}
	if scheduledMinutes < 0 {
		return 0
	}
	return max(schedule.SignedDiff(nowMinute, scheduledMinutes), 0)
}
