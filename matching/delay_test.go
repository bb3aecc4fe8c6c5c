package matching

import (
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/geotren-matcher/feed"
)

func at(h, m, s int) time.Time {
	return time.Date(2026, 10, 17, h, m, s, 0, time.UTC)
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestEstimateDelay(t *testing.T) {
	tests := []struct {
		name  string
		rec   feed.Record
		sched int
		now   int
		want  int
	}{
		{name: "computed late", sched: 600, now: 603, want: 3},
		{name: "on the minute", sched: 600, now: 600, want: 0},
		{name: "early clamps to zero", sched: 600, now: 595, want: 0},
		{name: "late across midnight", sched: 23*60 + 58, now: 2, want: 4},
		{name: "adjusted early-morning minutes", sched: 10 + 1440, now: 12, want: 2},
		{name: "early across midnight", sched: 5 + 1440, now: 23*60 + 58, want: 0},
		{name: "invalid scheduled time", sched: -1, now: 600, want: 0},
		{name: "explicit on time", rec: feed.Record{OnTime: boolPtr(true), DelayMinutes: intPtr(9)}, sched: 600, now: 605, want: 0},
		{name: "explicit late", rec: feed.Record{OnTime: boolPtr(false), DelayMinutes: intPtr(7)}, sched: 600, now: 600, want: 7},
		{name: "explicit late without value", rec: feed.Record{OnTime: boolPtr(false)}, sched: 600, now: 605, want: 0},
		{name: "explicit negative", rec: feed.Record{OnTime: boolPtr(false), DelayMinutes: intPtr(-4)}, sched: 600, now: 600, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateDelay(&tt.rec, tt.sched, tt.now)
			if got != tt.want {
				t.Errorf("EstimateDelay = %d, want %d", got, tt.want)
			}
			if got < 0 {
				t.Errorf("delay must never be negative, got %d", got)
			}
		})
	}
}
