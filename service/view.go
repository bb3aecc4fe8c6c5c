package service

import (
	"github.com/theoremus-urban-solutions/geotren-matcher/publish"
	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
	"github.com/theoremus-urban-solutions/geotren-matcher/tracking"
)

// BuildTrains renders tracked matches for consumers. It returns the trains
// and how many of them are notably delayed.
func BuildTrains(store *schedule.Store, matches []tracking.Match, notableDelay int) ([]publish.Train, int) {
	trains := make([]publish.Train, 0, len(matches))
	delayed := 0
	for _, m := range matches {
		t := publish.Train{
			FeedID:      m.FeedID,
			RunCode:     m.RunCode,
			Position:    m.Position,
			UnitType:    m.UnitType,
			CurrentStop: m.CurrentStop,
			NextStop:    m.NextStop,
			OnTime:      m.OnTime,
			Delay:       m.Delay,
			Notable:     m.Delay >= notableDelay,
			UpdatedAt:   m.UpdatedAt,
		}
		if run, ok := store.Run(m.RunCode); ok {
			t.Line = run.LinePrefix()
			t.Direction = run.Direction
			if m.NextStop != "" {
				t.NextStopTime, _ = run.TimeAt(m.NextStop)
			}
		}
		if t.Notable {
			delayed++
		}
		trains = append(trains, t)
	}
	return trains, delayed
}
