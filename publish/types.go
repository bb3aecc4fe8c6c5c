package publish

import (
	"context"
	"errors"
	"time"

	"github.com/theoremus-urban-solutions/geotren-matcher/feed"
	"github.com/theoremus-urban-solutions/geotren-matcher/matching"
)

// NoticeNoSchedule is published when a cycle runs before any schedule is loaded.
const NoticeNoSchedule = "no schedule loaded: load an itinerary to start matching"

// Train is the rendering view of one tracked feed id.
type Train struct {
	FeedID       string        `json:"feedId"`
	RunCode      string        `json:"run"`
	Line         string        `json:"line"`
	Direction    string        `json:"direction"`
	Position     feed.Position `json:"position"`
	UnitType     string        `json:"unitType"`
	CurrentStop  string        `json:"currentStop,omitempty"`
	NextStop     string        `json:"nextStop,omitempty"`
	NextStopTime string        `json:"nextStopTime,omitempty"`
	OnTime       *bool         `json:"onTime,omitempty"`
	Delay        int           `json:"delay"`
	Notable      bool          `json:"notable"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Publication is everything one cycle produced.
type Publication struct {
	ID      string            `json:"id"`
	At      time.Time         `json:"at"`
	Notice  string            `json:"notice,omitempty"`
	Results []matching.Result `json:"results"`
	Trains  []Train           `json:"trains"`
	Matched int               `json:"matched"`
	Delayed int               `json:"delayed"`
	Reaped  []string          `json:"reaped,omitempty"`
	Records int               `json:"records"`
	Skipped int               `json:"skipped"`
	Error   string            `json:"error,omitempty"`
}

// Publisher receives every cycle's publication.
type Publisher interface {
	Publish(ctx context.Context, p *Publication) error
}

// Multi fans a publication out to every publisher, collecting their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, p *Publication) error {
	var errs []error
	for _, pub := range m {
		if err := pub.Publish(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
