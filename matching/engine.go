package matching

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/geotren-matcher/feed"
	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
	"github.com/theoremus-urban-solutions/geotren-matcher/tracking"
)

const (
	currentStopBonus = 5
	sequenceBonus    = 10
)

// Options configures an Engine.
type Options struct {
	// Lines is the allow-list of two-character line codes. Empty allows all.
	Lines              []string
	WindowMinutes      int
	MinSequenceMatches int
}

// DefaultOptions returns the production line set and thresholds.
func DefaultOptions() Options {
	return Options{
		Lines:              []string{"R5", "R6", "S3", "S4", "S8", "S9", "L8"},
		WindowMinutes:      10,
		MinSequenceMatches: 2,
	}
}

// Result is one match produced by a cycle.
type Result struct {
	FeedID        string `json:"feedId"`
	RunCode       string `json:"run"`
	Line          string `json:"line"`
	Direction     string `json:"direction"`
	Stop          string `json:"stop"`
	MatchedStop   string `json:"matchedStop"`
	ScheduledTime string `json:"scheduledTime"`
	Delay         int    `json:"delay"`
	Revalidated   bool   `json:"revalidated"`
}

// Engine runs the per-cycle correlation and owns the match tracker.
type Engine struct {
	lines   map[string]struct{}
	window  int
	minSeq  int
	tracker *tracking.Tracker
	log     zerolog.Logger
}

// NewEngine creates an engine with an empty tracker.
func NewEngine(opts Options, logger zerolog.Logger) *Engine {
	e := &Engine{
		window:  opts.WindowMinutes,
		minSeq:  opts.MinSequenceMatches,
		tracker: tracking.NewTracker(),
		log:     logger.With().Str("component", "matching").Logger(),
	}
	if len(opts.Lines) > 0 {
		e.lines = make(map[string]struct{}, len(opts.Lines))
		for _, l := range opts.Lines {
			e.lines[schedule.LinePrefix(l)] = struct{}{}
		}
	}
	if e.minSeq < 1 {
		e.minSeq = 1
	}
	return e
}

// Tracked returns a copy of the tracker contents ordered by feed id.
func (e *Engine) Tracked() []tracking.Match {
	return e.tracker.Snapshot()
}

// TrackedCount returns the number of tracked feed ids.
func (e *Engine) TrackedCount() int {
	return e.tracker.Len()
}

// Reap evicts tracked ids that are absent from records and returns them.
func (e *Engine) Reap(records []feed.Record) []string {
	removed := e.tracker.Reap(feed.IDs(records))
	if len(removed) > 0 {
		e.log.Debug().Strs("ids", removed).Msg("reaped stale matches")
	}
	return removed
}

// Reset forgets every tracked match.
func (e *Engine) Reset() {
	e.tracker.Reset()
}

// Correlate matches records against store at now, updating the tracker. It
// never fails: records that cannot be matched produce no result. now is
// truncated to the minute. Distances are taken on the 24h clock, so a stop at
// 23:58 is two minutes from 00:00 rather than a day away.
func (e *Engine) Correlate(store *schedule.Store, records []feed.Record, now time.Time) []Result {
	clock := schedule.MinuteOfDay(now)
	results := make([]Result, 0, len(records))
	consumed := make(map[string]struct{})

	for i := range records {
		rec := &records[i]
		if !e.allowed(rec.LinePrefix()) {
			continue
		}
		current := rec.CurrentStop()

		if tracked, ok := e.tracker.Get(rec.ID); ok {
			res, done := e.revalidate(store, rec, current, tracked, consumed, now, clock)
			if done {
				if res != nil {
					results = append(results, *res)
				}
				continue
			}
			e.tracker.Delete(rec.ID)
			e.log.Debug().Str("feed_id", rec.ID).Str("run", tracked.RunCode).Msg("tracked match lost")
		}

		if res := e.search(store, rec, current, consumed, now, clock); res != nil {
			results = append(results, *res)
		}
	}
	return results
}

func (e *Engine) allowed(prefix string) bool {
	if e.lines == nil {
		return prefix != ""
	}
	_, ok := e.lines[prefix]
	return ok
}

// candidate reports whether stop may be considered for rec at clock and
// returns its distance in minutes.
func (e *Engine) candidate(stop schedule.OrderedStop, rec *feed.Record, current string, clock int) (int, bool) {
	if !stop.Valid() {
		return 0, false
	}
	diff := schedule.AbsDiff(clock, stop.Minutes)
	if diff > e.window {
		return 0, false
	}
	if stop.Stop != current && !rec.HasUpcoming(stop.Stop) {
		return 0, false
	}
	return diff, true
}

// revalidate checks a tracked match. done is false when the record must fall
// through to a fresh search.
func (e *Engine) revalidate(store *schedule.Store, rec *feed.Record, current string, tracked tracking.Match, consumed map[string]struct{}, now time.Time, clock int) (*Result, bool) {
	run, ok := store.Run(tracked.RunCode)
	if !ok {
		return nil, true
	}
	if _, used := consumed[run.Code]; used {
		return nil, true
	}

	ordered := store.OrderedStops(run)
	for _, stop := range ordered {
		if _, ok := e.candidate(stop, rec, current, clock); !ok {
			continue
		}
		if stop.Stop != current && !ValidateSequence(rec.Upcoming, ordered, stop.Stop, e.minSeq) {
			continue
		}

		ref := stop.Minutes
		for _, o := range ordered {
			if o.Stop == current && o.Valid() {
				ref = o.Minutes
				break
			}
		}
		delay := EstimateDelay(rec, ref, clock)
		e.tracker.Put(e.track(rec, run.Code, current, delay, now))
		consumed[run.Code] = struct{}{}
		return &Result{
			FeedID:        rec.ID,
			RunCode:       run.Code,
			Line:          rec.LinePrefix(),
			Direction:     rec.Direction,
			Stop:          current,
			MatchedStop:   stop.Stop,
			ScheduledTime: stop.Time,
			Delay:         delay,
			Revalidated:   true,
		}, true
	}
	return nil, false
}

// search scores every eligible run and binds the best one.
func (e *Engine) search(store *schedule.Store, rec *feed.Record, current string, consumed map[string]struct{}, now time.Time, clock int) *Result {
	prefix := rec.LinePrefix()
	var (
		bestScore int
		bestRun   *schedule.Run
		bestStop  schedule.OrderedStop
	)
	for _, run := range store.Runs() {
		if run.LinePrefix() != prefix || run.Direction != rec.Direction {
			continue
		}
		if _, used := consumed[run.Code]; used {
			continue
		}
		ordered := store.OrderedStops(run)
		for _, stop := range ordered {
			diff, ok := e.candidate(stop, rec, current, clock)
			if !ok {
				continue
			}
			score := e.window - diff
			if stop.Stop == current {
				score += currentStopBonus
			}
			if ValidateSequence(rec.Upcoming, ordered, stop.Stop, e.minSeq) {
				score += sequenceBonus
			}
			if score > bestScore {
				bestScore = score
				bestRun = run
				bestStop = stop
			}
		}
	}
	if bestRun == nil {
		return nil
	}

	delay := EstimateDelay(rec, bestStop.Minutes, clock)
	e.tracker.Put(e.track(rec, bestRun.Code, current, delay, now))
	consumed[bestRun.Code] = struct{}{}
	e.log.Debug().
		Str("feed_id", rec.ID).
		Str("run", bestRun.Code).
		Str("stop", bestStop.Stop).
		Int("score", bestScore).
		Msg("new match")

	return &Result{
		FeedID:        rec.ID,
		RunCode:       bestRun.Code,
		Line:          prefix,
		Direction:     rec.Direction,
		Stop:          current,
		MatchedStop:   bestStop.Stop,
		ScheduledTime: bestStop.Time,
		Delay:         delay,
	}
}

func (e *Engine) track(rec *feed.Record, runCode, current string, delay int, now time.Time) tracking.Match {
	return tracking.Match{
		FeedID:      rec.ID,
		RunCode:     runCode,
		CurrentStop: current,
		NextStop:    rec.NextStop(),
		Position:    rec.Position,
		UnitType:    rec.UnitType,
		OnTime:      rec.OnTime,
		Delay:       delay,
		UpdatedAt:   now,
	}
}
