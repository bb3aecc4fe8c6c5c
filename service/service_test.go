package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/geotren-matcher/feed"
	"github.com/theoremus-urban-solutions/geotren-matcher/matching"
	"github.com/theoremus-urban-solutions/geotren-matcher/publish"
	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
	"github.com/theoremus-urban-solutions/geotren-matcher/tracking"
)

type fakeFetcher struct {
	mu      sync.Mutex
	snaps   []*feed.Snapshot
	errs    []error
	calls   int
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context) (*feed.Snapshot, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.snaps) {
		return f.snaps[i], nil
	}
	return &feed.Snapshot{}, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type capturePublisher struct {
	mu   sync.Mutex
	pubs []*publish.Publication
	got  chan *publish.Publication
}

func newCapture() *capturePublisher {
	return &capturePublisher{got: make(chan *publish.Publication, 16)}
}

func (c *capturePublisher) Publish(_ context.Context, p *publish.Publication) error {
	c.mu.Lock()
	c.pubs = append(c.pubs, p)
	c.mu.Unlock()
	c.got <- p
	return nil
}

func testStore() *schedule.Store {
	return schedule.NewStore([]schedule.Run{{
		Code:      "R1",
		Line:      "R5",
		Direction: "D",
		Stops:     []schedule.StopTime{{Stop: "A", Time: "10:00"}, {Stop: "B", Time: "10:05"}},
	}})
}

func train1() feed.Record {
	return feed.Record{ID: "1", Line: "R5xx", Direction: "D", StationedAt: "A", Upcoming: []string{"B"}, UnitType: "UT"}
}

func newTestService(opts Options, f Fetcher, pub publish.Publisher, store *schedule.Store) *Service {
	opts.Location = time.UTC
	if opts.NotableDelayMinutes == 0 {
		opts.NotableDelayMinutes = 2
	}
	s := New(opts, f, matching.NewEngine(matching.DefaultOptions(), zerolog.Nop()), pub, store, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2026, 10, 17, 10, 1, 0, 0, time.UTC) }
	return s
}

func TestRunCycle_NoSchedule(t *testing.T) {
	f := &fakeFetcher{}
	pub := newCapture()
	s := newTestService(Options{}, f, pub, nil)

	p, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if p.Notice != publish.NoticeNoSchedule {
		t.Errorf("expected no-schedule notice, got %q", p.Notice)
	}
	if f.Calls() != 0 {
		t.Error("feed must not be fetched without a schedule")
	}
	if len(pub.pubs) != 1 {
		t.Errorf("notice should still be published")
	}
}

func TestRunCycle_MatchThenReap(t *testing.T) {
	f := &fakeFetcher{snaps: []*feed.Snapshot{
		{Records: []feed.Record{train1()}},
		{Records: []feed.Record{}},
	}}
	s := newTestService(Options{}, f, newCapture(), testStore())

	p, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if len(p.Results) != 1 || p.Results[0].RunCode != "R1" || p.Results[0].Delay != 1 {
		t.Fatalf("unexpected results: %+v", p.Results)
	}
	if p.Matched != 1 || len(p.Trains) != 1 {
		t.Fatalf("expected one tracked train, got %+v", p.Trains)
	}
	tr := p.Trains[0]
	if tr.Line != "R5" || tr.Direction != "D" || tr.NextStop != "B" || tr.NextStopTime != "10:05" {
		t.Errorf("unexpected train view: %+v", tr)
	}
	if tr.Notable || p.Delayed != 0 {
		t.Errorf("delay 1 is below the notable threshold")
	}
	if s.LastCycle().IsZero() {
		t.Error("last cycle time not recorded")
	}

	p, _ = s.RunCycle(context.Background())
	if len(p.Reaped) != 1 || p.Reaped[0] != "1" || p.Matched != 0 || len(p.Results) != 0 {
		t.Errorf("expected id 1 reaped, got %+v", p)
	}
}

func TestRunCycle_FetchErrorWipes(t *testing.T) {
	f := &fakeFetcher{
		snaps: []*feed.Snapshot{{Records: []feed.Record{train1()}}},
		errs:  []error{nil, errors.New("HTTP 503")},
	}
	s := newTestService(Options{}, f, newCapture(), testStore())

	_, _ = s.RunCycle(context.Background())
	p, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("default behavior degrades instead of failing: %v", err)
	}
	if p.Error == "" || p.Matched != 0 || len(p.Reaped) != 1 {
		t.Errorf("expected wipe with error recorded, got %+v", p)
	}
}

func TestRunCycle_FetchErrorKeepsTracked(t *testing.T) {
	f := &fakeFetcher{
		snaps: []*feed.Snapshot{{Records: []feed.Record{train1()}}},
		errs:  []error{nil, errors.New("timeout")},
	}
	pub := newCapture()
	s := newTestService(Options{KeepTrackedOnFetchError: true}, f, pub, testStore())

	_, _ = s.RunCycle(context.Background())
	p, err := s.RunCycle(context.Background())
	if !errors.Is(err, ErrCycleSkipped) || p != nil {
		t.Fatalf("expected skipped cycle, got %v %+v", err, p)
	}
	if s.engine.TrackedCount() != 1 {
		t.Errorf("tracker should be untouched, have %d", s.engine.TrackedCount())
	}
	if len(pub.pubs) != 1 {
		t.Errorf("skipped cycle must not publish, got %d publications", len(pub.pubs))
	}
}

func TestLoadSchedule_ResetsTrackerAndTriggers(t *testing.T) {
	f := &fakeFetcher{snaps: []*feed.Snapshot{{Records: []feed.Record{train1()}}}}
	s := newTestService(Options{}, f, newCapture(), testStore())
	_, _ = s.RunCycle(context.Background())

	s.LoadSchedule(testStore())
	if s.engine.TrackedCount() != 0 {
		t.Error("loading a schedule must clear the tracker")
	}
	select {
	case <-s.trigger:
	default:
		t.Error("loading a schedule should trigger a cycle")
	}
}

func TestRun_CyclesUntilCanceled(t *testing.T) {
	f := &fakeFetcher{snaps: []*feed.Snapshot{{Records: []feed.Record{train1()}}}}
	pub := newCapture()
	s := newTestService(Options{RefreshInterval: time.Hour}, f, pub, testStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case p := <-pub.got:
		if len(p.Results) != 1 {
			t.Errorf("expected first cycle to match, got %+v", p.Results)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no cycle on start")
	}

	for s.running.Load() {
		time.Sleep(5 * time.Millisecond)
	}
	s.Trigger()
	select {
	case <-pub.got:
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not run a cycle")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStart_SkipsWhileRunning(t *testing.T) {
	f := &fakeFetcher{block: make(chan struct{}), entered: make(chan struct{}, 4)}
	s := newTestService(Options{}, f, newCapture(), testStore())
	ctx := context.Background()

	s.start(ctx)
	<-f.entered
	s.start(ctx)
	s.start(ctx)
	close(f.block)
	s.wg.Wait()

	if f.Calls() != 1 {
		t.Errorf("overlapping ticks must be skipped, fetch ran %d times", f.Calls())
	}
}

func TestBuildTrains_Notable(t *testing.T) {
	store := testStore()
	trains, delayed := BuildTrains(store, []tracking.Match{
		{FeedID: "1", RunCode: "R1", NextStop: "B", Delay: 2},
		{FeedID: "2", RunCode: "GONE", Delay: 0},
	}, 2)
	if delayed != 1 || !trains[0].Notable || trains[1].Notable {
		t.Errorf("unexpected notable flags: %+v", trains)
	}
	if trains[1].Line != "" {
		t.Errorf("unknown run should leave line empty, got %q", trains[1].Line)
	}
}
