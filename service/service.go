package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/geotren-matcher/feed"
	"github.com/theoremus-urban-solutions/geotren-matcher/matching"
	"github.com/theoremus-urban-solutions/geotren-matcher/publish"
	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
	"github.com/theoremus-urban-solutions/geotren-matcher/telemetry"
)

// ErrCycleSkipped is returned by RunCycle when a failed fetch leaves the
// tracker untouched.
var ErrCycleSkipped = errors.New("cycle skipped")

// Fetcher returns the current feed snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (*feed.Snapshot, error)
}

// Options configures the driver.
type Options struct {
	RefreshInterval         time.Duration
	FetchTimeout            time.Duration
	KeepTrackedOnFetchError bool
	NotableDelayMinutes     int
	Location                *time.Location
}

// Service is the cycle driver.
type Service struct {
	opts      Options
	fetcher   Fetcher
	engine    *matching.Engine
	publisher publish.Publisher
	logger    zerolog.Logger
	now       func() time.Time

	cycleMu sync.Mutex
	running atomic.Bool
	trigger chan struct{}
	wg      sync.WaitGroup

	storeMu   sync.RWMutex
	store     *schedule.Store
	lastCycle atomic.Int64
}

// New creates a driver. store may be nil until a schedule is loaded.
func New(opts Options, fetcher Fetcher, engine *matching.Engine, publisher publish.Publisher, store *schedule.Store, logger zerolog.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 10 * time.Second
	}
	telemetry.ScheduleRuns.Set(float64(store.Len()))
	return &Service{
		opts:      opts,
		fetcher:   fetcher,
		engine:    engine,
		publisher: publisher,
		logger:    logger.With().Str("component", "service").Logger(),
		now:       time.Now,
		trigger:   make(chan struct{}, 1),
		store:     store,
	}
}

// Store returns the loaded schedule, nil when none is loaded.
func (s *Service) Store() *schedule.Store {
	s.storeMu.RLock()
	defer s.storeMu.RUnlock()
	return s.store
}

// LastCycle returns when the last completed cycle ran, zero before the first.
func (s *Service) LastCycle() time.Time {
	ns := s.lastCycle.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// LoadSchedule replaces the schedule and clears every tracked match, then
// asks the loop for an immediate cycle.
func (s *Service) LoadSchedule(store *schedule.Store) {
	s.cycleMu.Lock()
	s.storeMu.Lock()
	s.store = store
	s.storeMu.Unlock()
	s.engine.Reset()
	s.cycleMu.Unlock()

	telemetry.ScheduleRuns.Set(float64(store.Len()))
	telemetry.TrackedTrains.Set(0)
	s.logger.Info().Int("runs", store.Len()).Msg("schedule loaded")
	s.Trigger()
}

// Trigger requests a cycle without waiting for the next tick.
func (s *Service) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run runs a cycle immediately and then on every tick until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()
	defer s.wg.Wait()

	s.logger.Info().Dur("interval", s.opts.RefreshInterval).Msg("matcher loop started")
	s.start(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("matcher loop stopped")
			return ctx.Err()
		case <-ticker.C:
			s.start(ctx)
		case <-s.trigger:
			s.start(ctx)
		}
	}
}

// start launches a cycle unless one is already running.
func (s *Service) start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		telemetry.CyclesSkipped.Inc()
		s.logger.Warn().Msg("previous cycle still running, skipping tick")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		_, _ = s.RunCycle(ctx)
	}()
}

// RunCycle performs one fetch, reap, correlate and publish pass. It returns
// ErrCycleSkipped when the fetch failed and the tracker was kept. Other
// failures degrade into the publication.
func (s *Service) RunCycle(ctx context.Context) (*publish.Publication, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	start := time.Now()
	id := uuid.New().String()
	logger := s.logger.With().Str("cycle", id).Logger()
	now := s.now().In(s.opts.Location)

	store := s.Store()
	if store.Len() == 0 {
		logger.Warn().Msg("no schedule loaded, skipping correlation")
		telemetry.CyclesTotal.WithLabelValues("no_schedule").Inc()
		pub := &publish.Publication{
			ID:      id,
			At:      now,
			Notice:  publish.NoticeNoSchedule,
			Results: []matching.Result{},
			Trains:  []publish.Train{},
		}
		s.publish(ctx, logger, pub)
		return pub, nil
	}

	var fetchErr string
	snap, err := s.fetch(ctx)
	if err != nil {
		telemetry.FetchErrors.Inc()
		if s.opts.KeepTrackedOnFetchError {
			logger.Warn().Err(err).Msg("feed fetch failed, keeping tracked matches")
			telemetry.CyclesTotal.WithLabelValues("skipped").Inc()
			return nil, fmt.Errorf("%w: %v", ErrCycleSkipped, err)
		}
		logger.Warn().Err(err).Msg("feed fetch failed, treating snapshot as empty")
		fetchErr = err.Error()
		snap = &feed.Snapshot{}
	}

	reaped := s.engine.Reap(snap.Records)
	results := s.engine.Correlate(store, snap.Records, now)
	trains, delayed := BuildTrains(store, s.engine.Tracked(), s.opts.NotableDelayMinutes)

	pub := &publish.Publication{
		ID:      id,
		At:      now,
		Results: results,
		Trains:  trains,
		Matched: len(trains),
		Delayed: delayed,
		Reaped:  reaped,
		Records: len(snap.Records),
		Skipped: snap.Skipped,
		Error:   fetchErr,
	}

	for _, r := range results {
		kind := "new"
		if r.Revalidated {
			kind = "revalidated"
		}
		telemetry.MatchesTotal.WithLabelValues(kind).Inc()
	}
	telemetry.ReapedTotal.Add(float64(len(reaped)))
	telemetry.FeedRecords.Set(float64(len(snap.Records)))
	telemetry.TrackedTrains.Set(float64(len(trains)))
	telemetry.DelayedTrains.Set(float64(delayed))

	s.publish(ctx, logger, pub)
	s.lastCycle.Store(now.UnixNano())

	outcome := "ok"
	if fetchErr != "" {
		outcome = "fetch_error"
	}
	telemetry.CyclesTotal.WithLabelValues(outcome).Inc()
	telemetry.CycleDuration.Observe(time.Since(start).Seconds())
	logger.Debug().
		Int("records", len(snap.Records)).
		Int("results", len(results)).
		Int("tracked", len(trains)).
		Int("reaped", len(reaped)).
		Dur("took", time.Since(start)).
		Msg("cycle complete")
	return pub, nil
}

func (s *Service) fetch(ctx context.Context) (*feed.Snapshot, error) {
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}
	snap, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = &feed.Snapshot{}
	}
	return snap, nil
}

func (s *Service) publish(ctx context.Context, logger zerolog.Logger, pub *publish.Publication) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, pub); err != nil {
		telemetry.PublishErrors.Inc()
		logger.Error().Err(err).Msg("publish failed")
	}
}
