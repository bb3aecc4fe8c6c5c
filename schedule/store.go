package schedule

import (
	"errors"
	"sort"
)

var (
	// ErrNoSchedule is returned when an operation needs a loaded schedule.
	ErrNoSchedule = errors.New("no schedule loaded")
	// ErrUnknownRun is returned for run codes absent from the schedule.
	ErrUnknownRun = errors.New("unknown run")
)

// Store is an immutable, loaded itinerary. It is safe for concurrent reads.
type Store struct {
	runs    []*Run
	byCode  map[string]*Run
	ordered map[string][]OrderedStop
}

// NewStore indexes runs. Ordered stop sequences are computed once here.
func NewStore(runs []Run) *Store {
	s := &Store{
		runs:    make([]*Run, 0, len(runs)),
		byCode:  make(map[string]*Run, len(runs)),
		ordered: make(map[string][]OrderedStop, len(runs)),
	}
	for i := range runs {
		r := runs[i]
		s.runs = append(s.runs, &r)
		s.byCode[r.Code] = &r
		s.ordered[r.Code] = orderStops(&r)
	}
	return s
}

// Len returns the number of runs.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.runs)
}

// Runs returns the runs in document order.
func (s *Store) Runs() []*Run {
	if s == nil {
		return nil
	}
	return s.runs
}

// Run looks up a run by code.
func (s *Store) Run(code string) (*Run, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.byCode[code]
	return r, ok
}

// OrderedStops returns the run's stops sorted by adjusted time. The returned
// slice is shared and must not be modified.
func (s *Store) OrderedStops(r *Run) []OrderedStop {
	if s != nil {
		if o, ok := s.ordered[r.Code]; ok && s.byCode[r.Code] == r {
			return o
		}
	}
	return orderStops(r)
}

// Itinerary returns the ordered stops of the run with the given code.
func (s *Store) Itinerary(code string) ([]OrderedStop, error) {
	if s.Len() == 0 {
		return nil, ErrNoSchedule
	}
	r, ok := s.Run(code)
	if !ok {
		return nil, ErrUnknownRun
	}
	return s.OrderedStops(r), nil
}

// OrderedStops derives the service-day ordered sequence of a run.
func OrderedStops(r *Run) []OrderedStop {
	return orderStops(r)
}

func orderStops(r *Run) []OrderedStop {
	out := make([]OrderedStop, 0, len(r.Stops))
	for _, st := range r.Stops {
		if st.Time == "" {
			continue
		}
		m := -1
		if raw, ok := ParseClock(st.Time); ok {
			m = Adjust(raw)
		}
		out = append(out, OrderedStop{Stop: st.Stop, Time: st.Time, Minutes: m})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Valid() || !b.Valid() {
			return a.Valid() && !b.Valid()
		}
		return a.Minutes < b.Minutes
	})
	return out
}
