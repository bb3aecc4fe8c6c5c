package tracking

import (
	"sort"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/geotren-matcher/feed"
)

// Match is the tracked belief that a feed id is a given scheduled run.
type Match struct {
	FeedID      string        `json:"feedId"`
	RunCode     string        `json:"run"`
	CurrentStop string        `json:"currentStop,omitempty"`
	NextStop    string        `json:"nextStop,omitempty"`
	Position    feed.Position `json:"position"`
	UnitType    string        `json:"unitType"`
	OnTime      *bool         `json:"onTime,omitempty"`
	Delay       int           `json:"delay"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Tracker maps feed ids to their current Match.
type Tracker struct {
	mu      sync.RWMutex
	matches map[string]Match
}

func NewTracker() *Tracker {
	return &Tracker{matches: map[string]Match{}}
}

// Get returns the match tracked for id.
func (t *Tracker) Get(id string) (Match, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.matches[id]
	return m, ok
}

// Put stores m under its FeedID, replacing any previous entry.
func (t *Tracker) Put(m Match) {
	t.mu.Lock()
	t.matches[m.FeedID] = m
	t.mu.Unlock()
}

// Delete removes id and reports whether it was tracked.
func (t *Tracker) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.matches[id]; !ok {
		return false
	}
	delete(t.matches, id)
	return true
}

// Reap removes every entry whose id is not in present and returns the removed
// ids in ascending order.
func (t *Tracker) Reap(present map[string]struct{}) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var removed []string
	for id := range t.matches {
		if _, ok := present[id]; !ok {
			delete(t.matches, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}

// Snapshot returns a copy of all entries ordered by feed id.
func (t *Tracker) Snapshot() []Match {
	t.mu.RLock()
	out := make([]Match, 0, len(t.matches))
	for _, m := range t.matches {
		out = append(out, m)
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].FeedID < out[j].FeedID })
	return out
}

// Reset drops every entry.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.matches = map[string]Match{}
	t.mu.Unlock()
}

func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.matches)
}
