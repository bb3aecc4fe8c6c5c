package schedule

import (
	"errors"
	"testing"
)

func stopNames(stops []OrderedStop) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.Stop
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOrderedStops(t *testing.T) {
	tests := []struct {
		name     string
		stops    []StopTime
		expected []string
	}{
		{
			name:     "plain daytime order",
			stops:    []StopTime{{"C", "10:10"}, {"A", "10:00"}, {"B", "10:05"}},
			expected: []string{"A", "B", "C"},
		},
		{
			name:     "midnight wrap",
			stops:    []StopTime{{"Late", "00:10"}, {"Early", "23:50"}, {"Dawn", "03:59"}},
			expected: []string{"Early", "Late", "Dawn"},
		},
		{
			name:     "04:00 starts the service day",
			stops:    []StopTime{{"B", "05:00"}, {"A", "04:00"}},
			expected: []string{"A", "B"},
		},
		{
			name:     "unparseable times sort last",
			stops:    []StopTime{{"Bad", "xx:yy"}, {"A", "10:00"}, {"Worse", "25"}, {"B", "11:00"}},
			expected: []string{"A", "B", "Bad", "Worse"},
		},
		{
			name:     "ties keep document order",
			stops:    []StopTime{{"Second", "10:00"}, {"First", "10:00"}},
			expected: []string{"Second", "First"},
		},
		{
			name:     "no stops",
			stops:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stopNames(OrderedStops(&Run{Code: "X", Stops: tt.stops}))
			if !equalNames(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestOrderedStops_SortedByAdjustedTime(t *testing.T) {
	r := &Run{Code: "X", Stops: []StopTime{{"a", "02:00"}, {"b", "23:00"}, {"c", "12:00"}, {"d", "00:00"}, {"e", "04:30"}}}
	stops := OrderedStops(r)
	for i := 1; i < len(stops); i++ {
		if stops[i-1].Minutes > stops[i].Minutes {
			t.Fatalf("not sorted at %d: %+v", i, stops)
		}
	}
}

func TestStore_Itinerary(t *testing.T) {
	var empty *Store
	if _, err := empty.Itinerary("R1"); !errors.Is(err, ErrNoSchedule) {
		t.Errorf("expected ErrNoSchedule, got %v", err)
	}

	store := NewStore([]Run{{Code: "R1", Line: "R5", Direction: "D", Stops: []StopTime{{"B", "10:05"}, {"A", "10:00"}}}})
	stops, err := store.Itinerary("R1")
	if err != nil {
		t.Fatalf("Itinerary: %v", err)
	}
	if !equalNames(stopNames(stops), []string{"A", "B"}) {
		t.Errorf("unexpected itinerary %v", stops)
	}
	if _, err := store.Itinerary("R2"); !errors.Is(err, ErrUnknownRun) {
		t.Errorf("expected ErrUnknownRun, got %v", err)
	}
}
