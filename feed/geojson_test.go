package feed

import (
	"encoding/json"
	"testing"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [1.8262, 41.7247]},
      "properties": {
        "id": 1, "lin": "R5xx", "dir": "D",
        "properes_parades": [{"parada": "B"}, {"parada": "C"}],
        "estacionat_a": "A", "tipus_unitat": "UT 113", "en_hora": "N", "minuts_retard": -4
      }
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [2.1, 41.4]},
      "properties": {
        "id": "abc", "lin": "S4", "dir": "A",
        "properes_parades": "{\"parada\": \"X\"};{\"parada\": \"Y\"}"
      }
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [2.1, 41.4]},
      "properties": {"lin": "S8", "dir": "A"}
    },
    {"type": "Feature", "properties": "broken"}
  ]
}`

func TestDecodeGeoJSON(t *testing.T) {
	records, skipped, err := DecodeGeoJSON([]byte(sampleGeoJSON))
	if err != nil {
		t.Fatalf("DecodeGeoJSON: %v", err)
	}
	if skipped != 2 {
		t.Errorf("expected 2 skipped features, got %d", skipped)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	r := records[0]
	if r.ID != "1" || r.Line != "R5xx" || r.Direction != "D" {
		t.Errorf("unexpected identity: %+v", r)
	}
	if r.LinePrefix() != "R5" {
		t.Errorf("LinePrefix = %q", r.LinePrefix())
	}
	if r.StationedAt != "A" || r.CurrentStop() != "A" {
		t.Errorf("stationed stop not decoded: %+v", r)
	}
	if len(r.Upcoming) != 2 || r.Upcoming[0] != "B" || r.Upcoming[1] != "C" {
		t.Errorf("upcoming = %v", r.Upcoming)
	}
	if r.OnTime == nil || *r.OnTime {
		t.Errorf("en_hora N should decode as not on time")
	}
	if r.DelayMinutes == nil || *r.DelayMinutes != 4 {
		t.Errorf("delay should be the magnitude 4, got %v", r.DelayMinutes)
	}
	if r.Position.Longitude != 1.8262 || r.Position.Latitude != 41.7247 {
		t.Errorf("position = %+v", r.Position)
	}

	legacy := records[1]
	if len(legacy.Upcoming) != 2 || legacy.Upcoming[0] != "X" {
		t.Errorf("legacy upcoming = %v", legacy.Upcoming)
	}
	if legacy.CurrentStop() != "X" {
		t.Errorf("current stop should fall back to first upcoming, got %q", legacy.CurrentStop())
	}
	if legacy.UnitType != DefaultUnitType {
		t.Errorf("unit type should default, got %q", legacy.UnitType)
	}
	if legacy.OnTime != nil || legacy.DelayMinutes != nil {
		t.Errorf("absent en_hora should leave on-time unset")
	}
}

func TestDecodeGeoJSON_NotACollection(t *testing.T) {
	if _, _, err := DecodeGeoJSON([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("expected error for non-object document")
	}
}

func TestParseUpcomingStops(t *testing.T) {
	var native any
	if err := json.Unmarshal([]byte(`[{"parada": "A"}, {"parada": "B"}]`), &native); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		in       any
		expected []string
	}{
		{name: "native list", in: native, expected: []string{"A", "B"}},
		{name: "legacy string", in: `{"parada":"A"};{"parada":"B"}`, expected: []string{"A", "B"}},
		{name: "legacy single", in: `{"parada":"A"}`, expected: []string{"A"}},
		{name: "malformed legacy", in: `{"parada":"A";`, expected: []string{}},
		{name: "empty string", in: "", expected: []string{}},
		{name: "nil", in: nil, expected: []string{}},
		{name: "wrong type", in: 42.0, expected: []string{}},
		{name: "list of scalars", in: []any{"A"}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUpcomingStops(tt.in)
			if got == nil {
				t.Fatal("result must never be nil")
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

func TestParseOnTime(t *testing.T) {
	tests := []struct {
		in   any
		want *bool
	}{
		{"S", ptr(true)},
		{"N", ptr(false)},
		{true, ptr(true)},
		{false, ptr(false)},
		{"maybe", nil},
		{nil, nil},
	}
	for _, tt := range tests {
		got := parseOnTime(tt.in)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("parseOnTime(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDelayMinutes(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{json.Number("5"), 5},
		{json.Number("-3"), 3},
		{"7.9", 7},
		{"abc", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := parseDelayMinutes(tt.in); got != tt.want {
			t.Errorf("parseDelayMinutes(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIDs(t *testing.T) {
	ids := IDs([]Record{{ID: "1"}, {ID: "2"}, {ID: "1"}})
	if len(ids) != 2 {
		t.Errorf("expected 2 ids, got %d", len(ids))
	}
}

func ptr[T any](v T) *T { return &v }
