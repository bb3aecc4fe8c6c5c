package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// upcomingStopKey is the stop-name field of an upcoming-stop object.
const upcomingStopKey = "parada"

type featureCollection struct {
	Features []json.RawMessage `json:"features"`
}

type feature struct {
	ID         any            `json:"id"`
	Properties map[string]any `json:"properties"`
	Geometry   struct {
		Coordinates []json.Number `json:"coordinates"`
	} `json:"geometry"`
}

// DecodeGeoJSON decodes a geotren FeatureCollection. Features that cannot be
// decoded or carry no id are skipped and counted in the second return value.
func DecodeGeoJSON(data []byte) ([]Record, int, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, 0, fmt.Errorf("decode feature collection: %w", err)
	}
	records := make([]Record, 0, len(fc.Features))
	skipped := 0
	for _, raw := range fc.Features {
		rec, ok := decodeFeature(raw)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func decodeFeature(raw json.RawMessage) (Record, bool) {
	var f feature
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&f); err != nil {
		return Record{}, false
	}
	p := f.Properties
	id := toString(p["id"])
	if id == "" {
		id = toString(f.ID)
	}
	if id == "" {
		return Record{}, false
	}
	rec := Record{
		ID:          id,
		Line:        toString(p["lin"]),
		Direction:   toString(p["dir"]),
		Upcoming:    ParseUpcomingStops(p["properes_parades"]),
		StationedAt: toString(p["estacionat_a"]),
		UnitType:    toString(p["tipus_unitat"]),
		OnTime:      parseOnTime(p["en_hora"]),
	}
	if rec.UnitType == "" {
		rec.UnitType = DefaultUnitType
	}
	if rec.OnTime != nil {
		d := parseDelayMinutes(p["minuts_retard"])
		rec.DelayMinutes = &d
	}
	if c := f.Geometry.Coordinates; len(c) >= 2 {
		lon, _ := c[0].Float64()
		lat, _ := c[1].Float64()
		rec.Position = Position{Longitude: lon, Latitude: lat}
	}
	return rec, true
}

// ParseUpcomingStops extracts stop names from the properes_parades value. It
// accepts a native list of {"parada": ...} objects or the legacy string of
// semicolon-separated objects. Anything malformed yields an empty list.
func ParseUpcomingStops(v any) []string {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case string:
		if strings.TrimSpace(t) == "" {
			return []string{}
		}
		legacy := "[" + strings.ReplaceAll(t, ";", ",") + "]"
		if err := json.Unmarshal([]byte(legacy), &items); err != nil {
			return []string{}
		}
	default:
		return []string{}
	}
	stops := make([]string, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			return []string{}
		}
		if name := toString(obj[upcomingStopKey]); name != "" {
			stops = append(stops, name)
		}
	}
	return stops
}

func parseOnTime(v any) *bool {
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "s", "si", "sí", "y", "yes", "true", "1":
			b = true
		case "n", "no", "false", "0":
			b = false
		default:
			return nil
		}
	default:
		return nil
	}
	return &b
}

// parseDelayMinutes returns the magnitude of a reported delay, 0 when absent
// or unparseable.
func parseDelayMinutes(v any) int {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Abs(math.Trunc(f)))
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
