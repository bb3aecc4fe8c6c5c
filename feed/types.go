package feed

import "errors"

// DefaultUnitType labels records whose feed entry carries no unit type.
const DefaultUnitType = "unknown"

// ErrUnsupportedFormat is returned for unknown feed formats.
var ErrUnsupportedFormat = errors.New("unsupported feed format")

// Format identifies a feed wire format.
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatGTFSRT  Format = "gtfsrt"
)

// Position is a WGS84 coordinate.
type Position struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Record is one live report of one physical train in one snapshot.
type Record struct {
	ID           string   `json:"id"`
	Line         string   `json:"line"`
	Direction    string   `json:"direction"`
	Upcoming     []string `json:"upcoming"`
	StationedAt  string   `json:"stationedAt,omitempty"`
	Position     Position `json:"position"`
	UnitType     string   `json:"unitType"`
	OnTime       *bool    `json:"onTime,omitempty"`
	DelayMinutes *int     `json:"delayMinutes,omitempty"`
}

// LinePrefix returns the significant two-character line code.
func (r *Record) LinePrefix() string {
	if len(r.Line) < 2 {
		return ""
	}
	return r.Line[:2]
}

// CurrentStop is the stop the train is at, or the first upcoming stop when the
// feed does not say it is stationed anywhere.
func (r *Record) CurrentStop() string {
	if r.StationedAt != "" {
		return r.StationedAt
	}
	if len(r.Upcoming) > 0 {
		return r.Upcoming[0]
	}
	return ""
}

// NextStop returns the first upcoming stop, if any.
func (r *Record) NextStop() string {
	if len(r.Upcoming) > 0 {
		return r.Upcoming[0]
	}
	return ""
}

// HasUpcoming reports whether stop is in the upcoming list.
func (r *Record) HasUpcoming(stop string) bool {
	for _, s := range r.Upcoming {
		if s == stop {
			return true
		}
	}
	return false
}

// IDs returns the set of record ids of a snapshot.
func IDs(records []Record) map[string]struct{} {
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		ids[r.ID] = struct{}{}
	}
	return ids
}
