package schedule

import "fmt"

// Reserved metadata keys of an itinerary run object.
const (
	KeyRun       = "Tren"
	KeyLine      = "Linia"
	KeyDirection = "A/D"
)

// Direction flags used by itinerary files.
const (
	DirectionArrival   = "A"
	DirectionDeparture = "D"
)

// StopTime is one stop key of a run as it appeared in the document.
type StopTime struct {
	Stop string `json:"stop"`
	Time string `json:"time"`
}

// Run is one scheduled service instance.
type Run struct {
	Code      string     `json:"code"`
	Line      string     `json:"line"`
	Direction string     `json:"direction"`
	Stops     []StopTime `json:"stops"`
}

// LinePrefix returns the significant two-character line code.
func (r *Run) LinePrefix() string {
	return LinePrefix(r.Line)
}

// TimeAt returns the scheduled time at stop.
func (r *Run) TimeAt(stop string) (string, bool) {
	for _, st := range r.Stops {
		if st.Stop == stop {
			return st.Time, true
		}
	}
	return "", false
}

// OrderedStop is a stop of a run positioned in service-day order.
type OrderedStop struct {
	Stop    string `json:"stop"`
	Time    string `json:"time"`
	Minutes int    `json:"-"` // adjusted minutes; -1 when Time is unparseable
}

// Valid reports whether the stop carries a usable time.
func (o OrderedStop) Valid() bool { return o.Minutes >= 0 }

// LinePrefix returns the first two characters of a line code, or "" when the
// code is shorter than that.
func LinePrefix(line string) string {
	if len(line) < 2 {
		return ""
	}
	return line[:2]
}

// ValidationError reports a schema violation in an itinerary document.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("run %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("run %d: %s: %s", e.Index, e.Field, e.Reason)
}
