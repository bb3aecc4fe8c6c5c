package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
)

// NewStoreFromBytes parses an itinerary document.
func NewStoreFromBytes(data []byte) (*Store, error) {
	return NewStoreFromReader(bytes.NewReader(data))
}

// NewStoreFromReader parses an itinerary document from r.
func NewStoreFromReader(r io.Reader) (*Store, error) {
	runs, err := ParseRuns(r)
	if err != nil {
		return nil, err
	}
	return NewStore(runs), nil
}

// ParseRuns decodes and validates the runs of an itinerary document,
// preserving the order of stop keys inside each run.
func ParseRuns(r io.Reader) ([]Run, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("schedule: read document: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.New("schedule: document must be a JSON array of runs")
	}
	var runs []Run
	seen := map[string]int{}
	for i := 0; dec.More(); i++ {
		run, err := decodeRun(dec, i)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[run.Code]; dup {
			return nil, &ValidationError{Index: i, Field: KeyRun, Reason: fmt.Sprintf("duplicate run code %q (first at run %d)", run.Code, prev)}
		}
		seen[run.Code] = i
		runs = append(runs, run)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("schedule: read document: %w", err)
	}
	return runs, nil
}

func decodeRun(dec *json.Decoder, idx int) (Run, error) {
	var run Run
	tok, err := dec.Token()
	if err != nil {
		return run, fmt.Errorf("schedule: run %d: %w", idx, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return run, &ValidationError{Index: idx, Reason: "run must be an object"}
	}
	stopAt := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return run, fmt.Errorf("schedule: run %d: %w", idx, err)
		}
		key, _ := keyTok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return run, fmt.Errorf("schedule: run %d: %s: %w", idx, key, err)
		}
		switch key {
		case KeyRun:
			run.Code = toStringFallback(v, "")
		case KeyLine:
			run.Line = toStringFallback(v, "")
		case KeyDirection:
			run.Direction = toStringFallback(v, "")
		default:
			var clock string
			switch t := v.(type) {
			case nil:
			case string:
				clock = t
			default:
				return run, &ValidationError{Index: idx, Field: key, Reason: "stop time must be an \"HH:MM\" string"}
			}
			// A repeated key keeps its first position and its last value.
			if i, seen := stopAt[key]; seen {
				run.Stops[i].Time = clock
				continue
			}
			stopAt[key] = len(run.Stops)
			run.Stops = append(run.Stops, StopTime{Stop: key, Time: clock})
		}
	}
	run.Stops = slices.DeleteFunc(run.Stops, func(st StopTime) bool { return st.Time == "" })
	if _, err := dec.Token(); err != nil {
		return run, fmt.Errorf("schedule: run %d: %w", idx, err)
	}
	switch {
	case run.Code == "":
		return run, &ValidationError{Index: idx, Field: KeyRun, Reason: "missing run code"}
	case run.Line == "":
		return run, &ValidationError{Index: idx, Field: KeyLine, Reason: "missing line code"}
	case run.Direction == "":
		return run, &ValidationError{Index: idx, Field: KeyDirection, Reason: "missing direction"}
	}
	return run, nil
}

// toStringFallback converts flexible JSON scalars to strings.
func toStringFallback(v any, fallback string) string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case json.Number:
		if i, err := strconv.Atoi(t.String()); err == nil {
			return strconv.Itoa(i)
		}
		return t.String()
	}
	return fallback
}
