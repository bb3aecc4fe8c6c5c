package matching

import "github.com/theoremus-urban-solutions/geotren-matcher/schedule"

// ValidateSequence reports whether upcoming follows ordered immediately after
// the first occurrence of current. The walk stops at the first mismatch and
// succeeds once min(minMatches, len(upcoming)) consecutive stops agree.
func ValidateSequence(upcoming []string, ordered []schedule.OrderedStop, current string, minMatches int) bool {
	if len(upcoming) == 0 || len(ordered) == 0 {
		return false
	}
	idx := -1
	for i, o := range ordered {
		if o.Stop == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	required := min(minMatches, len(upcoming))
	if required < 1 {
		required = 1
	}
	matches := 0
	for i, stop := range upcoming {
		j := idx + i + 1
		if j >= len(ordered) || ordered[j].Stop != stop {
			break
		}
		matches++
		if matches >= required {
			return true
		}
	}
	return false
}
