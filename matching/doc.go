// Package matching correlates live feed records with scheduled runs.
//
// Each cycle the Engine walks the snapshot in feed order. A record whose id is
// already tracked is first re-validated against its run; if that fails, or the
// id is new, every run of the same line and direction is scored:
//
//	score = (window - |now - stop time|)
//	      + 5  if the stop is the record's current stop
//	      + 10 if the upcoming stops follow the run from that stop
//
// The highest score wins with ties going to the first candidate found. A run
// binds to at most one record per cycle.
package matching
