/*
Package schedule holds the static itinerary a live feed is correlated against.

An itinerary document is a JSON array of flat run objects. Three keys are
metadata, every other key is a stop name mapped to an "HH:MM" time:

	[
	  {"Tren": "R1", "Linia": "R5", "A/D": "D", "Manresa": "10:00", "Monistrol": "10:05"}
	]

The loader validates that schema up front and keeps stop keys in document
order, so ordering ties are deterministic.

# Service day

Times before 04:00 belong to the previous service day. OrderedStops shifts
them by 24h before sorting, so a run crossing midnight keeps its sequence:

	23:50 Manresa
	00:10 Monistrol

# Caching

LoadCached keeps a gob copy of the parsed runs tagged with the source location
and a SHA-256 of the document. The source is fetched on every load; the copy
skips parsing when the document is unchanged and stands in for it when the
source is unreachable.
*/
package schedule
