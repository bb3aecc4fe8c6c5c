// Package feed fetches and decodes live vehicle-position snapshots.
//
// Two wire formats are supported:
//   - geojson: the FGC geotren tracker FeatureCollection
//   - gtfsrt: GTFS-Realtime VehiclePositions, optionally joined with TripUpdates
//
// Decoding is lenient by design of the upstream feed: a malformed feature or
// upcoming-stops payload degrades that record, never the whole snapshot.
package feed
