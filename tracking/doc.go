// Package tracking holds the process-lifetime state that ties live feed
// entity ids to scheduled runs across refresh cycles.
//
// A Tracker maps a feed id to the last accepted Match for that id. Entries are
// created and refreshed by the correlation engine and evicted either by Reap,
// when their id disappears from the latest snapshot, or by an explicit Delete
// when re-validation against the schedule fails.
//
// The Tracker is safe for concurrent use; a single correlation pass is still
// expected to be the only writer at any time.
package tracking
