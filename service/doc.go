// Package service drives correlation cycles: on every tick it fetches a feed
// snapshot, reaps vanished ids, correlates the rest against the loaded
// schedule and publishes the outcome.
//
// Cycles never overlap. A tick that arrives while a cycle is still running is
// dropped and counted. Loading a new schedule waits for the running cycle,
// swaps the store, clears the tracker and triggers an immediate cycle.
package service
