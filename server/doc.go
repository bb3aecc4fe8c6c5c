// Package server exposes the matcher over HTTP: tracked trains, the last
// cycle's matches, run itineraries, schedule upload, SIRI VehicleMonitoring,
// a websocket push channel, health and prometheus metrics.
package server
