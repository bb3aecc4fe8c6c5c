// Package siri defines the SIRI (Service Interface for Real-time Information)
// VehicleMonitoring types used to expose matched trains, and builds them from
// the tracked view of a cycle. Estimated timetables use the shared
// transit-types ET structures and join tracked trains with their runs.
//
// All types include JSON tags; XML output is written by the formatter package.
package siri
