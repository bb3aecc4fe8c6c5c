// Package publish delivers the outcome of each correlation cycle to its
// consumers: the HTTP API's in-memory view, websocket clients, Redis, NATS and
// the log.
package publish
