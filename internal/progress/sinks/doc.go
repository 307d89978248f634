// Package sinks implements concrete progress consumers: structured logging and
// Prometheus collectors. Each sink satisfies progress.Sink.
package sinks
