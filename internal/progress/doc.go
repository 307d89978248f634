// Package progress provides the event primitives, non-blocking hub, and emitter
// interface that scrape workers use to report per-partition progress. The hub
// batches events on a background goroutine and fans them out to sinks such as
// structured logs or Prometheus collectors.
package progress
