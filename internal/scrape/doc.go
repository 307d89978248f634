// Package scrape runs the bounded fan-out over letter partitions: one worker
// per partition, a shared slot limiter, and an ordinal-ordered ResultSet.
package scrape
