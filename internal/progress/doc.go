// Package progress provides byte-count aggregation with smoothed throughput
// and rate-limited snapshot emission.
//
// High-frequency byte counting is decoupled from low-frequency observer
// updates: workers only touch an atomic counter, while a single emitter
// goroutine samples the counter, computes speed and ETA, and forwards
// snapshots to the observer at most once per configured interval. A UI side
// effect can therefore never block or slow the transfer itself.
package progress
