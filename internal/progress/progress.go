package progress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/objstream/transfer/transfertypes"
)

// speedWindow is the number of instantaneous speed samples kept for smoothing.
const speedWindow = 5

// Aggregator accumulates byte-count deltas from concurrent workers and
// derives smoothed throughput and ETA. Report is safe for concurrent use;
// the counter is the only state mutated on the hot path and it is a single
// atomic increment, never a lock held across a network call.
type Aggregator struct {
	total       int64
	transferred atomic.Int64
	start       time.Time

	// now is the clock; replaceable in tests
	now func() time.Time

	// mu guards the sampling window, which is only touched by the emitter
	mu         sync.Mutex
	samples    []float64
	lastBytes  int64
	lastSample time.Time
}

// NewAggregator creates an aggregator for a stage expected to move total bytes.
func NewAggregator(total int64) *Aggregator {
	return newAggregatorAt(total, time.Now)
}

// newAggregatorAt creates an aggregator with an injectable clock.
func newAggregatorAt(total int64, now func() time.Time) *Aggregator {
	t := now()
	return &Aggregator{
		total:      total,
		start:      t,
		now:        now,
		samples:    make([]float64, 0, speedWindow),
		lastSample: t,
	}
}

// Report adds delta bytes to the transferred counter.
// Safe to call from any goroutine.
func (a *Aggregator) Report(delta int64) {
	a.transferred.Add(delta)
}

// Transferred returns the current byte count.
func (a *Aggregator) Transferred() int64 {
	return a.transferred.Load()
}

// Total returns the expected total byte count for the stage.
func (a *Aggregator) Total() int64 {
	return a.total
}

// Sample records one instantaneous speed observation into the smoothing
// window. Called by the emitter at each tick, never by workers.
func (a *Aggregator) Sample() {
	now := a.now()
	bytes := a.transferred.Load()

	a.mu.Lock()
	defer a.mu.Unlock()

	elapsed := now.Sub(a.lastSample).Seconds()
	if elapsed <= 0 {
		return
	}

	speed := float64(bytes-a.lastBytes) / elapsed
	a.samples = append(a.samples, speed)
	if len(a.samples) > speedWindow {
		a.samples = a.samples[1:]
	}

	a.lastBytes = bytes
	a.lastSample = now
}

// Snapshot returns an immutable view of current progress. It reads shared
// state but mutates nothing.
func (a *Aggregator) Snapshot(stage transfertypes.State) transfertypes.ProgressSnapshot {
	now := a.now()
	bytes := a.transferred.Load()
	if bytes > a.total && a.total > 0 {
		bytes = a.total
	}

	a.mu.Lock()
	speed := a.smoothedSpeedLocked()
	a.mu.Unlock()

	elapsed := now.Sub(a.start)
	if elapsed <= 0 {
		speed = 0
	}

	snapshot := transfertypes.ProgressSnapshot{
		Stage:       stage,
		Transferred: bytes,
		Total:       a.total,
		Elapsed:     elapsed,
		Speed:       speed,
	}

	if a.total == 0 {
		// An empty file is complete the moment the stage starts.
		snapshot.Percent = 100
		return snapshot
	}

	snapshot.Percent = float64(bytes) / float64(a.total) * 100

	if speed > 0 {
		remaining := a.total - bytes
		snapshot.ETA = time.Duration(float64(remaining) / speed * float64(time.Second))
		snapshot.ETAKnown = true
	}

	return snapshot
}

// smoothedSpeedLocked averages the sampling window. Caller holds mu.
func (a *Aggregator) smoothedSpeedLocked() float64 {
	if len(a.samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range a.samples {
		sum += s
	}
	return sum / float64(len(a.samples))
}
