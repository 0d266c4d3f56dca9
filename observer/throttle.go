package observer

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/objstream/transfer/transfertypes"
)

// Throttled drops snapshots that arrive faster than the wrapped observer
// should see them. The pipeline already paces its updates; this wrapper is
// for observers with their own stricter quota, such as chat APIs that
// reject rapid message edits.
type Throttled struct {
	inner   transfertypes.Observer
	limiter *rate.Limiter
}

// NewThrottled wraps an observer so it sees at most one snapshot per
// minInterval. Intermediate snapshots are dropped, not queued; a later
// snapshot always supersedes a dropped one.
func NewThrottled(inner transfertypes.Observer, minInterval time.Duration) *Throttled {
	if minInterval <= 0 {
		minInterval = transfertypes.DefaultProgressInterval
	}
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Publish forwards the snapshot when the quota allows, and drops it
// otherwise.
func (t *Throttled) Publish(snapshot transfertypes.ProgressSnapshot) {
	if t.limiter.Allow() {
		t.inner.Publish(snapshot)
	}
}
