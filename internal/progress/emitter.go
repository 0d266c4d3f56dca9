package progress

import (
	"sync"
	"time"

	"github.com/objstream/transfer/transfertypes"
)

// Emitter periodically forwards aggregator snapshots to an observer.
// It publishes one leading snapshot when started, one per interval tick,
// and one trailing snapshot when stopped, so an observer sees at most
// floor(D/T)+2 updates for a stage of duration D and interval T.
type Emitter struct {
	agg      *Aggregator
	observer transfertypes.Observer
	interval time.Duration
	stage    transfertypes.State

	stopOnce sync.Once
	done     chan struct{}
	finished chan struct{}
}

// NewEmitter creates an emitter for one transfer stage. A nil observer
// yields an emitter whose Start and Stop are no-ops.
func NewEmitter(
	agg *Aggregator,
	observer transfertypes.Observer,
	interval time.Duration,
	stage transfertypes.State,
) *Emitter {
	if interval <= 0 {
		interval = transfertypes.DefaultProgressInterval
	}
	return &Emitter{
		agg:      agg,
		observer: observer,
		interval: interval,
		stage:    stage,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start launches the emitter goroutine and publishes the leading snapshot.
func (e *Emitter) Start() {
	if e.observer == nil {
		close(e.finished)
		return
	}

	e.observer.Publish(e.agg.Snapshot(e.stage))

	go func() {
		defer close(e.finished)

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.agg.Sample()
				e.observer.Publish(e.agg.Snapshot(e.stage))
			case <-e.done:
				return
			}
		}
	}()
}

// Stop terminates the emitter and publishes the trailing snapshot.
// It blocks until the emitter goroutine has exited, so no publish can
// race past Stop. Safe to call more than once.
func (e *Emitter) Stop() {
	e.stopOnce.Do(func() {
		close(e.done)
		<-e.finished
		if e.observer != nil {
			e.agg.Sample()
			e.observer.Publish(e.agg.Snapshot(e.stage))
		}
	})
}
