package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objstream/transfer/transfertypes"
)

// fakeClock is a manually advanced clock for deterministic speed samples.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAggregator_Report(t *testing.T) {
	agg := NewAggregator(1000)

	agg.Report(100)
	agg.Report(250)

	assert.Equal(t, int64(350), agg.Transferred())
	assert.Equal(t, int64(1000), agg.Total())
}

func TestAggregator_Report_Concurrent(t *testing.T) {
	agg := NewAggregator(10000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				agg.Report(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), agg.Transferred())
}

func TestAggregator_Snapshot(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		transferred int64
		wantPercent float64
	}{
		{
			name:        "halfway",
			total:       1000,
			transferred: 500,
			wantPercent: 50,
		},
		{
			name:        "nothing moved",
			total:       1000,
			transferred: 0,
			wantPercent: 0,
		},
		{
			name:        "complete",
			total:       1000,
			transferred: 1000,
			wantPercent: 100,
		},
		{
			name:        "overshoot clamps to total",
			total:       1000,
			transferred: 1200,
			wantPercent: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(tt.total)
			agg.Report(tt.transferred)

			snapshot := agg.Snapshot(transfertypes.StateUploading)

			assert.Equal(t, transfertypes.StateUploading, snapshot.Stage)
			assert.InDelta(t, tt.wantPercent, snapshot.Percent, 0.001)
			assert.LessOrEqual(t, snapshot.Transferred, tt.total)
		})
	}
}

func TestAggregator_Snapshot_ZeroTotal(t *testing.T) {
	agg := NewAggregator(0)

	snapshot := agg.Snapshot(transfertypes.StateUploading)

	assert.InDelta(t, 100.0, snapshot.Percent, 0.001)
	assert.False(t, snapshot.ETAKnown)
}

func TestAggregator_Snapshot_ETAUnknownWithoutSamples(t *testing.T) {
	agg := NewAggregator(1000)
	agg.Report(500)

	snapshot := agg.Snapshot(transfertypes.StateUploading)

	assert.False(t, snapshot.ETAKnown)
	assert.Zero(t, snapshot.Speed)
}

func TestAggregator_SpeedSmoothing(t *testing.T) {
	clock := newFakeClock()
	agg := newAggregatorAt(1000000, clock.Now)

	// Two seconds at 1000 B/s, then two at 3000 B/s. The smoothed speed
	// is the window average, 2000 B/s.
	for i := 0; i < 2; i++ {
		clock.Advance(time.Second)
		agg.Report(1000)
		agg.Sample()
	}
	for i := 0; i < 2; i++ {
		clock.Advance(time.Second)
		agg.Report(3000)
		agg.Sample()
	}

	snapshot := agg.Snapshot(transfertypes.StateDownloading)

	assert.InDelta(t, 2000, snapshot.Speed, 0.001)
	require.True(t, snapshot.ETAKnown)

	remaining := float64(1000000 - 8000)
	wantETA := time.Duration(remaining / 2000 * float64(time.Second))
	assert.InDelta(t, float64(wantETA), float64(snapshot.ETA), float64(time.Millisecond))
}

func TestAggregator_SpeedWindow_DropsOldSamples(t *testing.T) {
	clock := newFakeClock()
	agg := newAggregatorAt(1000000, clock.Now)

	// One fast outlier, then enough steady samples to push it out.
	clock.Advance(time.Second)
	agg.Report(100000)
	agg.Sample()

	for i := 0; i < speedWindow; i++ {
		clock.Advance(time.Second)
		agg.Report(1000)
		agg.Sample()
	}

	snapshot := agg.Snapshot(transfertypes.StateDownloading)
	assert.InDelta(t, 1000, snapshot.Speed, 0.001)
}

// countingObserver records every published snapshot.
type countingObserver struct {
	mu        sync.Mutex
	snapshots []transfertypes.ProgressSnapshot
}

func (o *countingObserver) Publish(snapshot transfertypes.ProgressSnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snapshots = append(o.snapshots, snapshot)
}

func (o *countingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.snapshots)
}

func (o *countingObserver) last() transfertypes.ProgressSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshots[len(o.snapshots)-1]
}

func TestEmitter_PublishesLeadingAndTrailing(t *testing.T) {
	agg := NewAggregator(100)
	observer := &countingObserver{}

	emitter := NewEmitter(agg, observer, time.Hour, transfertypes.StateUploading)
	emitter.Start()
	agg.Report(100)
	emitter.Stop()

	// Interval never fires, so exactly the two boundary snapshots remain.
	require.Equal(t, 2, observer.count())
	assert.Equal(t, int64(0), observer.snapshots[0].Transferred)
	assert.Equal(t, int64(100), observer.last().Transferred)
}

func TestEmitter_RespectsInterval(t *testing.T) {
	agg := NewAggregator(1000)
	observer := &countingObserver{}

	interval := 50 * time.Millisecond
	duration := 220 * time.Millisecond

	emitter := NewEmitter(agg, observer, interval, transfertypes.StateUploading)
	emitter.Start()
	time.Sleep(duration)
	emitter.Stop()

	// At most floor(D/T)+2 updates for a stage of duration D.
	maxUpdates := int(duration/interval) + 2
	assert.LessOrEqual(t, observer.count(), maxUpdates)
	assert.GreaterOrEqual(t, observer.count(), 2)
}

func TestEmitter_NilObserver(t *testing.T) {
	agg := NewAggregator(100)

	emitter := NewEmitter(agg, nil, time.Millisecond, transfertypes.StateUploading)
	emitter.Start()
	emitter.Stop()
	emitter.Stop()
}

func TestEmitter_StopIsIdempotent(t *testing.T) {
	agg := NewAggregator(100)
	observer := &countingObserver{}

	emitter := NewEmitter(agg, observer, time.Hour, transfertypes.StateUploading)
	emitter.Start()
	emitter.Stop()
	emitter.Stop()

	assert.Equal(t, 2, observer.count())
}
