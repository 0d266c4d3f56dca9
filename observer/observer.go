// Package observer provides progress observer implementations for the
// transfer pipeline: structured log output, a rate-limiting wrapper for
// expensive observers, and a Telegram message editor.
package observer

import (
	"github.com/charmbracelet/log"

	"github.com/objstream/transfer/transfertypes"
)

// Log writes each snapshot as a structured log line.
type Log struct {
	logger *log.Logger
}

// NewLog creates a log observer. A nil logger uses the package default.
func NewLog(logger *log.Logger) *Log {
	if logger == nil {
		logger = log.Default()
	}
	return &Log{logger: logger}
}

// Publish logs one snapshot.
func (l *Log) Publish(snapshot transfertypes.ProgressSnapshot) {
	fields := []interface{}{
		"stage", snapshot.Stage,
		"transferred", HumanBytes(snapshot.Transferred),
		"total", HumanBytes(snapshot.Total),
		"percent", int(snapshot.Percent),
		"speed", HumanBytes(int64(snapshot.Speed)) + "/s",
	}
	if snapshot.ETAKnown {
		fields = append(fields, "eta", FormatETA(snapshot.ETA))
	}
	l.logger.Info("progress", fields...)
}

// Func adapts a plain function to the Observer interface.
type Func func(transfertypes.ProgressSnapshot)

// Publish calls the function.
func (f Func) Publish(snapshot transfertypes.ProgressSnapshot) {
	f(snapshot)
}
