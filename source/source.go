// Package source provides byte-stream origins for the transfer pipeline.
//
// A Source knows how to open a reader over its bytes and report the total
// size when known. The pipeline stages the stream to local disk before
// uploading, so sources only need to support sequential reads.
package source

import (
	"context"
	"io"
)

// Source is an origin of bytes for one transfer.
type Source interface {
	// Open returns a reader over the source bytes and the total size in
	// bytes, or -1 when the size is not known up front. The caller closes
	// the reader. Open may be called again after a failed read to restart
	// the stream from the beginning.
	Open(ctx context.Context) (io.ReadCloser, int64, error)

	// Name returns a human-readable identifier for logs and session records.
	Name() string
}
