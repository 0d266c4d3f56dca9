// Package pool provides memory management optimizations.
// This includes part-buffer pooling to reduce allocations across upload
// workers, where each worker needs a buffer of the configured part size.
package pool
