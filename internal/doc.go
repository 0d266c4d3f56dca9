// Package internal contains private implementation details for the transfer
// module. These packages are not intended for external use and may change
// without notice.
//
// The internal packages are organized as follows:
//   - chunker: Stream and file segmentation with stable part numbers
//   - staging: Local spool file management
//   - sink: Multipart upload sessions with retry and abort
//   - progress: Byte-count aggregation and rate-limited snapshots
//   - validation: Input validation logic
//   - pool: Memory management optimizations
//   - s3api: Object-store interface definitions
//   - testutil: Mocks for the object-store interfaces
package internal
