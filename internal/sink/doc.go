// Package sink drives multipart upload sessions against an S3-compatible
// object store, including per-part retry with exponential backoff and
// best-effort abort of failed sessions.
package sink
