// Package staging manages the local spool files used by the
// stage-then-upload pipeline.
package staging
