// Package transfertypes provides shared type definitions for the transfer module.
package transfertypes

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// State represents the lifecycle state of a transfer session.
type State string

// Session lifecycle states. A session moves Pending -> Downloading ->
// Uploading -> Completed, with Failed and Aborted as alternate terminal
// states reachable from either active state.
const (
	// StatePending is the initial state before any bytes move
	StatePending State = "PENDING"

	// StateDownloading means the source is being staged to local disk
	StateDownloading State = "DOWNLOADING"

	// StateUploading means staged bytes are being uploaded to the sink
	StateUploading State = "UPLOADING"

	// StateCompleted means every part finished and the upload was finalized
	StateCompleted State = "COMPLETED"

	// StateFailed means the transfer failed after exhausting retries
	StateFailed State = "FAILED"

	// StateAborted means the caller cancelled the transfer
	StateAborted State = "ABORTED"
)

// Terminal reports whether the state is a terminal state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateAborted
}

// ChunkStatus represents the upload status of a single chunk.
type ChunkStatus int32

// Chunk statuses.
const (
	// ChunkPending means the chunk has not been claimed by a worker
	ChunkPending ChunkStatus = iota

	// ChunkInFlight means a worker is currently uploading the chunk
	ChunkInFlight

	// ChunkDone means the chunk uploaded successfully
	ChunkDone

	// ChunkFailed means the chunk failed after exhausting retries
	ChunkFailed
)

// ChunkDescriptor describes one byte range [Start, End) of the staged file
// and its 1-based part number. The range and part number are immutable once
// created; only Status changes.
type ChunkDescriptor struct {
	// PartNumber is the 1-based multipart part number
	PartNumber int32

	// Start is the inclusive start offset within the file
	Start int64

	// End is the exclusive end offset within the file
	End int64

	// Status is the upload status of this chunk
	Status ChunkStatus
}

// Size returns the chunk length in bytes.
func (c ChunkDescriptor) Size() int64 {
	return c.End - c.Start
}

// PartResult is the integrity tag returned by the sink for one uploaded part.
type PartResult struct {
	// PartNumber is the 1-based multipart part number
	PartNumber int32

	// ETag is the opaque integrity tag returned by the object store
	ETag string

	// Size is the number of bytes uploaded for this part
	Size int64
}

// ProgressSnapshot is an immutable view of transfer progress at one instant.
// Snapshots are produced by the progress aggregator and superseded by later
// snapshots; they are never mutated after creation.
type ProgressSnapshot struct {
	// Stage is the session state the snapshot was taken in
	Stage State

	// Transferred is the number of bytes moved so far in this stage
	Transferred int64

	// Total is the expected total byte count for this stage
	Total int64

	// Percent is the completion percentage (100 when Total is zero)
	Percent float64

	// Elapsed is the time since the stage started
	Elapsed time.Duration

	// Speed is the smoothed throughput in bytes per second
	Speed float64

	// ETA is the estimated time remaining; only valid when ETAKnown is true
	ETA time.Duration

	// ETAKnown is false when the smoothed speed is zero
	ETAKnown bool
}

// Observer receives rate-limited progress snapshots. Implementations are
// responsible for their own formatting and display. The pipeline guarantees
// it will not publish more often than the configured interval (plus one
// leading and one trailing boundary snapshot per stage), but the observer
// may be invoked from a background goroutine and must be safe for that.
type Observer interface {
	// Publish delivers one progress snapshot
	Publish(snapshot ProgressSnapshot)
}

// Result is the single terminal notification for a successful transfer.
type Result struct {
	// SessionID identifies the transfer session
	SessionID string

	// Key is the destination object key
	Key string

	// Size is the total number of bytes uploaded
	Size int64

	// ETag is the integrity tag of the finalized object
	ETag string

	// Parts is the number of multipart parts uploaded
	Parts int

	// Retries is the number of part-level retry attempts observed
	Retries int

	// URL is a time-limited retrieval URL, when minting was requested
	URL string

	// Duration is how long the whole transfer took
	Duration time.Duration
}

// SessionRecord is the metadata persisted for a transfer session. The core
// pipeline writes records through the SessionStore interface and does not
// depend on the backing storage.
type SessionRecord struct {
	// ID is the session identifier
	ID string `json:"id"`

	// Source identifies where the bytes came from
	Source string `json:"source"`

	// Key is the destination object key
	Key string `json:"key"`

	// Size is the total byte size of the file
	Size int64 `json:"size"`

	// State is the session state at the time of the write
	State State `json:"state"`

	// URL is the minted retrieval URL, if any
	URL string `json:"url,omitempty"`

	// CreatedAt is when the session was created
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the record was last written
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStore is the minimal persistence collaborator for session metadata.
type SessionStore interface {
	// Put stores or replaces the record for a session
	Put(ctx context.Context, record SessionRecord) error

	// Get retrieves the record for a session
	Get(ctx context.Context, id string) (SessionRecord, error)

	// Delete removes the record for a session
	Delete(ctx context.Context, id string) error
}

// Default tuning values for the pipeline.
const (
	// DefaultPartSize is the default multipart part size (8MB)
	DefaultPartSize = 8 * 1024 * 1024

	// MinPartSize is the smallest part size the object store accepts (5MB)
	MinPartSize = 5 * 1024 * 1024

	// MaxParts is the part count ceiling imposed by the multipart API
	MaxParts = 10000

	// DefaultConcurrency is the default upload worker pool size
	DefaultConcurrency = 5

	// DefaultMaxAttempts is the default number of attempts per part
	DefaultMaxAttempts = 3

	// DefaultRetryBaseDelay is the base delay for exponential backoff
	DefaultRetryBaseDelay = 500 * time.Millisecond

	// DefaultAttemptTimeout bounds a single part upload attempt
	DefaultAttemptTimeout = 60 * time.Second

	// DefaultProgressInterval is the minimum gap between observer updates
	DefaultProgressInterval = 1500 * time.Millisecond

	// DefaultDownloadRetries is how many times staging is retried end to end
	DefaultDownloadRetries = 2

	// DefaultPresignExpiry is the default lifetime of minted retrieval URLs
	DefaultPresignExpiry = 24 * time.Hour

	// MinPresignExpiry is the shortest allowed retrieval URL lifetime
	MinPresignExpiry = time.Hour

	// MaxPresignExpiry is the longest allowed retrieval URL lifetime
	MaxPresignExpiry = 7 * 24 * time.Hour
)

// ClientConfig holds configuration for the transfer client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	ForcePathStyle   bool
	PartSize         int64
	Concurrency      int
	MaxAttempts      int
	RetryBaseDelay   time.Duration
	AttemptTimeout   time.Duration
	ProgressInterval time.Duration
	DownloadRetries  int
	PresignExpiry    time.Duration
	StagingDir       string
	CustomAWSConfig  *aws.Config
	Filesystem       fs.Filesystem // Filesystem abstraction for staging operations
	Logger           *log.Logger
	Store            SessionStore
}

// TransferOptionConfig holds per-transfer overrides via functional options.
type TransferOptionConfig struct {
	ContentType   string
	PartSize      int64
	Concurrency   int
	Observer      Observer
	PresignExpiry time.Duration
	MintURL       bool
}

// Option is a functional option for configuring the transfer client.
type (
	Option func(*ClientConfig)
	// TransferOption is a functional option for configuring a single transfer.
	TransferOption func(*TransferOptionConfig)
)
