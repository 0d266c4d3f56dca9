package sink

import (
	"bytes"
	"context"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/charmbracelet/log"

	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/internal/s3api"
	"github.com/objstream/transfer/transfertypes"
)

// Config holds sink tuning parameters.
type Config struct {
	// Bucket is the destination bucket
	Bucket string

	// MaxAttempts is the number of attempts per part (first try included)
	MaxAttempts int

	// RetryBaseDelay is the base delay for exponential backoff
	RetryBaseDelay time.Duration

	// AttemptTimeout bounds a single upload attempt
	AttemptTimeout time.Duration

	// Logger receives retry and abort diagnostics
	Logger *log.Logger
}

// Sink uploads parts to an S3-compatible multipart session. UploadPart is
// safe to call concurrently for different part numbers on the same session.
type Sink struct {
	client s3api.S3API
	cfg    Config
}

// New creates a sink over the given object-store client.
func New(client s3api.S3API, cfg Config) *Sink {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = transfertypes.DefaultMaxAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = transfertypes.DefaultRetryBaseDelay
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = transfertypes.DefaultAttemptTimeout
	}
	return &Sink{client: client, cfg: cfg}
}

// Session is an open multipart upload session. Results are keyed by part
// number so a retried part overwrites its earlier attempt rather than
// appending a duplicate.
type Session struct {
	key      string
	uploadID string

	mu      sync.Mutex
	results map[int32]transfertypes.PartResult

	retries atomic.Int64
}

// Key returns the destination object key.
func (s *Session) Key() string {
	return s.key
}

// UploadID returns the object store's multipart session identifier.
func (s *Session) UploadID() string {
	return s.uploadID
}

// Retries returns the number of part-level retry attempts observed.
func (s *Session) Retries() int {
	return int(s.retries.Load())
}

// Results returns a copy of the collected part results, sorted by part number.
func (s *Session) Results() []transfertypes.PartResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]transfertypes.PartResult, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out
}

// Open negotiates a multipart upload session with the object store.
// Failures here are configuration problems (permissions, missing bucket)
// and are never retried.
func (s *Sink) Open(ctx context.Context, key, contentType string) (*Session, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	output, err := s.client.CreateMultipartUpload(ctx, input)
	if err != nil {
		return nil, errors.NewError("open", errors.ErrSinkInit).
			WithKey(key).
			WithMessage(err.Error())
	}

	return &Session{
		key:      key,
		uploadID: aws.ToString(output.UploadId),
		results:  make(map[int32]transfertypes.PartResult),
	}, nil
}

// UploadPart uploads one part, retrying transient failures up to the
// configured attempt bound with exponential backoff. The part number is
// fixed by the caller and reused on retry, never reallocated. Non-transient
// errors (auth, permissions, missing upload) propagate immediately.
func (s *Sink) UploadPart(
	ctx context.Context,
	session *Session,
	partNumber int32,
	data []byte,
) (transfertypes.PartResult, error) {
	var lastErr error

	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return transfertypes.PartResult{}, errors.NewError("uploadPart", errors.ErrCancelled).
				WithKey(session.key).
				WithPart(partNumber)
		}

		if attempt > 0 {
			session.retries.Add(1)
			if s.cfg.Logger != nil {
				s.cfg.Logger.Debug("retrying part upload",
					"key", session.key, "part", partNumber, "attempt", attempt+1, "error", lastErr)
			}
			if err := sleepBackoff(ctx, s.cfg.RetryBaseDelay, attempt-1); err != nil {
				return transfertypes.PartResult{}, errors.NewError("uploadPart", errors.ErrCancelled).
					WithKey(session.key).
					WithPart(partNumber)
			}
		}

		result, err := s.uploadPartOnce(ctx, session, partNumber, data)
		if err == nil {
			session.mu.Lock()
			session.results[partNumber] = result
			session.mu.Unlock()
			return result, nil
		}

		lastErr = err
		if !isTransient(err) {
			break
		}
	}

	return transfertypes.PartResult{}, errors.NewError("uploadPart", errors.ErrPartUpload).
		WithKey(session.key).
		WithPart(partNumber).
		WithMessage(lastErr.Error())
}

// uploadPartOnce performs a single bounded upload attempt.
func (s *Sink) uploadPartOnce(
	ctx context.Context,
	session *Session,
	partNumber int32,
	data []byte,
) (transfertypes.PartResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
	defer cancel()

	input := &s3.UploadPartInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(session.key),
		UploadId:      aws.String(session.uploadID),
		PartNumber:    aws.Int32(partNumber),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}

	output, err := s.client.UploadPart(attemptCtx, input)
	if err != nil {
		return transfertypes.PartResult{}, err
	}

	return transfertypes.PartResult{
		PartNumber: partNumber,
		ETag:       aws.ToString(output.ETag),
		Size:       int64(len(data)),
	}, nil
}

// Finalize validates that the collected parts form exactly {1..expected}
// and commits the upload. A gap or shortfall is a coordination bug and
// fails without touching the object store.
func (s *Sink) Finalize(ctx context.Context, session *Session, expected int) (string, error) {
	results := session.Results()

	if len(results) != expected {
		return "", errors.NewError("finalize", errors.ErrIncompleteParts).
			WithKey(session.key).
			WithMessage("expected " + strconv.Itoa(expected) + " parts, have " + strconv.Itoa(len(results)))
	}
	for i, r := range results {
		if r.PartNumber != int32(i+1) {
			return "", errors.NewError("finalize", errors.ErrIncompleteParts).
				WithKey(session.key).
				WithMessage("gap in part numbers at part " + strconv.Itoa(i+1))
		}
	}

	completed := make([]awstypes.CompletedPart, 0, len(results))
	for _, r := range results {
		completed = append(completed, awstypes.CompletedPart{
			ETag:       aws.String(r.ETag),
			PartNumber: aws.Int32(r.PartNumber),
		})
	}

	input := &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(s.cfg.Bucket),
		Key:      aws.String(session.key),
		UploadId: aws.String(session.uploadID),
		MultipartUpload: &awstypes.CompletedMultipartUpload{
			Parts: completed,
		},
	}

	output, err := s.client.CompleteMultipartUpload(ctx, input)
	if err != nil {
		return "", errors.NewError("finalize", err).WithKey(session.key)
	}

	return aws.ToString(output.ETag), nil
}

// Abort discards a partially uploaded session. The caller is already
// handling a failure, so abort errors are logged and never propagated.
// Runs on its own deadline so cleanup proceeds even when the transfer
// context is already cancelled.
func (s *Sink) Abort(session *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	input := &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.cfg.Bucket),
		Key:      aws.String(session.key),
		UploadId: aws.String(session.uploadID),
	}

	if _, err := s.client.AbortMultipartUpload(ctx, input); err != nil && s.cfg.Logger != nil {
		s.cfg.Logger.Warn("failed to abort multipart upload",
			"key", session.key, "uploadID", session.uploadID, "error", err)
	}
}
