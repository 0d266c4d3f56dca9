package transfer

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"golang.org/x/sync/errgroup"

	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/internal/chunker"
	"github.com/objstream/transfer/internal/pool"
	"github.com/objstream/transfer/internal/progress"
	"github.com/objstream/transfer/internal/sink"
	"github.com/objstream/transfer/internal/staging"
	"github.com/objstream/transfer/internal/validation"
	"github.com/objstream/transfer/source"
	"github.com/objstream/transfer/transfertypes"
)

// stageChunkSize is the read granularity while spooling the source to disk.
const stageChunkSize = 1 << 20

// recordTimeout bounds terminal session record writes, which run on a
// detached context so a cancelled transfer still gets its final record.
const recordTimeout = 5 * time.Second

// Transfer moves one source to the destination key and returns a single
// terminal result. The pipeline stages the source locally, uploads it as a
// multipart object with a bounded worker pool, and finalizes it; on failure
// or cancellation the partial upload is aborted so no incomplete object
// remains visible.
//
// Cancel the context to abort. A cancelled transfer ends in the Aborted
// state and returns ErrCancelled.
func (c *Client) Transfer(
	ctx context.Context,
	src source.Source,
	key string,
	opts ...transfertypes.TransferOption,
) (*transfertypes.Result, error) {
	if err := validation.ValidateBucketName(c.cfg.Bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	optCfg := transfertypes.TransferOptionConfig{
		PartSize:      c.cfg.PartSize,
		Concurrency:   c.cfg.Concurrency,
		PresignExpiry: c.cfg.PresignExpiry,
	}
	for _, opt := range opts {
		opt(&optCfg)
	}

	session := NewSession(src.Name(), key)
	start := time.Now()

	c.logger.Info("transfer started",
		"session", session.ID(), "source", src.Name(), "key", key)
	c.saveRecord(session, "")

	result, err := c.run(ctx, session, src, key, &optCfg, start)
	if err != nil {
		c.failSession(ctx, session, err)
		return nil, err
	}
	return result, nil
}

// run drives the session through its stages. Terminal bookkeeping for the
// failure paths lives in the caller; the success path completes here.
func (c *Client) run(
	ctx context.Context,
	session *Session,
	src source.Source,
	key string,
	optCfg *transfertypes.TransferOptionConfig,
	start time.Time,
) (*transfertypes.Result, error) {
	if err := session.Transition(transfertypes.StateDownloading); err != nil {
		return nil, err
	}
	c.saveRecord(session, "")

	stagePath, size, err := c.stage(ctx, session, src, optCfg.Observer)
	if err != nil {
		return nil, err
	}
	defer c.staging.Remove(stagePath)

	session.SetSize(size)

	partSize := optCfg.PartSize
	if partSize <= 0 {
		partSize = chunker.PartSizeFor(size)
	}
	if err := validation.ValidatePipeline(size, partSize, optCfg.Concurrency, c.cfg.MaxAttempts); err != nil {
		return nil, err
	}

	file, err := c.staging.Open(stagePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contentType := optCfg.ContentType
	if contentType == "" {
		contentType = detectContentType(file)
	}

	if err := session.Transition(transfertypes.StateUploading); err != nil {
		return nil, err
	}
	c.saveRecord(session, "")

	s := c.newSink()
	uploadSession, err := s.Open(ctx, key, contentType)
	if err != nil {
		return nil, err
	}

	chunks := chunker.Plan(size, partSize)
	c.logger.Debug("upload planned",
		"session", session.ID(), "parts", len(chunks), "partSize", partSize)

	if err := c.uploadParts(ctx, s, uploadSession, file, chunks, size, optCfg); err != nil {
		s.Abort(uploadSession)
		return nil, err
	}

	etag, err := s.Finalize(ctx, uploadSession, len(chunks))
	if err != nil {
		s.Abort(uploadSession)
		return nil, err
	}

	var url string
	if optCfg.MintURL {
		url, err = c.PresignedURL(ctx, key, optCfg.PresignExpiry)
		if err != nil {
			// The object is already durable; losing the URL does not undo it.
			c.logger.Warn("failed to mint retrieval URL",
				"session", session.ID(), "key", key, "error", err)
			url = ""
		}
	}

	if err := session.Transition(transfertypes.StateCompleted); err != nil {
		return nil, err
	}
	c.saveRecord(session, url)

	duration := time.Since(start)
	c.logger.Info("transfer completed",
		"session", session.ID(), "key", key, "size", size,
		"parts", len(chunks), "retries", uploadSession.Retries(), "duration", duration)

	return &transfertypes.Result{
		SessionID: session.ID(),
		Key:       key,
		Size:      size,
		ETag:      etag,
		Parts:     len(chunks),
		Retries:   uploadSession.Retries(),
		URL:       url,
		Duration:  duration,
	}, nil
}

// stage spools the source to the staging area, retrying recoverable source
// failures from the beginning. It returns the staged file path and the
// byte count actually written.
func (c *Client) stage(
	ctx context.Context,
	session *Session,
	src source.Source,
	observer transfertypes.Observer,
) (string, int64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.DownloadRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", 0, errors.NewError("stage", errors.ErrCancelled).WithKey(session.Key())
		}

		if attempt > 0 {
			c.logger.Debug("retrying download",
				"session", session.ID(), "attempt", attempt+1, "error", lastErr)
		}

		path, size, err := c.stageOnce(ctx, session, src, observer)
		if err == nil {
			return path, size, nil
		}

		// Disk-full and permission failures will not improve on retry,
		// and neither will cancellation.
		if errors.IsCancelled(err) || stderrors.Is(err, errors.ErrStagingFatal) {
			return "", 0, err
		}
		lastErr = err
	}

	return "", 0, errors.NewError("stage", errors.ErrSourceRead).
		WithKey(session.Key()).
		WithMessage(lastErr.Error())
}

// stageOnce performs a single end-to-end spool of the source.
func (c *Client) stageOnce(
	ctx context.Context,
	session *Session,
	src source.Source,
	observer transfertypes.Observer,
) (string, int64, error) {
	rc, declared, err := src.Open(ctx)
	if err != nil {
		return "", 0, err
	}
	defer rc.Close()

	file, path, err := c.staging.Create(session.ID())
	if err != nil {
		return "", 0, errors.NewError("stage", errors.ErrStagingFatal).WithMessage(err.Error())
	}

	total := declared
	if total < 0 {
		total = 0
	}
	agg := progress.NewAggregator(total)
	emitter := progress.NewEmitter(agg, observer, c.cfg.ProgressInterval, transfertypes.StateDownloading)
	emitter.Start()
	defer emitter.Stop()

	written, err := spool(ctx, rc, file, agg)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = errors.NewError("stage", closeErr).WithMessage("cannot flush staging file")
	}
	if err != nil {
		c.staging.Remove(path)
		return "", 0, err
	}

	if declared >= 0 && written != declared {
		c.staging.Remove(path)
		return "", 0, errors.NewSourceReadError(written, io.ErrUnexpectedEOF)
	}

	return path, written, nil
}

// spool copies the source stream into the staging file chunk by chunk,
// reporting each chunk to the progress aggregator.
func spool(ctx context.Context, rc io.Reader, file fs.File, agg *progress.Aggregator) (int64, error) {
	reader := chunker.NewReader(rc, stageChunkSize, agg.Report)

	for {
		if err := ctx.Err(); err != nil {
			return reader.Offset(), errors.NewError("stage", errors.ErrCancelled)
		}

		chunk, err := reader.Next()
		if err == io.EOF {
			return reader.Offset(), nil
		}
		if err != nil {
			return reader.Offset(), err
		}

		if _, err := file.Write(chunk); err != nil {
			if staging.IsFatal(err) {
				return reader.Offset(), errors.NewError("stage", errors.ErrStagingFatal).
					WithMessage(err.Error())
			}
			return reader.Offset(), errors.NewError("stage", err).
				WithMessage("cannot write staging file")
		}
	}
}

// uploadParts uploads every planned chunk with a bounded worker pool. Part
// numbers were assigned at planning time; workers read their byte range
// with ReadAt so no shared file offset exists.
func (c *Client) uploadParts(
	ctx context.Context,
	s *sink.Sink,
	uploadSession *sink.Session,
	file fs.File,
	chunks []transfertypes.ChunkDescriptor,
	size int64,
	optCfg *transfertypes.TransferOptionConfig,
) error {
	workers := optCfg.Concurrency
	if len(chunks) < workers {
		workers = len(chunks)
	}
	if workers < 1 {
		workers = 1
	}

	partSize := int64(0)
	if len(chunks) > 0 {
		partSize = chunks[0].Size()
	}
	var bufPool *pool.PartPool
	if partSize > 0 {
		bufPool = pool.NewPartPool(partSize)
	}

	agg := progress.NewAggregator(size)
	emitter := progress.NewEmitter(agg, optCfg.Observer, c.cfg.ProgressInterval, transfertypes.StateUploading)
	emitter.Start()
	defer emitter.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.NewError("uploadPart", errors.ErrCancelled).
					WithKey(uploadSession.Key()).
					WithPart(chunk.PartNumber)
			}

			var data []byte
			if n := chunk.Size(); n > 0 {
				buf := bufPool.Get()
				defer bufPool.Put(buf)

				// ReadAt may return io.EOF alongside a full final chunk.
				read, err := file.ReadAt(buf[:n], chunk.Start)
				if err != nil && !(err == io.EOF && int64(read) == n) {
					return errors.NewError("uploadPart", err).
						WithKey(uploadSession.Key()).
						WithPart(chunk.PartNumber).
						WithMessage("cannot read staged chunk")
				}
				data = buf[:n]
			}

			if _, err := s.UploadPart(gctx, uploadSession, chunk.PartNumber, data); err != nil {
				return err
			}

			agg.Report(chunk.Size())
			return nil
		})
	}

	return g.Wait()
}

// failSession moves the session to its terminal failure state and writes
// the final record. Cancellation ends in Aborted, everything else in Failed.
func (c *Client) failSession(ctx context.Context, session *Session, cause error) {
	state := transfertypes.StateFailed
	if errors.IsCancelled(cause) || ctx.Err() != nil {
		state = transfertypes.StateAborted
	}

	if err := session.Transition(state); err != nil {
		c.logger.Warn("session already terminal",
			"session", session.ID(), "state", session.State(), "error", err)
		return
	}
	c.saveRecord(session, "")

	c.logger.Error("transfer ended",
		"session", session.ID(), "key", session.Key(), "state", state, "error", cause)
}

// saveRecord persists the session record on a detached context so terminal
// writes survive a cancelled transfer context.
func (c *Client) saveRecord(session *Session, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := c.store.Put(ctx, session.Record(url)); err != nil {
		c.logger.Warn("failed to persist session record",
			"session", session.ID(), "error", err)
	}
}

// detectContentType sniffs the staged bytes and rewinds the file. Detection
// failures fall back to a generic binary type.
func detectContentType(file fs.File) string {
	mime, err := mimetype.DetectReader(file)
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "application/octet-stream"
	}
	if err != nil {
		return "application/octet-stream"
	}
	return mime.String()
}
