package chunker

import (
	"io"

	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/transfertypes"
)

// Part size bounds used when no explicit size is configured. Small files
// get small parts to keep worker counts useful; very large files get big
// parts to stay under the part-count ceiling.
const (
	autoMinPartSize = 5 * 1024 * 1024
	autoMaxPartSize = 50 * 1024 * 1024
)

// PartSizeFor picks a part size for a file of the given total size.
// The result is always within [5MB, 50MB] and keeps the part count below
// the multipart API ceiling.
func PartSizeFor(totalSize int64) int64 {
	size := int64(transfertypes.DefaultPartSize)

	// Grow the part size until the file fits in the allowed part count.
	for size < autoMaxPartSize && (totalSize+size-1)/size > transfertypes.MaxParts {
		size *= 2
	}

	if size < autoMinPartSize {
		size = autoMinPartSize
	}
	if size > autoMaxPartSize {
		size = autoMaxPartSize
	}
	return size
}

// NumParts returns ceil(totalSize/partSize), with a minimum of one part so
// that empty files still produce a valid multipart object.
func NumParts(totalSize, partSize int64) int {
	if totalSize == 0 {
		return 1
	}
	return int((totalSize + partSize - 1) / partSize)
}

// Plan segments a staged file of totalSize into contiguous chunk
// descriptors with 1-based part numbers. Part numbers are assigned here,
// before dispatch, and are never reallocated; a retried part keeps its
// number.
func Plan(totalSize, partSize int64) []transfertypes.ChunkDescriptor {
	n := NumParts(totalSize, partSize)
	chunks := make([]transfertypes.ChunkDescriptor, 0, n)

	for i := 0; i < n; i++ {
		start := int64(i) * partSize
		end := start + partSize
		if end > totalSize {
			end = totalSize
		}
		chunks = append(chunks, transfertypes.ChunkDescriptor{
			PartNumber: int32(i + 1),
			Start:      start,
			End:        end,
			Status:     transfertypes.ChunkPending,
		})
	}

	return chunks
}

// Reader yields fixed-size chunks from an underlying stream, tracking the
// cumulative byte offset and reporting each successful read to the given
// callback. It is safe for a single consumer only.
type Reader struct {
	src       io.Reader
	chunkSize int64
	offset    int64
	report    func(delta int64)
	eof       bool
}

// NewReader wraps src to produce chunks of at most chunkSize bytes.
// The report callback may be nil.
func NewReader(src io.Reader, chunkSize int64, report func(delta int64)) *Reader {
	return &Reader{
		src:       src,
		chunkSize: chunkSize,
		report:    report,
	}
}

// Next reads and returns the next chunk. It returns io.EOF once the stream
// is exhausted. Read failures are wrapped in a SourceReadError carrying the
// byte offset reached; resuming a partially consumed reader is the
// caller's concern.
func (r *Reader) Next() ([]byte, error) {
	if r.eof {
		return nil, io.EOF
	}

	buf := make([]byte, r.chunkSize)
	n, err := io.ReadFull(r.src, buf)

	switch err {
	case nil:
	case io.ErrUnexpectedEOF:
		// Short final chunk.
		r.eof = true
	case io.EOF:
		r.eof = true
		return nil, io.EOF
	default:
		return nil, errors.NewSourceReadError(r.offset, err)
	}

	r.offset += int64(n)
	if r.report != nil && n > 0 {
		r.report(int64(n))
	}
	return buf[:n], nil
}

// Offset returns the cumulative number of bytes consumed from the source.
func (r *Reader) Offset() int64 {
	return r.offset
}
