package pool

import (
	"sync"
)

// PartPool manages reusable part-sized buffers. All buffers in one pool
// share the same capacity, so a pool is created per pipeline with the
// pipeline's part size.
type PartPool struct {
	size int64
	pool *sync.Pool
}

// NewPartPool creates a pool of buffers with the given capacity.
func NewPartPool(size int64) *PartPool {
	return &PartPool{
		size: size,
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Get returns a buffer of the pool's part size.
// The caller is responsible for calling Put to return the buffer to the pool.
func (p *PartPool) Get() []byte {
	bufPtr := p.pool.Get().(*[]byte)
	return (*bufPtr)[:p.size]
}

// Put returns a buffer to the pool.
// The buffer should not be used after calling Put. Buffers of a different
// capacity are dropped rather than pooled.
func (p *PartPool) Put(buf []byte) {
	if int64(cap(buf)) != p.size {
		return
	}
	buf = buf[:p.size]
	p.pool.Put(&buf)
}

// Size returns the buffer capacity this pool hands out.
func (p *PartPool) Size() int64 {
	return p.size
}
