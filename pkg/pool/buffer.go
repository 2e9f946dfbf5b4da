// Package pool provides reusable I/O buffers shared by the archive
// extraction and staging copy paths.
package pool

import (
	"sync"
)

// BufferPool hands out byte slices of one fixed size.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a pool of buffers of the given size in bytes.
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Get retrieves a buffer from the pool.
func (p *BufferPool) Get() *[]byte {
	return p.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool.
func (p *BufferPool) Put(buf *[]byte) {
	p.pool.Put(buf)
}

// IO is the shared pool for file copy buffers.
var IO = NewBufferPool(256 * 1024)
