// Package bytepool provides a bounded pool of fixed size scratch buffers.
package bytepool

import (
	"sync"
	"sync/atomic"
)

const (
	// TempBytesSize is the size of every buffer handed out by a default Pool.
	TempBytesSize = 64 * 1024
	// MaxSize bounds the number of bytes a default Pool keeps around.
	MaxSize = 2 * 1024 * 1024
)

// Stats is a snapshot of pool activity.
type Stats struct {
	Gets   uint64 // buffers handed out
	Puts   uint64 // buffers given back
	Hits   uint64 // Gets served from the pool without allocating
	Pooled int    // buffers currently held
}

// Pool hands out byte slices of one fixed size. It is safe for concurrent use.
type Pool struct {
	size    int
	maxBufs int

	mu    sync.Mutex
	queue [][]byte

	gets atomic.Uint64
	puts atomic.Uint64
	hits atomic.Uint64
}

// New returns a Pool of size byte buffers that retains at most maxSize bytes.
// Non-positive arguments fall back to TempBytesSize and MaxSize.
func New(size, maxSize int) *Pool {
	if size <= 0 {
		size = TempBytesSize
	}
	if maxSize <= 0 {
		maxSize = MaxSize
	}
	maxBufs := maxSize / size
	if maxBufs < 1 {
		maxBufs = 1
	}
	return &Pool{
		size:    size,
		maxBufs: maxBufs,
		queue:   make([][]byte, 0, maxBufs),
	}
}

// BufferSize returns the length of the buffers handed out by Get.
func (p *Pool) BufferSize() int { return p.size }

// Get returns a buffer of BufferSize bytes. Its contents are undefined.
func (p *Pool) Get() []byte {
	p.gets.Add(1)
	p.mu.Lock()
	if n := len(p.queue); n > 0 {
		b := p.queue[n-1]
		p.queue[n-1] = nil
		p.queue = p.queue[:n-1]
		p.mu.Unlock()
		p.hits.Add(1)
		return b
	}
	p.mu.Unlock()
	return make([]byte, p.size)
}

// Put gives b back to the pool. It reports whether b was kept; slices of a foreign
// size and slices beyond the pool's limit are dropped.
func (p *Pool) Put(b []byte) bool {
	p.puts.Add(1)
	if cap(b) != p.size {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) >= p.maxBufs {
		return false
	}
	p.queue = append(p.queue, b[:p.size])
	return true
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	pooled := len(p.queue)
	p.mu.Unlock()
	return Stats{
		Gets:   p.gets.Load(),
		Puts:   p.puts.Load(),
		Hits:   p.hits.Load(),
		Pooled: pooled,
	}
}
