// Package bufpool recycles the large contiguous byte buffers that back a
// shard (internal/shardtable) across resizes.
//
// The teacher package wrapped Go's experimental goexperiment.arenas
// "arena" package to allocate values outside the GC's per-call path and
// free them in bulk on rotation (internal/arena, internal/genring in the
// ancestor tree). That API requires a non-default build tag and doesn't
// apply cleanly here: a shard buffer is a flat []byte with no pointers for
// the GC to scan, so arena allocation buys nothing a plain slice doesn't
// already have. What *is* worth keeping from that design is the core idea
// — don't pay a fresh large allocation on every resize when a same-sized
// buffer was just retired. (Cache-mode eviction works inside the existing
// buffer and never goes through the pool.)
//
// bufpool keeps one sync.Pool per distinct buffer size (every shard at a
// given bucketCount needs the same stride*bucketCount byte length, and
// shards frequently resize through the same sequence of sizes), plus a
// small ring of the most recently retired sizes for debug/metrics
// reporting — the part of genring.Ring worth preserving once its
// time-windowed generation concept (no TTL exists in this domain) is gone.
package bufpool

import (
	"sync"
)

// ringLen bounds how many retirement events we remember for diagnostics.
const ringLen = 16

// Pool recycles []byte buffers keyed by exact length.
type Pool struct {
	mu    sync.Mutex
	bySz  map[int]*sync.Pool
	ring  [ringLen]retirement
	ringN int
	gen   uint64
}

type retirement struct {
	generation uint64
	size       int
}

// New constructs an empty pool.
func New() *Pool {
	return &Pool{bySz: make(map[int]*sync.Pool)}
}

// Get returns a zeroed buffer of exactly size bytes, reusing a retired one
// when available.
func (p *Pool) Get(size int) []byte {
	p.mu.Lock()
	sp, ok := p.bySz[size]
	p.mu.Unlock()
	if !ok {
		return make([]byte, size)
	}
	if v := sp.Get(); v != nil {
		buf := v.([]byte)
		for i := range buf {
			buf[i] = 0
		}
		return buf
	}
	return make([]byte, size)
}

// Put retires buf for possible reuse by a future Get of the same size.
func (p *Pool) Put(buf []byte) {
	if len(buf) == 0 {
		return
	}
	size := len(buf)

	p.mu.Lock()
	sp, ok := p.bySz[size]
	if !ok {
		sp = &sync.Pool{}
		p.bySz[size] = sp
	}
	p.gen++
	p.ring[p.ringN%ringLen] = retirement{generation: p.gen, size: size}
	p.ringN++
	p.mu.Unlock()

	sp.Put(buf)
}

// Stats reports how many buffers have ever been retired and the sizes of
// the most recent ones, newest first.
func (p *Pool) Stats() (retired uint64, recentSizes []int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.ringN
	if n > ringLen {
		n = ringLen
	}
	recentSizes = make([]int, 0, n)
	for i := 0; i < n; i++ {
		idx := (p.ringN - 1 - i + ringLen) % ringLen
		recentSizes = append(recentSizes, p.ring[idx].size)
	}
	return p.gen, recentSizes
}
