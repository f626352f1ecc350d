// Package bench provides reproducible micro-benchmarks for the table.
// Run via:  go test ./bench -bench=. -benchmem -cpu 1,4,16
//
// The benchmarks intentionally use a single key/value shape so results are
// comparable across versions:
//   - Key   – uint64  (cheap hashing, fits in register)
//   - Value – 64-byte struct (large enough to matter, small enough for cache)
//
// We measure:
//  1. Set         – write-only workload, dict mode
//  2. Get         – read-only workload (after warm-up)
//  3. GetParallel – highly concurrent reads (b.RunParallel)
//  4. GetOrLoad   – 90% hits, 10% misses with loader cost
//  5. CacheSet    – write-only workload, bounded CLOCK cache mode
//
// Results are printed in ns/op + alloc/op so CI can diff via benchstat.
//
// NOTE: Unit tests live elsewhere; this file is only for performance.
package bench

import (
	"context"
	"math/rand"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/kvtab/buckettable/pkg/table"
	"github.com/kvtab/buckettable/pkg/typed"
)

type value64 struct {
	_ [64]byte
}

const keys = 1 << 20 // 1M keys for dataset

func newDictCache() *typed.Cache[uint64, value64] {
	c, err := typed.New[uint64, value64](table.WithElementsMin(keys))
	if err != nil {
		panic(err)
	}
	return c
}

func newBoundedCache() *typed.Cache[uint64, value64] {
	c, err := typed.New[uint64, value64](table.WithElementsMin(keys / 4))
	if err != nil {
		panic(err)
	}
	return c
}

// global dataset reused across benches to avoid reallocating large slices.
var ds = func() []uint64 {
	rnd := rand.New(rand.NewSource(42))
	arr := make([]uint64, keys)
	for i := range arr {
		arr[i] = rnd.Uint64()
	}
	return arr
}()

func BenchmarkSet(b *testing.B) {
	c := newDictCache()
	var val value64
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := ds[i&(keys-1)]
		c.Set(key, val)
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := newBoundedCache()
	var val value64
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := ds[i&(keys-1)]
		c.CacheSet(key, val)
	}
}

func BenchmarkGet(b *testing.B) {
	c := newDictCache()
	var val value64
	for _, k := range ds {
		c.Set(k, val)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := ds[i&(keys-1)]
		c.Get(k)
	}
}

func BenchmarkGetParallel(b *testing.B) {
	c := newDictCache()
	var val value64
	for _, k := range ds {
		c.Set(k, val)
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		idx := rand.Intn(keys)
		for pb.Next() {
			idx = (idx + 1) & (keys - 1)
			c.Get(ds[idx])
		}
	})
}

func BenchmarkGetOrLoad(b *testing.B) {
	c := newDictCache()
	var val value64
	// Preload 90% of keys to simulate mixed hit/miss.
	for i, k := range ds {
		if i%10 != 0 {
			c.Set(k, val)
		}
	}
	var loaderCnt atomic.Uint64
	loader := func(ctx context.Context, key uint64) (value64, error) {
		loaderCnt.Add(1)
		return val, nil
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := ds[i&(keys-1)]
		c.GetOrLoad(context.Background(), k, loader)
	}
	b.ReportMetric(float64(loaderCnt.Load())/float64(b.N)*100, "miss-%")
}

func init() {
	runtime.GOMAXPROCS(runtime.NumCPU())
}
