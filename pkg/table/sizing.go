package table

// sizing.go holds the pure sizing arithmetic spec §1 and §3 leave as
// "treated as pure functions": deriving shardCount and each shard's initial
// bucketCount from the constructor's elementsMin/elementsMax, and the
// resource ceilings construction and resize both have to respect.

import "github.com/kvtab/buckettable/internal/bucketlayout"

const (
	// BufferMax is the largest byte length any one shard's buffer may grow
	// to (2 GiB minus one, per spec §5).
	BufferMax = 1<<31 - 1

	// BucketsMax is the largest bucketCount any one shard may grow to,
	// per spec §5.
	BucketsMax = 65536

	// ShardCountMax is the largest number of shards a Table may have,
	// per spec §5.
	ShardCountMax = 8192

	// defaultElementsMin is the constructor default for elementsMin.
	defaultElementsMin = 1024
)

// nextPow2 returns the smallest power of two >= n (n >= 1).
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// defaultElementsMax implements spec §6's default:
// min(max(elementsMin+4194304, elementsMin*1024), 2^32).
func defaultElementsMax(elementsMin int) int64 {
	a := int64(elementsMin) + 4194304
	b := int64(elementsMin) * 1024
	m := a
	if b > m {
		m = b
	}
	const ceil = int64(1) << 32
	if m > ceil {
		m = ceil
	}
	return m
}

// shardCountFor derives shardCount from elementsMin: a power of two, bounded
// to [1, ShardCountMax], scaled so that a freshly constructed table starts
// with a modest number of buckets per shard rather than one giant shard.
func shardCountFor(elementsMin int) int {
	n := nextPow2(elementsMin / 4096)
	if n < 1 {
		n = 1
	}
	if n > ShardCountMax {
		n = ShardCountMax
	}
	return n
}

// initialBucketCountFor derives the per-shard bucketCount that gives the
// table at least elementsMin total slots across shardCount shards, rounded
// up to a power of two no smaller than 2, per spec §3.
func initialBucketCountFor(elementsMin, shardCount int) int {
	perShardElements := (elementsMin + shardCount - 1) / shardCount
	buckets := nextPow2((perShardElements + bucketlayout.Slots - 1) / bucketlayout.Slots)
	if buckets < 2 {
		buckets = 2
	}
	if buckets > BucketsMax {
		buckets = BucketsMax
	}
	return buckets
}

// bufferBytesFor returns the byte length of a shard buffer holding
// bucketCount buckets of the given key/value sizes.
func bufferBytesFor(keySize, valueSize, bucketCount int) int64 {
	return int64(bucketlayout.Stride(keySize, valueSize)) * int64(bucketCount)
}
