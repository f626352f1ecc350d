package table

// config.go defines the internal configuration object and the functional
// options New accepts, following the teacher's config.go shape: defaults
// filled by defaultConfig, user options layered on top, then validated and
// finalised by applyOptions before anything is allocated.

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Table at construction time.
type Option func(*config)

type config struct {
	keySize     int
	valueSize   int
	elementsMin int
	elementsMax int64

	logger   *zap.Logger
	registry *prometheus.Registry
}

func defaultConfig(keySize, valueSize int) *config {
	return &config{
		keySize:     keySize,
		valueSize:   valueSize,
		elementsMin: defaultElementsMin,
		elementsMax: defaultElementsMax(defaultElementsMin),
		logger:      zap.NewNop(),
	}
}

// WithElementsMin overrides the default initial sizing hint (1024).
func WithElementsMin(n int) Option {
	return func(c *config) {
		c.elementsMin = n
	}
}

// WithElementsMax overrides the default maximum element count. New rejects a
// value below elementsMin; growth is not checked against it, and set()
// reports maximum capacity exceeded only when a resize would pass
// BucketsMax or BufferMax.
func WithElementsMax(n int64) Option {
	return func(c *config) {
		c.elementsMax = n
	}
}

// WithLogger plugs an external zap.Logger. The core never logs on the hot
// path; Table logs only two rare failures of Set: set-exhausted and
// maximum capacity exceeded. Resizes, mode conflicts and construction are
// not logged.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics collection for the table. Passing
// nil disables metrics (default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// applyOptions layers opts over cfg then validates every field against the
// bounds in spec §3 and §5, returning the first violation found.
func applyOptions(cfg *config, opts []Option) error {
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.keySize < 4 || cfg.keySize > 64 || cfg.keySize%4 != 0 {
		return ErrKeySizeRange
	}
	if cfg.valueSize < 0 || cfg.valueSize > 1048576 {
		return ErrValueSizeRange
	}
	if cfg.elementsMin <= 0 {
		return ErrElementsMinRange
	}
	if cfg.elementsMax <= 0 || cfg.elementsMax < int64(cfg.elementsMin) {
		return ErrElementsMaxRange
	}

	shardCount := shardCountFor(cfg.elementsMin)
	bucketCount := initialBucketCountFor(cfg.elementsMin, shardCount)
	if bufferBytesFor(cfg.keySize, cfg.valueSize, bucketCount) > BufferMax {
		return ErrCapacityExceeded
	}

	return nil
}
