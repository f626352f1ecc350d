package table

// metrics.go is a thin abstraction over Prometheus so Table works with or
// without metrics: when the user passes WithMetrics(reg), labeled metrics
// are created and registered; otherwise a no-op sink is used and the hot
// path pays nothing for it. Adapted from the teacher's metricsSink/noop/prom
// split in pkg/metrics.go, relabelled for this domain.

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink abstracts the concrete backend (Prometheus vs noop) away from
// Table, which only knows about these methods.
type metricsSink interface {
	incHit(shard int)
	incMiss(shard int)
	incSet(shard int)
	incEviction(shard int)
	incResize(shard int)
	setBucketBytes(shard int, value int64)
	setLoadFactor(shard int, value float64)
}

type noopMetrics struct{}

func (noopMetrics) incHit(int)                  {}
func (noopMetrics) incMiss(int)                 {}
func (noopMetrics) incSet(int)                  {}
func (noopMetrics) incEviction(int)              {}
func (noopMetrics) incResize(int)               {}
func (noopMetrics) setBucketBytes(int, int64)   {}
func (noopMetrics) setLoadFactor(int, float64)  {}

type promMetrics struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	sets        *prometheus.CounterVec
	evictions   *prometheus.CounterVec
	resizes     *prometheus.CounterVec
	bucketBytes *prometheus.GaugeVec
	loadFactor  *prometheus.GaugeVec
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	label := []string{"shard"}

	pm := &promMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buckettable", Name: "hits_total", Help: "Number of get/exist hits.",
		}, label),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buckettable", Name: "misses_total", Help: "Number of get/exist misses.",
		}, label),
		sets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buckettable", Name: "sets_total", Help: "Number of set/cache calls.",
		}, label),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buckettable", Name: "evictions_total", Help: "Number of CLOCK evictions in cache mode.",
		}, label),
		resizes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buckettable", Name: "resizes_total", Help: "Number of shard resizes.",
		}, label),
		bucketBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "buckettable", Name: "bucket_bytes", Help: "Bytes allocated for this shard's bucket buffer.",
		}, label),
		loadFactor: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "buckettable", Name: "load_factor", Help: "length/capacity for this shard.",
		}, label),
	}

	reg.MustRegister(pm.hits, pm.misses, pm.sets, pm.evictions, pm.resizes, pm.bucketBytes, pm.loadFactor)
	return pm
}

func (m *promMetrics) incHit(shard int)  { m.hits.WithLabelValues(strconv.Itoa(shard)).Inc() }
func (m *promMetrics) incMiss(shard int) { m.misses.WithLabelValues(strconv.Itoa(shard)).Inc() }
func (m *promMetrics) incSet(shard int)  { m.sets.WithLabelValues(strconv.Itoa(shard)).Inc() }
func (m *promMetrics) incEviction(shard int) {
	m.evictions.WithLabelValues(strconv.Itoa(shard)).Inc()
}
func (m *promMetrics) incResize(shard int) { m.resizes.WithLabelValues(strconv.Itoa(shard)).Inc() }
func (m *promMetrics) setBucketBytes(shard int, value int64) {
	m.bucketBytes.WithLabelValues(strconv.Itoa(shard)).Set(float64(value))
}
func (m *promMetrics) setLoadFactor(shard int, value float64) {
	m.loadFactor.WithLabelValues(strconv.Itoa(shard)).Set(value)
}

// newMetricsSink decides which implementation to use.
func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
