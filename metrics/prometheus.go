package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sky-flux/ebisu"
)

// Source is what the collector reads at scrape time. *ebisu.Engine implements it.
type Source interface {
	Stats() ebisu.Stats
	Cache() *ebisu.LogGammaCache
}

// Compile-time interface checks.
var (
	_ Source               = (*ebisu.Engine)(nil)
	_ prometheus.Collector = (*Collector)(nil)
)

// Collector is a prometheus.Collector over an engine's counters. Values are
// read on every scrape, so nothing needs to be recorded by the caller.
type Collector struct {
	src         Source
	namespace   string
	constLabels map[string]string

	// Engine outcomes
	updates        *prometheus.Desc
	rebalances     *prometheus.Desc
	breakdowns     *prometheus.Desc
	nonConvergence *prometheus.Desc

	// Log-gamma cache
	cacheHits      *prometheus.Desc
	cacheMisses    *prometheus.Desc
	cacheEvictions *prometheus.Desc
	cacheEntries   *prometheus.Desc
}

// NewCollector creates a collector for src with namespace "ebisu".
func NewCollector(src Source, opts ...Option) *Collector {
	c := &Collector{
		src:         src,
		namespace:   "ebisu",
		constLabels: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.initializeDescs()
	return c
}

func (c *Collector) initializeDescs() {
	desc := func(subsystem, name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(c.namespace, subsystem, name),
			help, nil, c.constLabels,
		)
	}

	c.updates = desc("engine", "updates_total", "Total number of posteriors returned by recall updates")
	c.rebalances = desc("engine", "rebalances_total", "Total number of posteriors re-anchored near their halflife")
	c.breakdowns = desc("engine", "breakdowns_total", "Total number of updates rejected for numerical breakdown")
	c.nonConvergence = desc("engine", "nonconvergence_total", "Total number of percentile searches that failed to converge")

	c.cacheHits = desc("lgamma_cache", "hits_total", "Total number of log-gamma cache hits")
	c.cacheMisses = desc("lgamma_cache", "misses_total", "Total number of log-gamma cache misses")
	c.cacheEvictions = desc("lgamma_cache", "evictions_total", "Total number of log-gamma cache evictions")
	c.cacheEntries = desc("lgamma_cache", "entries", "Current number of cached log-gamma values")
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.updates, c.rebalances, c.breakdowns, c.nonConvergence,
		c.cacheHits, c.cacheMisses, c.cacheEvictions, c.cacheEntries,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()
	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(c.updates, st.Updates)
	counter(c.rebalances, st.Rebalances)
	counter(c.breakdowns, st.Breakdowns)
	counter(c.nonConvergence, st.NonConvergence)

	cs := c.src.Cache().Stats()
	counter(c.cacheHits, cs.Hits)
	counter(c.cacheMisses, cs.Misses)
	counter(c.cacheEvictions, cs.Evictions)
	ch <- prometheus.MustNewConstMetric(c.cacheEntries, prometheus.GaugeValue, float64(cs.Entries))
}

// Register creates a collector for src and registers it on reg.
func Register(reg prometheus.Registerer, src Source, opts ...Option) (*Collector, error) {
	c := NewCollector(src, opts...)
	if err := reg.Register(c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegisterFailed, err)
	}
	return c, nil
}
