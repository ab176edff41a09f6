package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exposes control-channel activity as Prometheus metrics and
// implements trunk.MetricsSink. A nil *Collector is not valid; use
// NewCollector to get one wired to its own registry.
type Collector struct {
	registry *prometheus.Registry

	denyTotal    *prometheus.CounterVec
	queueTotal   *prometheus.CounterVec
	grantCount   prometheus.Gauge
	freeChCount  prometheus.Gauge
	unitRegCount prometheus.Gauge
	affCount     prometheus.Gauge

	grantAcquiredTotal *prometheus.CounterVec
	grantReleasedTotal *prometheus.CounterVec
	adjSiteFailure     *prometheus.GaugeVec
}

// NewCollector creates a Collector registered against a fresh registry,
// so tests can spin up as many independent collectors as they like
// without colliding on the global default registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	return &Collector{
		registry: reg,
		denyTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "p25cc",
			Name:      "deny_total",
			Help:      "Total DENY_RSP TSBKs emitted, by reason.",
		}, []string{"reason"}),
		queueTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "p25cc",
			Name:      "queue_total",
			Help:      "Total QUE_RSP TSBKs emitted, by reason.",
		}, []string{"reason"}),
		grantCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "p25cc",
			Name:      "grants_active",
			Help:      "Number of voice channel grants currently active.",
		}),
		freeChCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "p25cc",
			Name:      "channels_free",
			Help:      "Number of voice channels currently free.",
		}),
		unitRegCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "p25cc",
			Name:      "unit_registrations",
			Help:      "Number of units currently registered on this site.",
		}),
		affCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "p25cc",
			Name:      "group_affiliations",
			Help:      "Number of unit-to-talkgroup affiliation records currently held.",
		}),
		grantAcquiredTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "p25cc",
			Name:      "grant_acquired_total",
			Help:      "Total grants acquired, split by whether the channel was reused.",
		}, []string{"reused"}),
		grantReleasedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "p25cc",
			Name:      "grant_released_total",
			Help:      "Total grants released, by reason.",
		}, []string{"reason"}),
		adjSiteFailure: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "p25cc",
			Name:      "adjacent_site_failed",
			Help:      "1 if the adjacent site is considered failed (stale RFSS status), else 0.",
		}, []string{"site_id"}),
	}
}

// Registry returns the Prometheus registry this collector's metrics are
// registered against, for wiring into an HTTP exposition handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// IncDeny implements trunk.MetricsSink.
func (c *Collector) IncDeny(reason string) {
	c.denyTotal.WithLabelValues(reason).Inc()
}

// IncQueue implements trunk.MetricsSink.
func (c *Collector) IncQueue(reason string) {
	c.queueTotal.WithLabelValues(reason).Inc()
}

// SetGrantCount implements trunk.MetricsSink.
func (c *Collector) SetGrantCount(n int) {
	c.grantCount.Set(float64(n))
}

// SetFreeChannelCount implements trunk.MetricsSink.
func (c *Collector) SetFreeChannelCount(n int) {
	c.freeChCount.Set(float64(n))
}

// SetUnitRegCount implements trunk.MetricsSink.
func (c *Collector) SetUnitRegCount(n int) {
	c.unitRegCount.Set(float64(n))
}

// SetAffCount implements trunk.MetricsSink.
func (c *Collector) SetAffCount(n int) {
	c.affCount.Set(float64(n))
}

// IncGrantAcquired implements trunk.MetricsSink.
func (c *Collector) IncGrantAcquired(reused bool) {
	label := "new"
	if reused {
		label = "reused"
	}
	c.grantAcquiredTotal.WithLabelValues(label).Inc()
}

// IncGrantReleased implements trunk.MetricsSink.
func (c *Collector) IncGrantReleased(reason string) {
	c.grantReleasedTotal.WithLabelValues(reason).Inc()
}

// SetAdjSiteFailure implements trunk.MetricsSink.
func (c *Collector) SetAdjSiteFailure(siteId byte, failed bool) {
	v := 0.0
	if failed {
		v = 1.0
	}
	c.adjSiteFailure.WithLabelValues(siteIdLabel(siteId)).Set(v)
}

func siteIdLabel(siteId byte) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[siteId>>4], hex[siteId&0x0f]})
}
