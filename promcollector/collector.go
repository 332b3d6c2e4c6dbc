// Package promcollector exports clustering metrics to Prometheus.
package promcollector

import (
	"time"

	"github.com/hupe1980/hclust"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements hclust.MetricsCollector with Prometheus metrics.
type Collector struct {
	pairwiseLatency *prometheus.HistogramVec
	pairwiseItems   prometheus.Counter
	runLatency      *prometheus.HistogramVec
	merges          prometheus.Counter
	mergeDistance   prometheus.Histogram
	clusters        prometheus.Gauge
}

var _ hclust.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg under the given
// namespace (e.g. "hclust").
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		pairwiseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pairwise_duration_seconds",
			Help:      "Time spent building pairwise distance matrices",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"status"}),
		pairwiseItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairwise_items_total",
			Help:      "Total matrix rows computed",
		}),
		runLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of clustering runs",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"status"}),
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merges_total",
			Help:      "Total cluster merges performed",
		}),
		mergeDistance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_distance",
			Help:      "Distance of merged cluster pairs",
			Buckets:   prometheus.DefBuckets,
		}),
		clusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clusters",
			Help:      "Number of clusters found by the last successful run",
		}),
	}

	for _, m := range []prometheus.Collector{
		c.pairwiseLatency, c.pairwiseItems, c.runLatency, c.merges, c.mergeDistance, c.clusters,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordPairwise implements hclust.MetricsCollector.
func (c *Collector) RecordPairwise(items int, d time.Duration, err error) {
	c.pairwiseLatency.WithLabelValues(status(err)).Observe(d.Seconds())
	if err == nil {
		c.pairwiseItems.Add(float64(items))
	}
}

// RecordMerge implements hclust.MetricsCollector.
func (c *Collector) RecordMerge(distance float64) {
	c.merges.Inc()
	c.mergeDistance.Observe(distance)
}

// RecordRun implements hclust.MetricsCollector.
func (c *Collector) RecordRun(clusters int, d time.Duration, err error) {
	c.runLatency.WithLabelValues(status(err)).Observe(d.Seconds())
	if err == nil {
		c.clusters.Set(float64(clusters))
	}
}
