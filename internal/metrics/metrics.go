// Package metrics records load outcomes as Prometheus metrics.
//
// A load is a short-lived batch process, so nothing is served over HTTP;
// the registry is written in the node_exporter textfile format when the
// process finishes.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vvka-141/dwload/internal/loader"
)

const namespace = "dwload"

// Collector implements loader.Recorder on a private registry.
type Collector struct {
	registry *prometheus.Registry

	mu sync.Mutex
	// rows copied per domain and table, held until the domain commits
	pending map[string]map[string]int64

	RowsLoaded     *prometheus.CounterVec
	TableDuration  *prometheus.HistogramVec
	DomainDuration *prometheus.GaugeVec
	DomainOutcomes *prometheus.CounterVec
	LastSuccess    *prometheus.GaugeVec
}

var _ loader.Recorder = (*Collector)(nil)

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{registry: prometheus.NewRegistry(), pending: map[string]map[string]int64{}}

	c.RowsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows committed by COPY, by table; rolled back loads add nothing",
		},
		[]string{"domain", "table"},
	)

	c.TableDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_load_duration_seconds",
			Help:      "Time spent streaming one extract into its table",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		},
		[]string{"domain", "table"},
	)

	c.DomainDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "domain_load_duration_seconds",
			Help:      "Wall time of the last domain load",
		},
		[]string{"domain"},
	)

	c.DomainOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_loads_total",
			Help:      "Domain loads by terminal state",
		},
		[]string{"domain", "state"}, // "COMMIT", "ROLLBACK", "FAILED"
	)

	c.LastSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last committed domain load",
		},
		[]string{"domain"},
	)

	c.registry.MustRegister(
		c.RowsLoaded,
		c.TableDuration,
		c.DomainDuration,
		c.DomainOutcomes,
		c.LastSuccess,
	)
	return c
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// TableLoaded records one table's COPY duration. Its row count is held
// until DomainFinished learns whether the transaction committed.
func (c *Collector) TableLoaded(domain, table string, rows int64, d time.Duration) {
	c.TableDuration.WithLabelValues(domain, table).Observe(d.Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[domain] == nil {
		c.pending[domain] = map[string]int64{}
	}
	c.pending[domain][table] += rows
}

// DomainFinished records the terminal state of a domain load and, on COMMIT,
// the rows its tables received.
func (c *Collector) DomainFinished(domain string, state loader.State, d time.Duration) {
	c.mu.Lock()
	tables := c.pending[domain]
	delete(c.pending, domain)
	c.mu.Unlock()

	c.DomainDuration.WithLabelValues(domain).Set(d.Seconds())
	c.DomainOutcomes.WithLabelValues(domain, string(state)).Inc()
	if state != loader.StateCommit {
		return
	}
	for table, rows := range tables {
		c.RowsLoaded.WithLabelValues(domain, table).Add(float64(rows))
	}
	c.LastSuccess.WithLabelValues(domain).SetToCurrentTime()
}

// WriteTextfile writes the registry to path atomically in the text
// exposition format. An empty path is a no-op.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
