package metrics

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nrjais/docqa/internal/report"
)

const Namespace = "docqa"

// Collector exposes the outcome of the last validation run as Prometheus
// gauges. Every Observe replaces the previous run's series.
//
// Metrics:
//   - docqa_collection_passed: 1 when the collection passed, 0 otherwise
//   - docqa_collection_errors: validation errors by collection and rule kind
//   - docqa_collection_sample_size: documents validated per collection
//   - docqa_collection_documents: documents counted per collection
//   - docqa_collection_duration_seconds: duration of the collection pass
//   - docqa_run_collections: collections by status
//   - docqa_run_duration_seconds: wall clock time of the run
//   - docqa_run_timestamp_seconds: start time of the run
type Collector struct {
	registry *prometheus.Registry

	collectionPassed   *prometheus.GaugeVec
	collectionErrors   *prometheus.GaugeVec
	collectionSample   *prometheus.GaugeVec
	collectionDocs     *prometheus.GaugeVec
	collectionDuration *prometheus.GaugeVec
	runCollections     *prometheus.GaugeVec
	runDuration        prometheus.Gauge
	runTimestamp       prometheus.Gauge
}

// NewCollector registers the run metrics with registry. A nil registry gets
// a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	gaugeVec := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	c := &Collector{
		registry:           registry,
		collectionPassed:   gaugeVec("collection_passed", "Whether the collection passed validation (1) or not (0)", "collection"),
		collectionErrors:   gaugeVec("collection_errors", "Validation errors by collection and rule kind", "collection", "rule"),
		collectionSample:   gaugeVec("collection_sample_size", "Documents validated in the collection sample", "collection"),
		collectionDocs:     gaugeVec("collection_documents", "Documents counted in the collection", "collection"),
		collectionDuration: gaugeVec("collection_duration_seconds", "Duration of the collection validation pass", "collection"),
		runCollections:     gaugeVec("run_collections", "Collections validated in the last run by status", "status"),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall clock duration of the last validation run",
		}),
		runTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "run_timestamp_seconds",
			Help:      "Unix time the last validation run started",
		}),
	}

	registry.MustRegister(
		c.collectionPassed,
		c.collectionErrors,
		c.collectionSample,
		c.collectionDocs,
		c.collectionDuration,
		c.runCollections,
		c.runDuration,
		c.runTimestamp,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Observe(r report.RunReport) {
	c.collectionPassed.Reset()
	c.collectionErrors.Reset()
	c.collectionSample.Reset()
	c.collectionDocs.Reset()
	c.collectionDuration.Reset()

	for _, res := range r.Results {
		passed := 0.0
		if res.Passed() {
			passed = 1
		}
		c.collectionPassed.WithLabelValues(res.Collection).Set(passed)
		for _, outcome := range res.Checks {
			c.collectionErrors.WithLabelValues(res.Collection, string(outcome.Rule)).Set(float64(outcome.Errors))
		}
		c.collectionSample.WithLabelValues(res.Collection).Set(float64(res.SampleSize))
		c.collectionDocs.WithLabelValues(res.Collection).Set(float64(res.TotalDocuments))
		c.collectionDuration.WithLabelValues(res.Collection).Set(res.Duration.Seconds())
	}

	c.runCollections.WithLabelValues("passed").Set(float64(r.PassedCount))
	c.runCollections.WithLabelValues("failed").Set(float64(r.FailedCount))
	c.runDuration.Set(r.ExecutionTime.Seconds())
	c.runTimestamp.Set(float64(r.StartedAt.Unix()))
}

// WriteTextfile writes the registry in the node exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	slog.Info("Metrics written", "path", path)
	return nil
}
