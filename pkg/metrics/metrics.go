// Package metrics defines the Prometheus metric collectors used across the
// pipeline tools. The tools have no network surface, so collectors are
// exported in Prometheus text exposition format to a file at the end of a run
// (textfile-collector style).
package metrics

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	registry *prometheus.Registry

	DocsTokenized   prometheus.Counter
	TokensEmitted   prometheus.Counter
	TextBytesRead   prometheus.Counter
	DocsIndexed     prometheus.Gauge
	UniqueTerms     prometheus.Gauge
	PostingsWritten prometheus.Gauge
	BuildDuration   prometheus.Gauge
	QueriesTotal    *prometheus.CounterVec
	QueryLatency    prometheus.Histogram
	QueryHits       prometheus.Histogram
}

// New creates and registers all pipeline metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocsTokenized: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pipeline_docs_tokenized_total",
				Help: "Documents whose configured text field was found and tokenized.",
			},
		),
		TokensEmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pipeline_tokens_emitted_total",
				Help: "Tokens emitted to the token stream.",
			},
		),
		TextBytesRead: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pipeline_text_bytes_total",
				Help: "UTF-8 bytes of field text consumed by the tokenizer.",
			},
		),
		DocsIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_index_docs",
				Help: "Documents in the last built index (max docId + 1).",
			},
		),
		UniqueTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_index_unique_terms",
				Help: "Distinct terms in the last built index dictionary.",
			},
		),
		PostingsWritten: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_index_postings",
				Help: "Total postings (docIds across all terms) in the last built index.",
			},
		),
		BuildDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_index_build_seconds",
				Help: "Wall time of the last index build.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_queries_total",
				Help: "Boolean queries evaluated by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipeline_query_latency_seconds",
				Help:    "Boolean query evaluation latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		QueryHits: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipeline_query_hits",
				Help:    "Number of documents matched per boolean query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500, 1000, 10000},
			},
		),
	}

	m.registry.MustRegister(
		m.DocsTokenized,
		m.TokensEmitted,
		m.TextBytesRead,
		m.DocsIndexed,
		m.UniqueTerms,
		m.PostingsWritten,
		m.BuildDuration,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryHits,
	)
	return m
}

// WriteTextfile gathers all collectors and writes them to path in Prometheus
// text exposition format, for pickup by a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metrics file %s: %w", path, err)
	}
	defer f.Close()
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
