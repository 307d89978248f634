package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/zambian-names/internal/progress"
)

// PrometheusSink exports run and partition progress as Prometheus collectors.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted prometheus.Counter
	runDuration   prometheus.Histogram

	partitionsStarted prometheus.Counter
	partitionsRunning prometheus.Gauge
	partitionsDone    *prometheus.CounterVec
	partitionDuration *prometheus.HistogramVec
	itemsScrapedTotal prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zambiannames_runs_started_total",
			Help: "Scrape runs started.",
		}),
		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zambiannames_runs_completed_total",
			Help: "Scrape runs whose partitions all resolved.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "zambiannames_run_duration_seconds",
			Help:    "Wall time per scrape run.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		}),
		partitionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zambiannames_partitions_started_total",
			Help: "Partitions that acquired a fetch slot.",
		}),
		partitionsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "zambiannames_partitions_running",
			Help: "Partitions currently holding a fetch slot.",
		}),
		partitionsDone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zambiannames_partitions_completed_total",
			Help: "Partitions resolved, by outcome status.",
		}, []string{"status"}),
		partitionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zambiannames_partition_duration_seconds",
			Help:    "Partition wall time, by outcome status.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 90},
		}, []string{"status"}),
		itemsScrapedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zambiannames_items_scraped_total",
			Help: "Items extracted across all partitions.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runDuration,
		s.partitionsStarted,
		s.partitionsRunning,
		s.partitionsDone,
		s.partitionDuration,
		s.itemsScrapedTotal,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors from the batch.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageRunStart:
			s.runsStarted.Inc()
		case progress.StageRunDone:
			s.runsCompleted.Inc()
			s.runDuration.Observe(evt.Dur.Seconds())
		case progress.StagePartitionStart:
			s.partitionsStarted.Inc()
			s.partitionsRunning.Inc()
		case progress.StagePartitionDone:
			s.partitionsRunning.Dec()
			s.partitionsDone.WithLabelValues(evt.Status).Inc()
			s.partitionDuration.WithLabelValues(evt.Status).Observe(evt.Dur.Seconds())
			s.itemsScrapedTotal.Add(float64(evt.Items))
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
