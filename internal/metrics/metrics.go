package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logpipe_events_generated_total",
		Help: "Total number of synthetic events generated, labelled by kind.",
	}, []string{"kind"})

	EventsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logpipe_events_enqueued_total",
		Help: "Total number of events placed in the partitioned batch buffer.",
	})

	FlushBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logpipe_flush_batches_total",
		Help: "Total number of flush attempts against a destination service.",
	})

	FlushRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logpipe_flush_retries_total",
		Help: "Total number of one-shot retries for partially failed batches.",
	})

	RecordsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logpipe_records_sent_total",
		Help: "Total number of records acknowledged by the destination.",
	})

	RecordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logpipe_records_dropped_total",
		Help: "Total number of records dropped, labelled by reason.",
	}, []string{"reason"})

	DecodeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logpipe_decode_fallbacks_total",
		Help: "Total number of stream payloads wrapped as raw after a failed decode.",
	})

	RecordsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logpipe_records_written_total",
		Help: "Total number of canonical records written to the table.",
	})

	BatchWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "logpipe_batch_write_duration_ms",
		Help:    "Latency of a single table batch-write call in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
)
