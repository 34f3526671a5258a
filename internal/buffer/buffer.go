// Package buffer accumulates outgoing events and flushes them in partition-
// keyed batches once a size threshold is reached.
package buffer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Rendxnn/logpipe/internal/event"
	"github.com/Rendxnn/logpipe/internal/metrics"
	"github.com/Rendxnn/logpipe/internal/normalize"
	"github.com/Rendxnn/logpipe/internal/stream"
)

// DefaultMax is the flush threshold when none is configured.
const DefaultMax = 50

// FlushFunc receives a drained batch. Delivery outcome handling (retry,
// logging, dropping) is the flush layer's concern, not the buffer's.
type FlushFunc func(ctx context.Context, batch []stream.Record)

// Buffer holds serialized events in arrival order until the threshold is
// reached. It is mutated by the producer loop and, on shutdown, by the
// cancellation handler, so all access goes through an exclusive lock.
type Buffer struct {
	mu      sync.Mutex
	entries []stream.Record
	max     int
	flush   FlushFunc
}

// New creates a buffer flushing via fn once max entries accumulate. max <= 0
// selects DefaultMax; values above the stream batch ceiling are clamped.
func New(max int, fn FlushFunc) *Buffer {
	if max <= 0 {
		max = DefaultMax
	}
	if max > stream.MaxBatchRecords {
		max = stream.MaxBatchRecords
	}
	return &Buffer{max: max, flush: fn}
}

// Enqueue serializes ev, routes it by partition key, and appends it. Reaching
// the threshold triggers a synchronous flush before returning.
func (b *Buffer) Enqueue(ctx context.Context, ev event.Raw) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("buffer: marshal event: %w", err)
	}

	b.mu.Lock()
	b.entries = append(b.entries, stream.Record{
		PartitionKey: normalize.RouteKey(ev),
		Data:         data,
	})
	metrics.EventsEnqueued.Inc()
	var batch []stream.Record
	if len(b.entries) >= b.max {
		batch = b.take()
	}
	b.mu.Unlock()

	if batch != nil {
		b.flush(ctx, batch)
	}
	return nil
}

// Drain flushes whatever is buffered; a no-op when empty. Used for manual
// drains (idle timeout, shutdown).
func (b *Buffer) Drain(ctx context.Context) {
	b.mu.Lock()
	batch := b.take()
	b.mu.Unlock()

	if batch != nil {
		b.flush(ctx, batch)
	}
}

// Len reports the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// take swaps out the buffered entries. The buffer is cleared before the flush
// attempt runs, so the batch is gone regardless of delivery outcome. Caller
// holds b.mu.
func (b *Buffer) take() []stream.Record {
	if len(b.entries) == 0 {
		return nil
	}
	batch := b.entries
	b.entries = nil
	return batch
}
