// Package consumer decodes stream batches into canonical records and
// persists them into the table.
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Rendxnn/logpipe/internal/decode"
	"github.com/Rendxnn/logpipe/internal/flush"
	"github.com/Rendxnn/logpipe/internal/metrics"
	"github.com/Rendxnn/logpipe/internal/normalize"
	"github.com/Rendxnn/logpipe/internal/stream"
	"github.com/Rendxnn/logpipe/internal/table"
)

// Handler processes one batch of stream entries: Decode → Normalize →
// Chunk → Send. Each invocation is independent; decoding and normalization
// are idempotent, and writes upsert on (pk, sk).
type Handler struct {
	flusher *flush.Flusher[table.Item]
	logger  *slog.Logger
}

// NewHandler wires the handler to a table via a retrying flusher.
func NewHandler(tw table.Writer, tableName string, backoff time.Duration) *Handler {
	send := func(ctx context.Context, batch []table.Item) ([]error, error) {
		start := time.Now()
		out, err := tw.BatchWrite(ctx, tableName, batch)
		if err != nil {
			return nil, err
		}
		metrics.BatchWriteDuration.Observe(float64(time.Since(start).Milliseconds()))
		outcomes := make([]error, len(batch))
		for i := range out.Items {
			outcomes[i] = out.Items[i].Err
		}
		return outcomes, nil
	}
	return &Handler{
		flusher: flush.New("table:"+tableName, send, backoff),
		logger:  slog.Default().With("component", "consumer"),
	}
}

// Handle maps every entry to a write request and submits them in chunks no
// larger than the table's per-call ceiling. It returns the number of source
// entries mapped to write requests; delivery failures are handled (retried,
// then dropped) by the flush layer and never propagate.
func (h *Handler) Handle(ctx context.Context, entries []stream.Entry) int {
	if len(entries) == 0 {
		return 0
	}
	payloads := make([][]byte, len(entries))
	for i, e := range entries {
		payloads[i] = e.Data
	}

	items := make([]table.Item, 0, len(entries))
	for ev := range decode.Batch(payloads) {
		rec := normalize.Normalize(ev)
		value, err := json.Marshal(rec)
		if err != nil {
			// Records are built from decoded JSON; this cannot happen in
			// practice, but a skip beats losing the whole batch.
			h.logger.Error("record marshal failed, skipping", "pk", rec.PartitionKey, "err", err)
			continue
		}
		items = append(items, table.Item{
			PartitionKey: rec.PartitionKey,
			SortKey:      rec.SortKey,
			Value:        value,
		})
	}

	written := 0
	for start := 0; start < len(items); start += table.MaxBatchItems {
		end := min(start+table.MaxBatchItems, len(items))
		res := h.flusher.Send(ctx, items[start:end])
		written += res.Succeeded
	}
	metrics.RecordsWritten.Add(float64(written))
	h.logger.Debug("batch handled", "entries", len(entries), "mapped", len(items), "written", written)
	return len(items)
}
