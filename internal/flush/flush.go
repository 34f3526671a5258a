// Package flush executes batch sends with per-record result inspection and a
// single bounded retry of the failed subset.
package flush

import (
	"context"
	"log/slog"
	"time"

	"github.com/Rendxnn/logpipe/internal/metrics"
)

// DefaultBackoff is the fixed wait before the one-shot retry.
const DefaultBackoff = 400 * time.Millisecond

// SendFunc submits one batch call to a destination. outcomes[i] reports the
// per-record result for batch[i] (nil means acknowledged). A non-nil error
// return means the whole call failed and no per-record outcomes exist.
type SendFunc[T any] func(ctx context.Context, batch []T) (outcomes []error, err error)

// Result summarizes one Send, after the optional retry.
type Result struct {
	Succeeded int
	Dropped   int
}

// Flusher sends batches to a destination. Records flagged as failed by the
// destination are resubmitted exactly once after a fixed backoff; whatever
// fails after that is logged and dropped. A transport-level failure of the
// initial call drops the whole batch without retry — the caller's loop keeps
// going either way.
type Flusher[T any] struct {
	name    string
	send    SendFunc[T]
	backoff time.Duration
	logger  *slog.Logger
}

// New creates a Flusher. backoff <= 0 selects DefaultBackoff.
func New[T any](name string, send SendFunc[T], backoff time.Duration) *Flusher[T] {
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &Flusher[T]{
		name:    name,
		send:    send,
		backoff: backoff,
		logger:  slog.Default().With("component", "flush", "dest", name),
	}
}

// Send submits batch in one call and retries the failed subset once.
func (f *Flusher[T]) Send(ctx context.Context, batch []T) Result {
	if len(batch) == 0 {
		return Result{}
	}
	metrics.FlushBatches.Inc()

	outcomes, err := f.send(ctx, batch)
	if err != nil {
		f.logger.Error("batch send failed, dropping batch", "records", len(batch), "err", err)
		metrics.RecordsDropped.WithLabelValues("transport").Add(float64(len(batch)))
		return Result{Dropped: len(batch)}
	}

	var failed []T
	for i, outcome := range outcomes {
		if outcome != nil {
			failed = append(failed, batch[i])
		}
	}
	res := Result{Succeeded: len(batch) - len(failed)}
	if len(failed) == 0 {
		metrics.RecordsSent.Add(float64(res.Succeeded))
		return res
	}

	f.logger.Warn("partial failure, retrying once", "failed", len(failed), "backoff", f.backoff)
	metrics.FlushRetries.Inc()
	if !sleep(ctx, f.backoff) {
		metrics.RecordsSent.Add(float64(res.Succeeded))
		metrics.RecordsDropped.WithLabelValues("canceled").Add(float64(len(failed)))
		res.Dropped = len(failed)
		return res
	}

	dropped := len(failed)
	outcomes, err = f.send(ctx, failed)
	if err != nil {
		f.logger.Error("retry send failed, dropping records", "records", len(failed), "err", err)
	} else {
		dropped = 0
		for _, outcome := range outcomes {
			if outcome != nil {
				dropped++
			}
		}
		if dropped > 0 {
			f.logger.Error("records still failing after retry, dropping", "records", dropped)
		}
	}
	res.Succeeded += len(failed) - dropped
	res.Dropped = dropped
	metrics.RecordsSent.Add(float64(res.Succeeded))
	if dropped > 0 {
		metrics.RecordsDropped.WithLabelValues("retry_failed").Add(float64(dropped))
	}
	return res
}

// sleep waits d or until ctx is done, returning false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
