// Package producer runs the single-threaded generate → enqueue → sleep loop.
package producer

import (
	"context"
	"log/slog"
	"time"

	"github.com/Rendxnn/logpipe/internal/buffer"
	"github.com/Rendxnn/logpipe/internal/flush"
	"github.com/Rendxnn/logpipe/internal/generate"
	"github.com/Rendxnn/logpipe/internal/stream"
)

// StreamSender adapts a stream writer to the flush layer: one PutBatch call,
// per-record outcomes surfaced for retry inspection.
func StreamSender(w stream.Writer, streamName string) flush.SendFunc[stream.Record] {
	return func(ctx context.Context, batch []stream.Record) ([]error, error) {
		out, err := w.PutBatch(ctx, streamName, batch)
		if err != nil {
			return nil, err
		}
		outcomes := make([]error, len(batch))
		for i, r := range out.Records {
			outcomes[i] = r.Err
		}
		return outcomes, nil
	}
}

// drainTimeout bounds the final flush attempt on shutdown.
const drainTimeout = 10 * time.Second

// Producer emits one synthetic event per interval into the batch buffer.
type Producer struct {
	gen      *generate.Generator
	buf      *buffer.Buffer
	interval time.Duration
	logger   *slog.Logger
}

func New(gen *generate.Generator, buf *buffer.Buffer, interval time.Duration) *Producer {
	return &Producer{
		gen:      gen,
		buf:      buf,
		interval: interval,
		logger:   slog.Default().With("component", "producer"),
	}
}

// Run loops until ctx is canceled, then performs exactly one final drain.
// The drain runs on a detached context so an interrupt cannot abort the
// in-flight attempt; Run returns nil regardless of the drain's outcome.
func (p *Producer) Run(ctx context.Context) error {
	p.logger.Info("producer started", "interval", p.interval)
	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stopping, draining buffer", "buffered", p.buf.Len())
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
			p.buf.Drain(drainCtx)
			cancel()
			p.logger.Info("producer stopped")
			return nil
		case <-t.C:
			if err := p.buf.Enqueue(ctx, p.gen.Next()); err != nil {
				p.logger.Error("enqueue failed", "err", err)
			}
		}
	}
}
