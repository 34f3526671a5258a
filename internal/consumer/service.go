package consumer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Rendxnn/logpipe/internal/stream"
)

// readMax caps how many entries one poll pulls from a partition.
const readMax = 100

// Service tails every stream partition and feeds batches to the Handler.
// Each partition is polled by its own goroutine; a durable per-group cursor
// marks the next entry to read, committed after each handled batch.
type Service struct {
	reader  stream.Reader
	handler *Handler
	stream  string
	group   string
	poll    time.Duration
	logger  *slog.Logger
}

func NewService(r stream.Reader, h *Handler, streamName, group string, poll time.Duration) *Service {
	return &Service{
		reader:  r,
		handler: h,
		stream:  streamName,
		group:   group,
		poll:    poll,
		logger:  slog.Default().With("component", "consumer", "stream", streamName, "group", group),
	}
}

// Run polls until ctx is canceled. A read or commit error on one partition
// logs, backs off one poll interval, and keeps polling; it never stops the
// service.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("consumer started", "partitions", s.reader.Partitions(), "poll", s.poll)
	g, ctx := errgroup.WithContext(ctx)
	for p := uint32(0); p < s.reader.Partitions(); p++ {
		g.Go(func() error {
			return s.tail(ctx, p)
		})
	}
	err := g.Wait()
	s.logger.Info("consumer stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Service) tail(ctx context.Context, partition uint32) error {
	logger := s.logger.With("partition", partition)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := s.reader.Cursor(ctx, s.stream, s.group, partition)
		if err != nil {
			logger.Error("cursor read failed", "err", err)
			if !wait(ctx, s.poll) {
				return ctx.Err()
			}
			continue
		}
		entries, err := s.reader.Read(ctx, s.stream, partition, next, readMax)
		if err != nil {
			logger.Error("read failed", "err", err)
			if !wait(ctx, s.poll) {
				return ctx.Err()
			}
			continue
		}
		if len(entries) == 0 {
			if !wait(ctx, s.poll) {
				return ctx.Err()
			}
			continue
		}

		mapped := s.handler.Handle(ctx, entries)
		logger.Debug("entries consumed", "count", len(entries), "mapped", mapped)

		next = entries[len(entries)-1].Seq + 1
		if err := s.reader.CommitCursor(ctx, s.stream, s.group, partition, next); err != nil {
			logger.Error("cursor commit failed", "err", err)
		}
	}
}

// wait sleeps for d or until ctx is done, returning false on cancellation.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Handler exposes liveness/readiness plus the metrics endpoint; mounted by
// the consumer's HTTP listener.
func (s *Service) HTTPHandler(metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "ready",
			"partitions": s.reader.Partitions(),
		})
	})
	mux.Handle("GET /metrics", metricsHandler)
	return mux
}
