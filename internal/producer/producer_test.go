package producer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Rendxnn/logpipe/internal/buffer"
	"github.com/Rendxnn/logpipe/internal/generate"
	"github.com/Rendxnn/logpipe/internal/producer"
	"github.com/Rendxnn/logpipe/internal/stream"
)

// fakeWriter fails the record indices listed for the corresponding call.
type fakeWriter struct {
	mu      sync.Mutex
	calls   [][]stream.Record
	failing map[int][]int // call index -> failing record indices
}

func (f *fakeWriter) PutBatch(_ context.Context, _ string, records []stream.Record) (stream.PutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := len(f.calls)
	f.calls = append(f.calls, append([]stream.Record(nil), records...))

	res := stream.PutResult{Records: make([]stream.RecordResult, len(records))}
	for _, i := range f.failing[call] {
		res.Records[i].Err = stream.ErrRecordTooLarge
		res.FailedCount++
	}
	return res, nil
}

func TestStreamSenderSurfacesPerRecordOutcomes(t *testing.T) {
	w := &fakeWriter{failing: map[int][]int{0: {1}}}
	send := producer.StreamSender(w, "logs")

	batch := []stream.Record{
		{PartitionKey: "path#/a", Data: []byte("a")},
		{PartitionKey: "path#/b", Data: []byte("b")},
	}
	outcomes, err := send(context.Background(), batch)
	if err != nil {
		t.Fatal(err)
	}
	if outcomes[0] != nil || outcomes[1] == nil {
		t.Errorf("outcomes = %v", outcomes)
	}
}

type captureFlush struct {
	mu      sync.Mutex
	batches [][]stream.Record
}

func (c *captureFlush) flush(_ context.Context, batch []stream.Record) {
	c.mu.Lock()
	c.batches = append(c.batches, batch)
	c.mu.Unlock()
}

func (c *captureFlush) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.batches {
		n += len(b)
	}
	return n
}

func TestRunGeneratesAndDrainsOnCancel(t *testing.T) {
	capture := &captureFlush{}
	// Threshold high enough that only the final drain flushes.
	buf := buffer.New(stream.MaxBatchRecords, capture.flush)
	gen := generate.New(nil, nil, generate.Settings{InventoryProbability: 0.5, InventoryMax: 10})
	p := producer.New(gen, buf, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// Wait until a few events are buffered.
	deadline := time.After(2 * time.Second)
	for buf.Len() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d events buffered before deadline", buf.Len())
		case <-time.After(2 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if capture.total() == 0 {
		t.Error("final drain flushed nothing")
	}
	if buf.Len() != 0 {
		t.Errorf("buffer not empty after drain: %d", buf.Len())
	}
}

func TestRunFlushesAtThresholdWhileLooping(t *testing.T) {
	capture := &captureFlush{}
	buf := buffer.New(5, capture.flush)
	gen := generate.New(nil, nil, generate.Settings{})
	p := producer.New(gen, buf, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for capture.total() < 5 {
		select {
		case <-deadline:
			t.Fatalf("flushed %d records before deadline, want >= 5", capture.total())
		case <-time.After(2 * time.Millisecond):
		}
	}

	cancel()
	<-done

	capture.mu.Lock()
	first := capture.batches[0]
	capture.mu.Unlock()
	if len(first) != 5 {
		t.Errorf("first flush batch = %d records, want 5", len(first))
	}
}
