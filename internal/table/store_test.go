package table

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Rendxnn/logpipe/internal/storage"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestBatchWriteAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	res, err := s.BatchWrite(ctx, "requests", []Item{
		{PartitionKey: "path#/a", SortKey: "2025-09-20T00:00:00.000Z", Value: []byte("one")},
		{PartitionKey: "path#/b", SortKey: "2025-09-20T00:00:01.000Z", Value: []byte("two")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.FailedCount != 0 {
		t.Fatalf("failed count = %d", res.FailedCount)
	}

	v, ok, err := s.Get(ctx, "requests", "path#/b", "2025-09-20T00:00:01.000Z")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(v, []byte("two")) {
		t.Errorf("value = %q", v)
	}

	if _, ok, _ := s.Get(ctx, "requests", "path#/b", "2099-01-01T00:00:00.000Z"); ok {
		t.Error("found a row that was never written")
	}
}

func TestBatchWriteUpsertsOnIdenticalKey(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	item := Item{PartitionKey: "path#/a", SortKey: "2025-09-20T00:00:00.000Z", Value: []byte("first")}

	if _, err := s.BatchWrite(ctx, "requests", []Item{item}); err != nil {
		t.Fatal(err)
	}
	item.Value = []byte("second")
	if _, err := s.BatchWrite(ctx, "requests", []Item{item}); err != nil {
		t.Fatal(err)
	}

	rows, err := s.Query(ctx, "requests", "path#/a")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 (overwrite)", len(rows))
	}
	if !bytes.Equal(rows[0].Value, []byte("second")) {
		t.Errorf("value = %q, want second write", rows[0].Value)
	}
}

func TestBatchWriteEnforcesCeiling(t *testing.T) {
	s := openStore(t)
	items := make([]Item, MaxBatchItems+1)
	for i := range items {
		items[i] = Item{PartitionKey: "pk", SortKey: fmt.Sprintf("sk%02d", i), Value: []byte("v")}
	}
	_, err := s.BatchWrite(context.Background(), "requests", items)
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Errorf("err = %v, want ErrBatchTooLarge", err)
	}

	if _, err := s.BatchWrite(context.Background(), "requests", items[:MaxBatchItems]); err != nil {
		t.Errorf("batch at the ceiling rejected: %v", err)
	}
}

func TestBatchWritePerItemFailures(t *testing.T) {
	s := openStore(t)
	res, err := s.BatchWrite(context.Background(), "requests", []Item{
		{PartitionKey: "path#/ok", SortKey: "sk", Value: []byte("v")},
		{PartitionKey: "", SortKey: "sk", Value: []byte("v")},
		{PartitionKey: "path#/x", SortKey: "", Value: []byte("v")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.FailedCount != 2 {
		t.Errorf("failed count = %d, want 2", res.FailedCount)
	}
	if !errors.Is(res.Items[1].Err, ErrMissingKey) || !errors.Is(res.Items[2].Err, ErrMissingKey) {
		t.Errorf("item errs = %v, %v", res.Items[1].Err, res.Items[2].Err)
	}
}

func TestQueryReturnsPartitionInSortOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.BatchWrite(ctx, "requests", []Item{
		{PartitionKey: "path#/a", SortKey: "2025-09-20T00:00:02.000Z", Value: []byte("later")},
		{PartitionKey: "path#/a", SortKey: "2025-09-20T00:00:01.000Z", Value: []byte("earlier")},
		{PartitionKey: "path#/other", SortKey: "2025-09-20T00:00:01.500Z", Value: []byte("elsewhere")},
	})
	if err != nil {
		t.Fatal(err)
	}

	rows, err := s.Query(ctx, "requests", "path#/a")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].SortKey >= rows[1].SortKey {
		t.Errorf("rows out of order: %q, %q", rows[0].SortKey, rows[1].SortKey)
	}
	if !bytes.Equal(rows[0].Value, []byte("earlier")) {
		t.Errorf("first row = %q", rows[0].Value)
	}
}
