// Package table provides the keyed store canonical records are persisted in:
// batched upserts addressed by (partition key, sort key).
package table

import (
	"context"
	"errors"
	"fmt"
)

// MaxBatchItems is the service's per-call item ceiling. Callers chunk their
// writes to this size; the service rejects larger calls outright.
const MaxBatchItems = 25

var (
	// ErrBatchTooLarge flags a call exceeding MaxBatchItems.
	ErrBatchTooLarge = errors.New("table: batch exceeds 25 items")
	// ErrMissingKey flags an item without a partition or sort key.
	ErrMissingKey = errors.New("table: item missing partition or sort key")
)

// Item is one row: an opaque value addressed by (pk, sk). Writing an item
// with an existing key overwrites it.
type Item struct {
	PartitionKey string
	SortKey      string
	Value        []byte
}

// ItemResult is the per-item outcome of a BatchWrite call.
type ItemResult struct {
	Err error
}

// WriteResult summarizes a BatchWrite call.
type WriteResult struct {
	FailedCount int
	Items       []ItemResult
}

// Writer is the write-side contract of the table service.
type Writer interface {
	BatchWrite(ctx context.Context, table string, items []Item) (WriteResult, error)
}

func validateCall(items []Item) error {
	if len(items) == 0 {
		return errors.New("table: empty batch")
	}
	if len(items) > MaxBatchItems {
		return fmt.Errorf("%w (got %d)", ErrBatchTooLarge, len(items))
	}
	return nil
}
