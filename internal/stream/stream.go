// Package stream provides the partitioned append-only stream the producer
// writes into and the consumer tails.
package stream

import (
	"context"
	"errors"
	"fmt"
)

const (
	// MaxBatchRecords is the service's per-call record-count ceiling.
	MaxBatchRecords = 500
	// MaxRecordBytes caps a single record payload at 1 MiB.
	MaxRecordBytes = 1 << 20
)

var (
	// ErrRecordTooLarge flags a single record exceeding MaxRecordBytes.
	ErrRecordTooLarge = errors.New("stream: record exceeds 1 MiB")
	// ErrEmptyPartitionKey flags a record without a routing key.
	ErrEmptyPartitionKey = errors.New("stream: empty partition key")
)

// Record is one outgoing record: an opaque payload routed by partition key.
type Record struct {
	PartitionKey string
	Data         []byte
}

// RecordResult is the per-record outcome of a PutBatch call. Err is nil for
// acknowledged records; Partition and Seq identify where the record landed.
type RecordResult struct {
	Partition uint32
	Seq       uint64
	Err       error
}

// PutResult summarizes a PutBatch call.
type PutResult struct {
	FailedCount int
	Records     []RecordResult
}

// Writer is the producer-facing contract.
type Writer interface {
	PutBatch(ctx context.Context, stream string, records []Record) (PutResult, error)
}

// Entry is a stored stream entry as read back by a consumer.
type Entry struct {
	Partition    uint32
	Seq          uint64
	PartitionKey string
	Data         []byte
}

// Reader is the consumer-facing contract: ordered reads within a partition
// plus durable per-group cursors.
type Reader interface {
	Partitions() uint32
	// Read returns up to max entries of one partition with Seq >= from.
	Read(ctx context.Context, stream string, partition uint32, from uint64, max int) ([]Entry, error)
	// Cursor returns the next sequence to read for a consumer group.
	Cursor(ctx context.Context, stream, group string, partition uint32) (uint64, error)
	// CommitCursor durably records the next sequence to read.
	CommitCursor(ctx context.Context, stream, group string, partition uint32, next uint64) error
}

func validateBatch(records []Record) error {
	if len(records) == 0 {
		return errors.New("stream: empty batch")
	}
	if len(records) > MaxBatchRecords {
		return fmt.Errorf("stream: batch of %d exceeds limit %d", len(records), MaxBatchRecords)
	}
	return nil
}
