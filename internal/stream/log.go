package stream

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Rendxnn/logpipe/internal/storage"
)

// Log is the Pebble-backed stream service. Records are routed to a fixed
// number of partitions by hashing their partition key; within a partition,
// entries are ordered by an append sequence.
type Log struct {
	db         *storage.DB
	partitions uint32
	logger     *slog.Logger

	mu      sync.Mutex
	nextSeq map[string]uint64 // stream|partition -> next append sequence
}

var (
	_ Writer = (*Log)(nil)
	_ Reader = (*Log)(nil)
)

// NewLog creates a stream service with the given partition count (>= 1).
func NewLog(db *storage.DB, partitions uint32) *Log {
	if partitions == 0 {
		partitions = 1
	}
	return &Log{
		db:         db,
		partitions: partitions,
		logger:     slog.Default().With("component", "stream"),
		nextSeq:    make(map[string]uint64),
	}
}

func (l *Log) Partitions() uint32 { return l.partitions }

// PutBatch appends a batch of records in one call. Oversized or unroutable
// records fail individually; the rest of the batch is still written. A batch
// exceeding MaxBatchRecords fails as a whole.
func (l *Log) PutBatch(ctx context.Context, stream string, records []Record) (PutResult, error) {
	if err := validateBatch(records); err != nil {
		return PutResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return PutResult{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	res := PutResult{Records: make([]RecordResult, len(records))}
	b := l.db.NewBatch()
	for i, rec := range records {
		switch {
		case rec.PartitionKey == "":
			res.Records[i] = RecordResult{Err: ErrEmptyPartitionKey}
			res.FailedCount++
			continue
		case len(rec.Data) > MaxRecordBytes:
			res.Records[i] = RecordResult{Err: ErrRecordTooLarge}
			res.FailedCount++
			continue
		}
		part := route(rec.PartitionKey, l.partitions)
		seq, err := l.reserveSeq(stream, part)
		if err != nil {
			return PutResult{}, fmt.Errorf("stream %s: sequence: %w", stream, err)
		}
		if err := b.Set(keyEntry(stream, part, seq), encodeEntry(rec.PartitionKey, rec.Data), nil); err != nil {
			return PutResult{}, fmt.Errorf("stream %s: batch set: %w", stream, err)
		}
		res.Records[i] = RecordResult{Partition: part, Seq: seq}
	}
	if err := l.db.Commit(b); err != nil {
		return PutResult{}, fmt.Errorf("stream %s: commit: %w", stream, err)
	}
	return res, nil
}

// reserveSeq hands out the next sequence for a partition, seeding the counter
// from the last stored entry on first use. Caller holds l.mu.
func (l *Log) reserveSeq(stream string, partition uint32) (uint64, error) {
	key := fmt.Sprintf("%s|%d", stream, partition)
	next, ok := l.nextSeq[key]
	if !ok {
		last, found, err := l.db.Last(keyEntryPrefix(stream, partition), keyEntryUpper(stream, partition))
		if err != nil {
			return 0, err
		}
		if found {
			next = entrySeq(last) + 1
		}
	}
	l.nextSeq[key] = next + 1
	return next, nil
}

// Read returns up to max entries of one partition with Seq >= from. Entries
// that fail the checksum are skipped, not surfaced.
func (l *Log) Read(ctx context.Context, stream string, partition uint32, from uint64, max int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if max <= 0 {
		max = MaxBatchRecords
	}
	var out []Entry
	err := l.db.Scan(keyEntry(stream, partition, from), keyEntryUpper(stream, partition), func(k, v []byte) bool {
		pk, payload, ok := decodeEntry(v)
		if !ok {
			l.logger.Warn("skipping corrupt entry", "stream", stream, "partition", partition, "seq", entrySeq(k))
			return true
		}
		out = append(out, Entry{Partition: partition, Seq: entrySeq(k), PartitionKey: pk, Data: payload})
		return len(out) < max
	})
	if err != nil {
		return nil, fmt.Errorf("stream %s: read: %w", stream, err)
	}
	return out, nil
}

// Cursor returns the next sequence a consumer group should read, 0 when the
// group has no committed position yet.
func (l *Log) Cursor(ctx context.Context, stream, group string, partition uint32) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, ok, err := l.db.Get(keyCursor(stream, group, partition))
	if err != nil {
		return 0, fmt.Errorf("stream %s: cursor: %w", stream, err)
	}
	if !ok || len(v) != 8 {
		return 0, nil
	}
	return binary.BigEndian.Uint64(v), nil
}

// CommitCursor durably records the next sequence to read for a group.
func (l *Log) CommitCursor(ctx context.Context, stream, group string, partition uint32, next uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], next)
	if err := l.db.Set(keyCursor(stream, group, partition), v[:]); err != nil {
		return fmt.Errorf("stream %s: commit cursor: %w", stream, err)
	}
	return nil
}
