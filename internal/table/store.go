package table

import (
	"context"
	"fmt"

	"github.com/Rendxnn/logpipe/internal/storage"
)

// Store is the Pebble-backed table service. Rows live under
// tbl/{table}\x00{pk}\x00{sk}; the NUL separators keep keys with slashes in
// their partition key (paths) unambiguous and prefix-scannable.
type Store struct {
	db *storage.DB
}

var _ Writer = (*Store)(nil)

func NewStore(db *storage.DB) *Store {
	return &Store{db: db}
}

// BatchWrite upserts up to MaxBatchItems rows in one atomic call. Items with
// missing keys fail individually; the rest are still written.
func (s *Store) BatchWrite(ctx context.Context, table string, items []Item) (WriteResult, error) {
	if err := validateCall(items); err != nil {
		return WriteResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return WriteResult{}, err
	}

	res := WriteResult{Items: make([]ItemResult, len(items))}
	b := s.db.NewBatch()
	for i, it := range items {
		if it.PartitionKey == "" || it.SortKey == "" {
			res.Items[i] = ItemResult{Err: ErrMissingKey}
			res.FailedCount++
			continue
		}
		if err := b.Set(rowKey(table, it.PartitionKey, it.SortKey), it.Value, nil); err != nil {
			return WriteResult{}, fmt.Errorf("table %s: batch set: %w", table, err)
		}
	}
	if err := s.db.Commit(b); err != nil {
		return WriteResult{}, fmt.Errorf("table %s: commit: %w", table, err)
	}
	return res, nil
}

// Query returns all rows of one partition in sort-key order.
func (s *Store) Query(ctx context.Context, table, partitionKey string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lower := partitionPrefix(table, partitionKey)
	upper := append(append([]byte(nil), lower...), 0xff)
	var out []Item
	err := s.db.Scan(lower, upper, func(k, v []byte) bool {
		out = append(out, Item{
			PartitionKey: partitionKey,
			SortKey:      string(k[len(lower):]),
			Value:        v,
		})
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("table %s: query: %w", table, err)
	}
	return out, nil
}

// Get returns one row, with ok=false when absent.
func (s *Store) Get(ctx context.Context, table, partitionKey, sortKey string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return s.db.Get(rowKey(table, partitionKey, sortKey))
}

func rowKey(table, pk, sk string) []byte {
	k := partitionPrefix(table, pk)
	return append(k, sk...)
}

func partitionPrefix(table, pk string) []byte {
	k := make([]byte, 0, 4+len(table)+len(pk)+2)
	k = append(k, "tbl/"...)
	k = append(k, table...)
	k = append(k, 0x00)
	k = append(k, pk...)
	k = append(k, 0x00)
	return k
}
