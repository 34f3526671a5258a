package stream

import (
	"encoding/binary"
	"hash/fnv"
)

// Keyspace helpers. Layout (byte-wise, lexicographically sortable):
//   log/{stream}/{part_be4}/e/{seq_be8}
//   cursor/{stream}/{group}/{part_be4}

var (
	sep       = byte('/')
	logPrefix = []byte("log/")
	curPrefix = []byte("cursor/")
	entrySeg  = []byte("/e/")
)

func appendBE4(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// keyEntry builds an entry key with a big-endian sequence for proper ordering.
func keyEntry(stream string, partition uint32, seq uint64) []byte {
	k := keyEntryPrefix(stream, partition)
	return appendBE8(k, seq)
}

// keyEntryPrefix is the common prefix of all entry keys of one partition.
func keyEntryPrefix(stream string, partition uint32) []byte {
	k := make([]byte, 0, len(logPrefix)+len(stream)+16)
	k = append(k, logPrefix...)
	k = append(k, stream...)
	k = append(k, sep)
	k = appendBE4(k, partition)
	k = append(k, entrySeg...)
	return k
}

// keyEntryUpper bounds the entry keyspace of one partition (exclusive).
func keyEntryUpper(stream string, partition uint32) []byte {
	return appendBE8(keyEntryPrefix(stream, partition), ^uint64(0))
}

// keyCursor builds the durable cursor key for a group and partition.
func keyCursor(stream, group string, partition uint32) []byte {
	k := make([]byte, 0, len(curPrefix)+len(stream)+len(group)+8)
	k = append(k, curPrefix...)
	k = append(k, stream...)
	k = append(k, sep)
	k = append(k, group...)
	k = append(k, sep)
	k = appendBE4(k, partition)
	return k
}

// entrySeq extracts the sequence from an entry key.
func entrySeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}

// route maps a partition key onto one of n partitions.
func route(partitionKey string, n uint32) uint32 {
	h := fnv.New64a()
	h.Write([]byte(partitionKey))
	return uint32(h.Sum64() % uint64(n))
}
