package stream

import (
	"encoding/binary"
	"hash/crc32"
)

// Entry encoding: varint keyLen | partitionKey | payload | crc32c(key|payload)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func encodeEntry(partitionKey string, payload []byte) []byte {
	out := make([]byte, 0, 10+len(partitionKey)+len(payload)+4)
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(len(partitionKey)))
	out = append(out, tmp[:n]...)
	out = append(out, partitionKey...)
	out = append(out, payload...)

	crc := crc32.Update(0, castagnoli, []byte(partitionKey))
	crc = crc32.Update(crc, castagnoli, payload)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	out = append(out, crcb[:]...)
	return out
}

func decodeEntry(b []byte) (partitionKey string, payload []byte, ok bool) {
	if len(b) < 1+4 {
		return "", nil, false
	}
	klen, n := binary.Uvarint(b)
	if n <= 0 || n+int(klen)+4 > len(b) {
		return "", nil, false
	}
	key := b[n : n+int(klen)]
	body := b[n+int(klen) : len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	crc := crc32.Update(0, castagnoli, key)
	crc = crc32.Update(crc, castagnoli, body)
	if crc != expect {
		return "", nil, false
	}
	return string(key), append([]byte(nil), body...), true
}
