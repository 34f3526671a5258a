package stream

import (
	"bytes"
	"testing"
)

func TestEntryFrameRoundTrip(t *testing.T) {
	enc := encodeEntry("path#/api/users", []byte(`{"status_code":200}`))
	pk, payload, ok := decodeEntry(enc)
	if !ok {
		t.Fatal("decode failed")
	}
	if pk != "path#/api/users" {
		t.Errorf("pk = %q", pk)
	}
	if !bytes.Equal(payload, []byte(`{"status_code":200}`)) {
		t.Errorf("payload = %q", payload)
	}
}

func TestDecodeEntryRejectsCorruption(t *testing.T) {
	enc := encodeEntry("path#/", []byte("payload"))

	// Flip a payload byte: the checksum must catch it.
	corrupt := append([]byte(nil), enc...)
	corrupt[len(corrupt)/2] ^= 0xff
	if _, _, ok := decodeEntry(corrupt); ok {
		t.Error("corrupt entry decoded successfully")
	}

	if _, _, ok := decodeEntry([]byte{0x01}); ok {
		t.Error("truncated entry decoded successfully")
	}
	if _, _, ok := decodeEntry(nil); ok {
		t.Error("empty entry decoded successfully")
	}
}

func TestRouteIsStableAndInRange(t *testing.T) {
	const n = 4
	for _, pk := range []string{"path#/", "path#/api/users", "product#P-100"} {
		first := route(pk, n)
		if first >= n {
			t.Errorf("route(%q) = %d out of range", pk, first)
		}
		for i := 0; i < 10; i++ {
			if got := route(pk, n); got != first {
				t.Errorf("route(%q) unstable: %d then %d", pk, first, got)
			}
		}
	}
}
