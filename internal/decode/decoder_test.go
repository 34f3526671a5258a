package decode

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Rendxnn/logpipe/internal/normalize"
)

func TestBatchDecodesOnePerPayload(t *testing.T) {
	payloads := [][]byte{
		[]byte(`{"method":"GET","path":"/api/users","status_code":200}`),
		[]byte(`{"type":"inventory","product_id":"P-100","inventory":7}`),
	}

	var got []string
	for ev := range Batch(payloads) {
		got = append(got, normalize.RouteKey(ev))
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d events, want 2", len(got))
	}
	if got[0] != "path#/api/users" || got[1] != "product#P-100" {
		t.Errorf("route keys = %v", got)
	}
}

func TestOneWrapsUndecodablePayload(t *testing.T) {
	before := time.Now().UTC().Add(-time.Millisecond)
	ev := One([]byte("definitely not json"))
	after := time.Now().UTC().Add(time.Millisecond)

	if ev.Str("raw") != "definitely not json" {
		t.Errorf("raw = %q", ev.Str("raw"))
	}
	ts, err := time.Parse("2006-01-02T15:04:05.000000Z07:00", ev.Str("timestamp"))
	if err != nil {
		t.Fatalf("timestamp %q does not parse: %v", ev.Str("timestamp"), err)
	}
	if ts.Before(before) || ts.After(after) {
		t.Errorf("timestamp %v outside decode window", ts)
	}

	// The wrapper still normalizes into a well-formed record.
	rec := normalize.Normalize(ev)
	if rec.PartitionKey != "path#/" {
		t.Errorf("pk = %q, want path#/", rec.PartitionKey)
	}
}

func TestBatchStopsWhenConsumerStops(t *testing.T) {
	payloads := [][]byte{[]byte(`{}`), []byte(`{}`), []byte(`{}`)}
	n := 0
	for range Batch(payloads) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("consumed %d events, want 2", n)
	}
}

func TestRoundTripPreservesIdentity(t *testing.T) {
	cases := []struct {
		name string
		ev   map[string]interface{}
	}{
		{"http", map[string]interface{}{
			"method": "GET", "path": "/api/report", "status_code": 500,
			"error_code": "ESERVER", "message": "Internal Server Error",
			"timestamp": "2025-09-20T00:39:41.527Z",
		}},
		{"inventory", map[string]interface{}{
			"type": "inventory", "product_id": "P-300", "inventory": 12,
			"timestamp": "2025-09-20T00:39:41.527Z",
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			first := normalize.Normalize(c.ev)
			data, err := json.Marshal(first)
			if err != nil {
				t.Fatal(err)
			}
			second := normalize.Normalize(One(data))
			if second.PartitionKey != first.PartitionKey {
				t.Errorf("pk changed: %q -> %q", first.PartitionKey, second.PartitionKey)
			}
			if second.StatusFamily != first.StatusFamily {
				t.Errorf("status family changed: %q -> %q", first.StatusFamily, second.StatusFamily)
			}
		})
	}
}
