// Package decode turns opaque stream payloads back into raw events.
package decode

import (
	"encoding/json"
	"iter"
	"time"

	"github.com/Rendxnn/logpipe/internal/event"
	"github.com/Rendxnn/logpipe/internal/metrics"
)

// Batch decodes a batch of stream payloads into raw events, one per payload,
// lazily. A payload that is not a JSON object is not dropped: it is wrapped
// into a minimal event carrying the undecodable text under "raw" and a
// decode-time timestamp, so it still flows through normalization.
func Batch(payloads [][]byte) iter.Seq[event.Raw] {
	return func(yield func(event.Raw) bool) {
		for _, p := range payloads {
			if !yield(One(p)) {
				return
			}
		}
	}
}

// One decodes a single payload, falling back to a raw wrapper on failure.
func One(payload []byte) event.Raw {
	var ev event.Raw
	if err := json.Unmarshal(payload, &ev); err == nil && ev != nil {
		return ev
	}
	metrics.DecodeFallbacks.Inc()
	return event.Raw{
		"raw":       string(payload),
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000000Z"),
	}
}
