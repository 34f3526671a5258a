package normalize

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Rendxnn/logpipe/internal/event"
)

// Record is the canonical, persistable form of an ingested event. Its
// (PartitionKey, SortKey) pair is the record's logical identity in the table.
type Record struct {
	PartitionKey string    `json:"pk"`
	SortKey      string    `json:"sk"`
	Type         string    `json:"type"`
	Method       string    `json:"method"`
	Path         string    `json:"path"`
	StatusCode   int       `json:"status_code"`
	StatusFamily string    `json:"status_family"`
	ErrorCode    string    `json:"error_code,omitempty"`
	IsError      bool      `json:"is_error"`
	Message      string    `json:"message"`
	ProductID    string    `json:"product_id,omitempty"`
	Inventory    int       `json:"inventory,omitempty"`
	Event        event.Raw `json:"event"`
}

const (
	// StatusMissing is stored when the event carries no usable status code.
	StatusMissing = -1

	sortKeyLayout = "2006-01-02T15:04:05.000"
)

// Normalize maps a raw event to a canonical record. It is total: malformed
// or missing fields degrade to documented defaults, never to an error.
func Normalize(ev event.Raw) Record {
	rec := Record{
		Method:       "UNKNOWN",
		Path:         "/",
		StatusCode:   StatusMissing,
		StatusFamily: "n/a",
		SortKey:      SortKey(ev.Str("timestamp")),
		Event:        ev,
	}

	kind := event.Classify(ev)
	rec.Type = kind.String()

	errVal, hasErrCode := ev["error_code"]
	if errVal == nil {
		hasErrCode = false
	}
	if hasErrCode {
		rec.ErrorCode = fmt.Sprint(errVal)
	}

	switch kind {
	case event.KindInventory:
		id := ev.Str("product_id")
		if id == "" {
			id = "unknown"
		}
		rec.ProductID = id
		rec.PartitionKey = "product#" + id
		if n, ok := intField(ev["inventory"]); ok {
			rec.Inventory = n
		}
		rec.IsError = hasErrCode

	case event.KindRawFallback:
		rec.PartitionKey = "path#/"

	default: // KindHTTP
		if m := ev.Str("method"); m != "" {
			rec.Method = m
		}
		if p := ev.Str("path"); p != "" {
			rec.Path = p
		}
		rec.PartitionKey = "path#" + rec.Path
		rec.Message = ev.Str("message")

		code, ok := intField(ev["status_code"])
		if ok {
			rec.StatusCode = code
		}
		rec.StatusFamily = StatusFamily(ev["status_code"])
		rec.IsError = hasErrCode || (ok && code >= 500)
	}

	return rec
}

// RouteKey derives the partition key used to route a raw event, without
// normalizing it: inventory-class events key by product id, everything else
// by path.
func RouteKey(ev event.Raw) string {
	if event.Classify(ev) == event.KindInventory {
		id := ev.Str("product_id")
		if id == "" {
			id = "unknown"
		}
		return "product#" + id
	}
	path := ev.Str("path")
	if path == "" {
		path = "/"
	}
	return "path#" + path
}

// SortKey renders ts as an ISO-8601 UTC timestamp with exactly three
// fractional digits (truncated) and a literal Z suffix. Unparseable or empty
// input falls back to the current time so malformed events still sort near
// their arrival.
func SortKey(ts string) string {
	return parseTimestamp(ts).UTC().Format(sortKeyLayout) + "Z"
}

// parseTimestamp tries, in order: full ISO-8601 with offset, local datetime
// with fractional seconds, local datetime without. The first success wins.
func parseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Now()
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Now()
}

// StatusFamily buckets a status code into "2xx".."5xx". Missing or
// non-numeric codes, and the StatusMissing sentinel, map to "n/a".
func StatusFamily(v interface{}) string {
	code, ok := intField(v)
	if !ok || code < 0 {
		return "n/a"
	}
	return strconv.Itoa(code/100) + "xx"
}

// intField coerces the scalar types a JSON decode can produce into an int.
func intField(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
