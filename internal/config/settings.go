// Package config loads pipeline settings from the environment and the
// optional generator pool file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rendxnn/logpipe/internal/stream"
)

// Settings holds everything the producer and consumer need. All values come
// from LOGPIPE_* environment variables with the defaults documented below;
// malformed or out-of-range values fail at startup, never mid-loop.
type Settings struct {
	Stream     string // LOGPIPE_STREAM (default "server-logs")
	Table      string // LOGPIPE_TABLE (default "http_requests")
	DataDir    string // LOGPIPE_DATA_DIR (default "data")
	Partitions int    // LOGPIPE_PARTITIONS (default 4)

	BatchMax      int           // LOGPIPE_BATCH_MAX (default 50, max 500)
	EventInterval time.Duration // LOGPIPE_EVENT_INTERVAL_MS (default 100)
	RetryBackoff  time.Duration // LOGPIPE_RETRY_BACKOFF_MS (default 400)

	InventoryProbability float64  // LOGPIPE_INVENTORY_PROBABILITY (default 0.2)
	InventoryMin         int      // LOGPIPE_INVENTORY_MIN (default 0)
	InventoryMax         int      // LOGPIPE_INVENTORY_MAX (default 100)
	Products             []string // LOGPIPE_PRODUCTS, comma-separated (default built-in catalog)
	PoolPath             string   // LOGPIPE_POOL_PATH, optional YAML pool file

	PollInterval time.Duration // LOGPIPE_POLL_INTERVAL_MS (default 1000)
	Group        string        // LOGPIPE_CONSUMER_GROUP (default "table-writer")
	HTTPAddr     string        // LOGPIPE_HTTP_ADDR (default ":8080")
}

// FromEnv reads settings from the environment and validates them. All
// problems are reported together.
func FromEnv() (Settings, error) {
	s := Settings{
		Stream:               "server-logs",
		Table:                "http_requests",
		DataDir:              "data",
		Partitions:           4,
		BatchMax:             50,
		EventInterval:        100 * time.Millisecond,
		RetryBackoff:         400 * time.Millisecond,
		InventoryProbability: 0.2,
		InventoryMin:         0,
		InventoryMax:         100,
		PollInterval:         time.Second,
		Group:                "table-writer",
		HTTPAddr:             ":8080",
	}

	var errs []string
	readStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	readInt := func(key string, dst *int) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not an integer", key, v))
			return
		}
		*dst = n
	}
	readMillis := func(key string, dst *time.Duration) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not an integer", key, v))
			return
		}
		*dst = time.Duration(n) * time.Millisecond
	}

	readStr("LOGPIPE_STREAM", &s.Stream)
	readStr("LOGPIPE_TABLE", &s.Table)
	readStr("LOGPIPE_DATA_DIR", &s.DataDir)
	readInt("LOGPIPE_PARTITIONS", &s.Partitions)
	readInt("LOGPIPE_BATCH_MAX", &s.BatchMax)
	readMillis("LOGPIPE_EVENT_INTERVAL_MS", &s.EventInterval)
	readMillis("LOGPIPE_RETRY_BACKOFF_MS", &s.RetryBackoff)
	readInt("LOGPIPE_INVENTORY_MIN", &s.InventoryMin)
	readInt("LOGPIPE_INVENTORY_MAX", &s.InventoryMax)
	readStr("LOGPIPE_POOL_PATH", &s.PoolPath)
	readMillis("LOGPIPE_POLL_INTERVAL_MS", &s.PollInterval)
	readStr("LOGPIPE_CONSUMER_GROUP", &s.Group)
	readStr("LOGPIPE_HTTP_ADDR", &s.HTTPAddr)

	if v := os.Getenv("LOGPIPE_INVENTORY_PROBABILITY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("LOGPIPE_INVENTORY_PROBABILITY: %q is not a number", v))
		} else {
			s.InventoryProbability = f
		}
	}
	if v := os.Getenv("LOGPIPE_PRODUCTS"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				s.Products = append(s.Products, p)
			}
		}
	}

	if len(errs) > 0 {
		return s, fmt.Errorf("config errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks ranges and required fields, reporting all problems at once.
func (s Settings) Validate() error {
	var errs []string
	if s.Stream == "" {
		errs = append(errs, "stream name must not be empty")
	}
	if s.Table == "" {
		errs = append(errs, "table name must not be empty")
	}
	if s.Partitions < 1 {
		errs = append(errs, fmt.Sprintf("partitions must be >= 1 (got %d)", s.Partitions))
	}
	if s.BatchMax < 1 || s.BatchMax > stream.MaxBatchRecords {
		errs = append(errs, fmt.Sprintf("batch max must be in [1,%d] (got %d)", stream.MaxBatchRecords, s.BatchMax))
	}
	if s.EventInterval <= 0 {
		errs = append(errs, "event interval must be positive")
	}
	if s.RetryBackoff <= 0 {
		errs = append(errs, "retry backoff must be positive")
	}
	if s.InventoryProbability < 0 || s.InventoryProbability > 1 {
		errs = append(errs, fmt.Sprintf("inventory probability must be in [0,1] (got %g)", s.InventoryProbability))
	}
	if s.InventoryMin > s.InventoryMax {
		errs = append(errs, fmt.Sprintf("inventory range inverted (%d > %d)", s.InventoryMin, s.InventoryMax))
	}
	if s.PollInterval <= 0 {
		errs = append(errs, "poll interval must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
