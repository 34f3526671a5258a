package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	s, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if s.Stream != "server-logs" || s.Table != "http_requests" {
		t.Errorf("names = %q/%q", s.Stream, s.Table)
	}
	if s.BatchMax != 50 {
		t.Errorf("batch max = %d, want 50", s.BatchMax)
	}
	if s.EventInterval != 100*time.Millisecond {
		t.Errorf("interval = %v", s.EventInterval)
	}
	if s.RetryBackoff != 400*time.Millisecond {
		t.Errorf("backoff = %v", s.RetryBackoff)
	}
	if s.InventoryProbability != 0.2 {
		t.Errorf("inventory probability = %g", s.InventoryProbability)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LOGPIPE_STREAM", "audit")
	t.Setenv("LOGPIPE_BATCH_MAX", "200")
	t.Setenv("LOGPIPE_EVENT_INTERVAL_MS", "250")
	t.Setenv("LOGPIPE_INVENTORY_PROBABILITY", "0.5")
	t.Setenv("LOGPIPE_PRODUCTS", "A-1, A-2 ,A-3")

	s, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if s.Stream != "audit" || s.BatchMax != 200 {
		t.Errorf("got %q/%d", s.Stream, s.BatchMax)
	}
	if s.EventInterval != 250*time.Millisecond {
		t.Errorf("interval = %v", s.EventInterval)
	}
	if s.InventoryProbability != 0.5 {
		t.Errorf("probability = %g", s.InventoryProbability)
	}
	if len(s.Products) != 3 || s.Products[1] != "A-2" {
		t.Errorf("products = %v", s.Products)
	}
}

func TestFromEnvFailsFastOnMalformedValues(t *testing.T) {
	t.Setenv("LOGPIPE_BATCH_MAX", "fifty")
	t.Setenv("LOGPIPE_INVENTORY_PROBABILITY", "often")

	_, err := FromEnv()
	if err == nil {
		t.Fatal("malformed env accepted")
	}
	// Both problems reported together.
	if !strings.Contains(err.Error(), "LOGPIPE_BATCH_MAX") || !strings.Contains(err.Error(), "LOGPIPE_INVENTORY_PROBABILITY") {
		t.Errorf("err = %v", err)
	}
}

func TestValidateRanges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"batch max above ceiling", func(s *Settings) { s.BatchMax = 501 }},
		{"batch max zero", func(s *Settings) { s.BatchMax = 0 }},
		{"empty stream", func(s *Settings) { s.Stream = "" }},
		{"empty table", func(s *Settings) { s.Table = "" }},
		{"zero partitions", func(s *Settings) { s.Partitions = 0 }},
		{"negative interval", func(s *Settings) { s.EventInterval = -time.Second }},
		{"probability above one", func(s *Settings) { s.InventoryProbability = 1.5 }},
		{"inverted inventory range", func(s *Settings) { s.InventoryMin = 10; s.InventoryMax = 5 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := FromEnv()
			if err != nil {
				t.Fatal(err)
			}
			c.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("invalid settings accepted")
			}
		})
	}
}
