// Package generate produces the synthetic raw events the producer feeds into
// the pipeline.
package generate

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rendxnn/logpipe/internal/event"
	"github.com/Rendxnn/logpipe/internal/metrics"
)

// Settings tunes what the generator emits.
type Settings struct {
	// InventoryProbability is the chance in [0,1] that an emission is an
	// inventory event instead of an HTTP one.
	InventoryProbability float64
	// InventoryMin and InventoryMax bound the emitted inventory level.
	InventoryMin int
	InventoryMax int
}

// Generator picks a random event on each call. The pool and catalog can be
// swapped at runtime (config hot reload), so reads are lock-guarded.
type Generator struct {
	mu       sync.Mutex
	pool     []Option
	products []string
	settings Settings
	rnd      *rand.Rand
}

// New creates a Generator. Empty pool or catalog fall back to the built-ins.
func New(pool []Option, products []string, s Settings) *Generator {
	if len(pool) == 0 {
		pool = DefaultPool()
	}
	if len(products) == 0 {
		products = DefaultProducts()
	}
	return &Generator{
		pool:     pool,
		products: products,
		settings: s,
		rnd:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetPool swaps the response pool (hot reload).
func (g *Generator) SetPool(pool []Option) {
	if len(pool) == 0 {
		return
	}
	g.mu.Lock()
	g.pool = pool
	g.mu.Unlock()
}

// SetProducts swaps the product catalog (hot reload).
func (g *Generator) SetProducts(products []string) {
	if len(products) == 0 {
		return
	}
	g.mu.Lock()
	g.products = products
	g.mu.Unlock()
}

// Next returns one random raw event, stamped with the current time and a
// fresh request id.
func (g *Generator) Next() event.Raw {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rnd.Float64() < g.settings.InventoryProbability {
		metrics.EventsGenerated.WithLabelValues("inventory").Inc()
		return g.inventoryEvent()
	}
	metrics.EventsGenerated.WithLabelValues("http").Inc()
	return g.httpEvent()
}

func (g *Generator) httpEvent() event.Raw {
	opt := g.pool[g.rnd.IntN(len(g.pool))]
	ev := event.Raw{
		"type":        "http",
		"method":      opt.Method,
		"path":        opt.Path,
		"status_code": opt.StatusCode,
		"message":     opt.Message,
		"timestamp":   timestamp(),
		"request_id":  uuid.New().String(),
	}
	if opt.ErrorCode != "" {
		ev["error_code"] = opt.ErrorCode
	}
	return ev
}

func (g *Generator) inventoryEvent() event.Raw {
	s := g.settings
	level := s.InventoryMin
	if s.InventoryMax > s.InventoryMin {
		level += g.rnd.IntN(s.InventoryMax - s.InventoryMin + 1)
	}
	return event.Raw{
		"type":       "inventory",
		"product_id": g.products[g.rnd.IntN(len(g.products))],
		"inventory":  level,
		"timestamp":  timestamp(),
		"request_id": uuid.New().String(),
	}
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000") + "Z"
}
