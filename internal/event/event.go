package event

// Raw is a decoded but not yet normalized event: an arbitrary JSON object
// produced by the generator or recovered from an undecodable stream payload.
// No fixed schema is guaranteed.
type Raw map[string]interface{}

// Kind discriminates the event variants the normalizer understands.
type Kind int

const (
	// KindHTTP is a simulated HTTP request/response event.
	KindHTTP Kind = iota
	// KindInventory is a product inventory level event.
	KindInventory
	// KindRawFallback wraps a payload that could not be decoded as JSON.
	KindRawFallback
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindInventory:
		return "inventory"
	case KindRawFallback:
		return "raw"
	default:
		return "unknown"
	}
}

// Classify determines the variant of a raw event. Later generator revisions
// carry an explicit "type" discriminator; earlier ones are recognized by the
// presence of product_id (inventory) or of a bare "raw" field (an undecodable
// payload wrapped by the decoder). Everything else is treated as HTTP.
func Classify(ev Raw) Kind {
	if t, ok := ev["type"].(string); ok {
		switch t {
		case "inventory":
			return KindInventory
		case "http":
			return KindHTTP
		}
	}
	if _, ok := ev["product_id"]; ok {
		return KindInventory
	}
	_, hasRaw := ev["raw"]
	_, hasMethod := ev["method"]
	_, hasPath := ev["path"]
	if hasRaw && !hasMethod && !hasPath {
		return KindRawFallback
	}
	return KindHTTP
}

// Str returns ev[key] as a string, or "" when the key is absent or holds a
// non-string value.
func (ev Raw) Str(key string) string {
	s, _ := ev[key].(string)
	return s
}
