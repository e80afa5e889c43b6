package tokens

import "sync"

// Codec is an exact subword tokenizer for one encoding family.
// Implementations must be safe for concurrent use.
//
// A Codec is the preferred path for billing-accurate counts; Encode and
// Decode additionally enable exact truncation at a token boundary.
type Codec interface {
	// Name returns the encoding name (e.g. "cl100k_base").
	Name() string

	// Encode converts text into token IDs.
	Encode(text string) []int

	// Decode converts token IDs back into text.
	Decode(ids []int) string
}

// codecRegistry maps encoding names to registered codecs.
var (
	codecMu       sync.RWMutex
	codecRegistry = make(map[string]Codec)
)

// RegisterCodec makes an exact codec available for an encoding family.
// Registering a codec for an already-registered encoding replaces it.
func RegisterCodec(c Codec) {
	codecMu.Lock()
	defer codecMu.Unlock()
	codecRegistry[c.Name()] = c
}

// lookupCodec returns the codec for an encoding name, or nil if no exact
// codec has been registered for it.
func lookupCodec(encoding string) Codec {
	codecMu.RLock()
	defer codecMu.RUnlock()
	return codecRegistry[encoding]
}
