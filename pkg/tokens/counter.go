package tokens

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Per-message accounting overheads. These are calibration constants tied
// to the chat formatting of current providers.
const (
	// messageOverhead covers the role marker and separators of one message.
	messageOverhead = 4

	// imageTokensLow is the surcharge for a low-detail image part.
	imageTokensLow = 85

	// imageTokensHigh is the surcharge for any other image detail level.
	imageTokensHigh = 765

	// toolCallOverhead covers the framing of attached tool/function calls.
	toolCallOverhead = 50

	// replyPrimingOverhead is added once for the assistant reply priming.
	replyPrimingOverhead = 3
)

// specialChars matches characters that the heuristic counts individually:
// anything that is neither alphanumeric (any script), underscore, nor
// whitespace.
var specialChars = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Message is one entry of a chat conversation for counting purposes.
// Content holds plain text; Parts holds multimodal content and takes
// precedence over Content when non-empty.
type Message struct {
	Role      string
	Content   string
	Parts     []ContentPart
	ToolCalls []ToolCall
}

// ContentPart is one typed element of a multimodal message.
type ContentPart struct {
	// Type is "text" or "image_url".
	Type string

	// Text is the text of a text part.
	Text string

	// ImageDetail is the requested detail level of an image part
	// ("low", "high", or "auto").
	ImageDetail string
}

// ToolCall describes a tool or function invocation attached to a message.
type ToolCall struct {
	Name      string
	Arguments string
}

// Counter counts tokens for a specific model, using an exact codec when
// one is registered for the model's encoding family and the heuristic
// fallback otherwise. The zero model selects the default encoding.
//
// Counter is immutable after creation and safe for concurrent use.
type Counter struct {
	model    string
	encoding string
	codec    Codec
}

// NewCounter creates a token counter for the given model.
func NewCounter(model string) *Counter {
	encoding := EncodingFor(model)
	return &Counter{
		model:    model,
		encoding: encoding,
		codec:    lookupCodec(encoding),
	}
}

// Model returns the model this counter was created for.
func (c *Counter) Model() string { return c.model }

// Exact reports whether an exact codec backs this counter.
func (c *Counter) Exact() bool { return c.codec != nil }

// CountTokens returns the token count for a text string. Empty text
// counts as zero. The result never decreases when non-empty text is
// appended.
func (c *Counter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if c.codec != nil {
		return len(c.codec.Encode(text))
	}
	return estimateTokens(text)
}

// CountMessageTokens returns the token count for an ordered chat
// conversation, including per-message formatting overhead, multimodal
// image surcharges, tool-call overhead, and the final reply priming.
func (c *Counter) CountMessageTokens(messages []Message) int {
	total := 0

	for _, msg := range messages {
		total += messageOverhead
		total += c.CountTokens(msg.Role)

		if len(msg.Parts) > 0 {
			for _, part := range msg.Parts {
				switch part.Type {
				case "text":
					total += c.CountTokens(part.Text)
				case "image_url":
					if part.ImageDetail == "low" {
						total += imageTokensLow
					} else {
						total += imageTokensHigh
					}
				}
			}
		} else {
			total += c.CountTokens(msg.Content)
		}

		if len(msg.ToolCalls) > 0 {
			total += toolCallOverhead
		}
	}

	total += replyPrimingOverhead
	return total
}

// ContextLimit returns the context window size for this counter's model.
func (c *Counter) ContextLimit() int {
	return ContextLimit(c.model)
}

// CheckWithinLimit reports whether text fits in the model's context window
// after reserving reservedOutput tokens for the completion. It also
// returns the counted tokens and the available input budget.
func (c *Counter) CheckWithinLimit(text string, reservedOutput int) (ok bool, count, available int) {
	available = c.ContextLimit() - reservedOutput
	count = c.CountTokens(text)
	return count <= available, count, available
}

// TruncateToLimit returns text unchanged when it fits in maxTokens.
// Otherwise it returns a prefix followed by indicator such that the
// result's token count does not exceed maxTokens. When the indicator
// alone exceeds maxTokens, the indicator is returned by itself.
//
// With an exact codec the cut lands on a token boundary; in heuristic
// mode the prefix length is a proportional character approximation.
func (c *Counter) TruncateToLimit(text string, maxTokens int, indicator string) string {
	current := c.CountTokens(text)
	if current <= maxTokens {
		return text
	}

	target := maxTokens - c.CountTokens(indicator)
	if target <= 0 {
		return indicator
	}

	if c.codec != nil {
		ids := c.codec.Encode(text)
		if len(ids) > target {
			ids = ids[:target]
		}
		return c.codec.Decode(ids) + indicator
	}

	ratio := float64(target) / float64(current)
	cut := int(float64(len(text)) * ratio)
	if cut > len(text) {
		cut = len(text)
	}
	// Back off to a rune boundary so the cut never splits a multibyte
	// character.
	for cut > 0 && cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + indicator
}

// estimateTokens is the deterministic heuristic fallback:
//
//	round(word_count * 1.3 + special_character_count)
//
// Roughly 1.3 tokens per whitespace-separated word plus one token per
// punctuation-like character. The constants are calibration values.
func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	specials := len(specialChars.FindAllStringIndex(text, -1))
	return int(math.Round(float64(words)*1.3 + float64(specials)))
}
