// Package tokens counts LLM tokens for cost estimation and context-limit
// enforcement.
//
// Counting prefers an exact subword codec registered for the model's
// encoding family; when none is available it falls back to a deterministic
// heuristic. The heuristic's constants are calibration values preserved for
// compatibility with existing cost expectations and must not be adjusted
// casually.
//
// # Exact vs. heuristic mode
//
// Exact codecs are pluggable via RegisterCodec. A process that never
// registers one always uses the heuristic; the absence of a codec is not
// an error.
package tokens
