// Package costs provides the static pricing model for LLM API calls.
//
// The pricing table maps model names to per-1K-token input and output
// rates in USD. Unknown models resolve to a conservative default entry so
// that budget checks always have a price to work with. All functions are
// pure and safe for concurrent use.
package costs
