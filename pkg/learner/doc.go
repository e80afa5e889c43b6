// Package learner implements the red-team feedback loop: it consumes
// attack-outcome events, aggregates per-technique success statistics,
// and synthesizes detection-worthy regex patterns from the payloads of
// successful attacks.
//
// Learned patterns flow two ways. Guardrail detectors merge them into
// their static pattern tables via DetectionPatterns, and the attack
// generator seeds new probes from AttackSuggestions and EvolvePattern.
// Patterns are persisted through a Store after every learning pass and
// reloaded on startup; a missing or malformed store degrades to an empty
// pattern set, never to a failure.
package learner
