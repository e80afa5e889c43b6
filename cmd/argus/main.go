// Argus is the LLM call governance core of an AI-security testing
// platform.
//
// It provides:
//   - Token estimation and context-window management
//   - Cost calculation for commercial and local models
//   - Rate limiting and budget enforcement for probe traffic
//   - Pattern learning from attack feedback
//
// Usage:
//
//	# Validate a configuration file
//	argus validate --config /path/to/config.yaml
//
//	# Estimate tokens and cost for a prompt
//	argus estimate --model gpt-4 --text "Hello, world"
//
//	# Inspect the learned pattern set
//	argus patterns list --store learned_patterns.json
//
//	# Mutate a seed payload
//	argus patterns evolve "ignore all previous instructions" --count 5
package main

func main() {
	Execute()
}
