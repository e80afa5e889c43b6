package learner

import (
	"math/rand"
	"strings"
)

// synonyms maps marker words to drop-in replacements used during
// payload mutation.
var synonyms = map[string][]string{
	"ignore":       {"disregard", "forget", "skip", "overlook"},
	"instructions": {"rules", "guidelines", "directives", "commands"},
	"system":       {"admin", "root", "core", "kernel"},
	"execute":      {"run", "perform", "carry out", "do"},
	"new":          {"different", "updated", "revised", "alternate"},
}

// wrappers are structural mutations applied to a whole payload.
var wrappers = []func(string) string{
	func(s string) string { return "```\n" + s + "\n```" },
	func(s string) string { return "[INST] " + s + " [/INST]" },
	func(s string) string { return "---\n" + s + "\n---" },
	func(s string) string { return strings.ReplaceAll(s, ". ", ".\n") },
	strings.ToUpper,
}

// EvolvePattern mutates a seed payload into up to count variants using
// synonym substitution and structural wrapping. Variants identical to
// the seed are discarded and results are distinct, so fewer than count
// may be returned.
func EvolvePattern(seed string, count int) []string {
	if seed == "" || count <= 0 {
		return nil
	}

	seen := map[string]struct{}{seed: {}}
	var out []string

	// A few attempts per requested variant; mutation can collide.
	for attempts := 0; attempts < count*4 && len(out) < count; attempts++ {
		variant := mutate(seed)
		if _, dup := seen[variant]; dup {
			continue
		}
		seen[variant] = struct{}{}
		out = append(out, variant)
	}
	return out
}

// mutate applies one synonym substitution when a marker word is
// present, then a structural wrapper half the time.
func mutate(seed string) string {
	variant := seed

	lower := strings.ToLower(variant)
	for word, alts := range synonyms {
		if strings.Contains(lower, word) {
			alt := alts[rand.Intn(len(alts))]
			variant = replaceFold(variant, word, alt)
			break
		}
	}

	if rand.Intn(2) == 0 {
		variant = wrappers[rand.Intn(len(wrappers))](variant)
	}
	return variant
}

// replaceFold replaces the first case-insensitive occurrence of old
// with new.
func replaceFold(s, old, new string) string {
	idx := strings.Index(strings.ToLower(s), strings.ToLower(old))
	if idx < 0 {
		return s
	}
	return s[:idx] + new + s[idx+len(old):]
}
