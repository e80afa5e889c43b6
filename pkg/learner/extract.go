package learner

import (
	"regexp"
	"sort"
)

const (
	// minAffixLen is the shortest shared prefix/suffix worth anchoring.
	minAffixLen = 10

	// maxAffixLen caps the affix search.
	maxAffixLen = 50

	// maxAffixCandidates bounds how many affixes are considered per pass.
	maxAffixCandidates = 10

	// maxMarkerPromotions bounds how many marker tokens are promoted to
	// standalone patterns per pass.
	maxMarkerPromotions = 20
)

// candidate is a synthesized regex with its extraction confidence.
type candidate struct {
	regex      string
	confidence float64
}

// extractCandidates synthesizes regex candidates from the successful
// payloads of one technique group. totalAttempts is the full group size
// (successful and failed), used to scale affix confidence.
//
// Three families are produced:
//  1. anchored common prefixes (^literal)
//  2. anchored common suffixes (literal$)
//  3. promoted marker tokens from the global frequency table
func (l *Learner) extractCandidates(successful []AttackFeedback, totalAttempts int) []candidate {
	if len(successful) == 0 {
		return nil
	}

	payloads := make([]string, len(successful))
	for i, a := range successful {
		payloads[i] = a.Payload
	}

	var out []candidate

	for _, affix := range commonAffixes(payloads, true) {
		if affix.count >= l.cfg.MinOccurrences && len(affix.text) >= minAffixLen {
			out = append(out, candidate{
				regex:      "^" + regexp.QuoteMeta(affix.text),
				confidence: float64(affix.count) / float64(totalAttempts),
			})
		}
	}

	for _, affix := range commonAffixes(payloads, false) {
		if affix.count >= l.cfg.MinOccurrences && len(affix.text) >= minAffixLen {
			out = append(out, candidate{
				regex:      regexp.QuoteMeta(affix.text) + "$",
				confidence: float64(affix.count) / float64(totalAttempts),
			})
		}
	}

	for _, tok := range l.topTokens(maxMarkerPromotions, false) {
		if tok.count < l.cfg.MinOccurrences {
			continue
		}
		confidence := float64(tok.count) / 10.0
		if confidence > 1.0 {
			confidence = 1.0
		}
		out = append(out, candidate{regex: tokenRegex(tok.token), confidence: confidence})
	}

	return out
}

// affix is a shared prefix or suffix with its occurrence count.
type affix struct {
	text  string
	count int
}

// commonAffixes counts prefixes (or suffixes) of length minAffixLen up to
// maxAffixLen-1 across the payloads and returns the strongest candidates,
// ordered by count, then length, then text. Affixes spanning a whole
// payload are not counted; at least two payloads must share an affix.
func commonAffixes(payloads []string, prefix bool) []affix {
	counts := make(map[string]int)

	for _, s := range payloads {
		limit := len(s)
		if limit > maxAffixLen {
			limit = maxAffixLen
		}
		for length := minAffixLen; length < limit; length++ {
			if prefix {
				counts[s[:length]]++
			} else {
				counts[s[len(s)-length:]]++
			}
		}
	}

	candidates := make([]affix, 0, len(counts))
	for text, count := range counts {
		if count >= 2 {
			candidates = append(candidates, affix{text: text, count: count})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		if len(candidates[i].text) != len(candidates[j].text) {
			return len(candidates[i].text) > len(candidates[j].text)
		}
		return candidates[i].text < candidates[j].text
	})

	if len(candidates) > maxAffixCandidates {
		candidates = candidates[:maxAffixCandidates]
	}
	return candidates
}

// tokenCount is a frequency-table entry.
type tokenCount struct {
	token string
	count int
}

// topTokens returns the most frequent tokens, ordered by count then
// token text. Structural tokens are excluded when literalOnly is set.
// Caller must hold l.mu.
func (l *Learner) topTokens(n int, literalOnly bool) []tokenCount {
	out := make([]tokenCount, 0, len(l.tokenFreq))
	for token, count := range l.tokenFreq {
		if literalOnly && isStructural(token) {
			continue
		}
		out = append(out, tokenCount{token: token, count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].token < out[j].token
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}
