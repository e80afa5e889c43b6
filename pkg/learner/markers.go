package learner

import (
	"regexp"
	"strings"
)

// structPrefix tags tokens that came from structural regex markers
// rather than the literal marker vocabulary.
const structPrefix = "STRUCT:"

// injectionMarkers is the fixed marker vocabulary matched against
// payloads during tokenization. Membership is checked case-insensitively
// as a substring.
var injectionMarkers = []string{
	"ignore", "disregard", "forget", "override", "bypass",
	"system", "admin", "root", "sudo", "execute",
	"new task", "new instruction", "important", "urgent",
	"developer mode", "maintenance mode", "debug mode",
	"pretend", "roleplay", "act as", "you are now",
	"DAN", "jailbreak", "unlimited", "unrestricted",
}

// structuralMarkers are regexes for structural features of payloads:
// code fences, instruction tags, closing tags, and separator runs.
var structuralMarkers = []*regexp.Regexp{
	regexp.MustCompile("```[\\w]*\\n"),
	regexp.MustCompile(`\[INST\]`),
	regexp.MustCompile(`</.*?>`),
	regexp.MustCompile(`---+`),
	regexp.MustCompile(`={3,}`),
}

// tokenizePayload extracts marker tokens from an attack payload. Literal
// markers are returned as-is; structural matches are returned with the
// structPrefix so later stages can tell them apart.
func tokenizePayload(payload string) []string {
	var tokens []string

	lower := strings.ToLower(payload)
	for _, marker := range injectionMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			tokens = append(tokens, marker)
		}
	}

	for _, pattern := range structuralMarkers {
		if pattern.MatchString(payload) {
			tokens = append(tokens, structPrefix+pattern.String())
		}
	}

	return tokens
}

// isStructural reports whether a frequency-table token came from a
// structural marker.
func isStructural(token string) bool {
	return strings.HasPrefix(token, structPrefix)
}

// tokenRegex converts a frequency-table token into regex text: structural
// tokens are already regexes, literal markers become word-bounded
// literals.
func tokenRegex(token string) string {
	if isStructural(token) {
		return strings.TrimPrefix(token, structPrefix)
	}
	return `\b` + regexp.QuoteMeta(token) + `\b`
}
