package detect

import (
	"log/slog"
	"regexp"
)

// StaticDetector scans text against a fixed, configured pattern list.
// Patterns are compiled case-insensitively at construction; invalid
// patterns are skipped with a warning.
type StaticDetector struct {
	name     string
	severity Severity
	compiled []compiledPattern
}

// NewStaticDetector compiles the given regex patterns into a detector.
func NewStaticDetector(name string, patterns []string, severity Severity) *StaticDetector {
	logger := slog.Default().With("component", "static_detector", "detector", name)

	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			logger.Warn("skipping invalid pattern", "pattern", pattern, "error", err)
			continue
		}
		compiled = append(compiled, compiledPattern{re: re, pattern: pattern, confidence: 1.0})
	}

	return &StaticDetector{name: name, severity: severity, compiled: compiled}
}

// Name identifies the detector.
func (d *StaticDetector) Name() string { return d.name }

// Scan returns a finding for every configured pattern that matches.
func (d *StaticDetector) Scan(text string) []Finding {
	if text == "" {
		return nil
	}

	var findings []Finding
	for _, cp := range d.compiled {
		match := cp.re.FindString(text)
		if match == "" {
			continue
		}
		findings = append(findings, Finding{
			Detector:   d.name,
			Pattern:    cp.pattern,
			Match:      match,
			Severity:   d.severity,
			Confidence: cp.confidence,
		})
	}
	return findings
}

// ScanAll runs several detectors over the same text and concatenates
// their findings.
func ScanAll(text string, detectors ...Detector) []Finding {
	var findings []Finding
	for _, d := range detectors {
		findings = append(findings, d.Scan(text)...)
	}
	return findings
}
