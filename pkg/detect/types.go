package detect

// Severity classifies how serious a finding is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Finding is one pattern hit in scanned text.
type Finding struct {
	// Detector names the detector that produced the finding.
	Detector string `json:"detector"`

	// Technique is the attack technique the matched pattern belongs
	// to, when known.
	Technique string `json:"technique,omitempty"`

	// Pattern is the regex text that matched.
	Pattern string `json:"pattern"`

	// Match is the matched substring.
	Match string `json:"match"`

	// Severity and Confidence qualify the finding.
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
}

// Detector scans text for adversarial content.
type Detector interface {
	// Name identifies the detector.
	Name() string

	// Scan returns all findings in the text. An empty result means
	// the text looked clean to this detector.
	Scan(text string) []Finding
}
