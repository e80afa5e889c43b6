// Package logging configures structured logging for argus.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Automatic secret redaction (API keys, bearer tokens, passwords)
//   - Context-aware logging with attack and session identifiers
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Create a logger and install it as the process default
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//	slog.SetDefault(logger.Slog())
//
//	// Log structured data
//	logger.Info("attack recorded",
//	    "attack_id", "a-123",
//	    "api_key", "sk-abc123",  // Automatically redacted
//	    "technique", "jailbreak",
//	)
//
// # Secret Redaction
//
// Attack payloads and model responses routinely carry planted API keys
// and tokens, so redaction is on by default:
//
//   - API keys: sk-abc123xyz → sk-***
//   - Bearer tokens: Bearer eyJhb... → Bearer ***
//   - Password fields: password=hunter2 → password: ***
package logging
