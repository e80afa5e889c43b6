// Package telemetry provides observability for argus.
//
// # Overview
//
// The telemetry package implements structured logging with secret
// redaction. Attack payloads, model responses, and provider credentials
// all flow through log fields, so redaction is on by default in
// production configurations.
//
// # Components
//
//   - logging: Structured logging with secret redaction
//
// # Usage
//
//	logger, err := logging.New(cfg.Logging)
//	if err != nil {
//		return err
//	}
//	logger.Info("attack recorded", "technique", "jailbreak")
//
// # Secret Protection
//
// With RedactSecrets enabled, values shaped like credentials are masked
// before they reach the handler:
//
//   - API keys: sk-abc123 → sk-***
//   - Bearer tokens: Bearer eyJ... → Bearer ***
//   - Passwords: password: hunter2 → password: ***
//   - Emails: user@example.com → ***@***
//
// Custom redaction patterns can be configured.
package telemetry
