// Package governor is the admission-control layer between the platform
// and upstream LLM providers. It combines a token-bucket rate limiter,
// a concurrency gate, and a rolling cost ledger with daily and monthly
// budget windows.
//
// # Call protocol
//
// Callers bracket every outbound LLM call:
//
//	cost := gov.EstimateCost(model, promptTokens, 0)
//	if allowed, reason := gov.CheckBudget(cost); !allowed {
//	    // abort, surface reason
//	}
//	if !gov.AcquireWithWait(ctx, 30*time.Second) {
//	    // rate limited, abort
//	}
//	if !gov.TryAcquireSlot() {
//	    // too many calls in flight
//	}
//	defer gov.ReleaseSlot()
//	// ... perform the LLM call ...
//	gov.RecordUsage(provider, model, inTokens, outTokens, "chat")
//
// Rate and budget decisions on this hot path are returned as values,
// never as errors. The package performs no network I/O of its own.
//
// # Budget windows
//
// Daily and monthly spend accumulate against calendar windows. Rollover
// is detected lazily on the next operation that touches the counters;
// there is no background timer to manage.
package governor
