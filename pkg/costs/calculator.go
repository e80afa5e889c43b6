package costs

// EstimateCost returns the USD cost of a call with the given token counts
// against a model. Negative token counts contribute nothing.
//
// The calculation is:
//
//	inputTokens/1000 * input_rate + outputTokens/1000 * output_rate
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing := PricingFor(model)
	return tokenCost(inputTokens, pricing.InputPer1K) + tokenCost(outputTokens, pricing.OutputPer1K)
}

// tokenCost prices a token count at a per-1K rate.
func tokenCost(tokens int, per1K float64) float64 {
	if tokens <= 0 {
		return 0
	}
	return float64(tokens) / 1000.0 * per1K
}
