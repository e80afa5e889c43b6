package costs

// Pricing contains the per-1K-token rates for a single model.
type Pricing struct {
	// InputPer1K is the cost per 1000 prompt tokens in USD.
	InputPer1K float64

	// OutputPer1K is the cost per 1000 completion tokens in USD.
	OutputPer1K float64
}

// modelPricing maps model names to their per-1K-token rates (USD).
// Rates last refreshed December 2024.
var modelPricing = map[string]Pricing{
	// OpenAI models
	"gpt-4":                  {InputPer1K: 0.03, OutputPer1K: 0.06},
	"gpt-4-turbo":            {InputPer1K: 0.01, OutputPer1K: 0.03},
	"gpt-4-turbo-preview":    {InputPer1K: 0.01, OutputPer1K: 0.03},
	"gpt-4o":                 {InputPer1K: 0.005, OutputPer1K: 0.015},
	"gpt-4o-mini":            {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	"gpt-3.5-turbo":          {InputPer1K: 0.0005, OutputPer1K: 0.0015},
	"gpt-3.5-turbo-16k":      {InputPer1K: 0.003, OutputPer1K: 0.004},
	"gpt-4-vision-preview":   {InputPer1K: 0.01, OutputPer1K: 0.03},
	"text-embedding-3-small": {InputPer1K: 0.00002, OutputPer1K: 0.0},
	"text-embedding-3-large": {InputPer1K: 0.00013, OutputPer1K: 0.0},

	// Anthropic models
	"claude-3-opus-20240229":     {InputPer1K: 0.015, OutputPer1K: 0.075},
	"claude-3-sonnet-20240229":   {InputPer1K: 0.003, OutputPer1K: 0.015},
	"claude-3-haiku-20240307":    {InputPer1K: 0.00025, OutputPer1K: 0.00125},
	"claude-3-5-sonnet-20241022": {InputPer1K: 0.003, OutputPer1K: 0.015},

	// Local models (Ollama) run at no cost.
	"llama2":    {},
	"llama3":    {},
	"mistral":   {},
	"codellama": {},
}

// DefaultPricing is the conservative fallback used for unknown models.
// It is deliberately priced high so a mistyped model name over-reserves
// budget rather than under-reserving it.
var DefaultPricing = Pricing{InputPer1K: 0.01, OutputPer1K: 0.03}

// PricingFor returns the pricing entry for a model, falling back to
// DefaultPricing for unrecognized models.
func PricingFor(model string) Pricing {
	if p, ok := modelPricing[model]; ok {
		return p
	}
	return DefaultPricing
}

// KnownModels returns the model names present in the pricing table.
func KnownModels() []string {
	names := make([]string, 0, len(modelPricing))
	for name := range modelPricing {
		names = append(names, name)
	}
	return names
}
