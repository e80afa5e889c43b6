package tokens

// modelEncodings maps model names to their subword encoding family.
// Claude models are approximated with cl100k_base.
var modelEncodings = map[string]string{
	// OpenAI GPT-4 models
	"gpt-4":                "cl100k_base",
	"gpt-4-turbo":          "cl100k_base",
	"gpt-4-turbo-preview":  "cl100k_base",
	"gpt-4o":               "o200k_base",
	"gpt-4o-mini":          "o200k_base",
	"gpt-4-vision-preview": "cl100k_base",

	// OpenAI GPT-3.5 models
	"gpt-3.5-turbo":     "cl100k_base",
	"gpt-3.5-turbo-16k": "cl100k_base",

	// OpenAI embedding models
	"text-embedding-3-small": "cl100k_base",
	"text-embedding-3-large": "cl100k_base",
	"text-embedding-ada-002": "cl100k_base",

	// Anthropic Claude models
	"claude-3-opus-20240229":     "cl100k_base",
	"claude-3-sonnet-20240229":   "cl100k_base",
	"claude-3-haiku-20240307":    "cl100k_base",
	"claude-3-5-sonnet-20241022": "cl100k_base",
}

// DefaultEncoding is used for models without a known encoding family.
const DefaultEncoding = "cl100k_base"

// modelContextLimits maps model names to their context window size.
var modelContextLimits = map[string]int{
	// OpenAI models
	"gpt-4":                8192,
	"gpt-4-turbo":          128000,
	"gpt-4-turbo-preview":  128000,
	"gpt-4o":               128000,
	"gpt-4o-mini":          128000,
	"gpt-4-vision-preview": 128000,
	"gpt-3.5-turbo":        16385,
	"gpt-3.5-turbo-16k":    16385,

	// Anthropic models
	"claude-3-opus-20240229":     200000,
	"claude-3-sonnet-20240229":   200000,
	"claude-3-haiku-20240307":    200000,
	"claude-3-5-sonnet-20241022": 200000,

	// Local models (Ollama)
	"llama2":    4096,
	"llama3":    8192,
	"mistral":   8192,
	"codellama": 16384,
}

// DefaultContextLimit is assumed for unrecognized models.
const DefaultContextLimit = 4096

// EncodingFor returns the encoding family name for a model, falling back
// to DefaultEncoding.
func EncodingFor(model string) string {
	if enc, ok := modelEncodings[model]; ok {
		return enc
	}
	return DefaultEncoding
}

// ContextLimit returns the context window size for a model, falling back
// to DefaultContextLimit.
func ContextLimit(model string) int {
	if limit, ok := modelContextLimits[model]; ok {
		return limit
	}
	return DefaultContextLimit
}
