package ai

import "sort"

// ModelInfo is catalog metadata used for defaults and cost hints.
// Prices are illustrative and should be verified against provider docs.
type ModelInfo struct {
	Name          string
	Provider      string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

var models = map[string]ModelInfo{
	"deepseek/deepseek-r1:free":   {Name: "deepseek/deepseek-r1:free", Provider: ProviderOpenRouter, ContextTokens: 128000},
	"openai/gpt-4o-mini":          {Name: "openai/gpt-4o-mini", Provider: ProviderOpenRouter, ContextTokens: 128000, InputPerK: 0.0006, OutputPerK: 0.0024},
	"openai/gpt-4o":               {Name: "openai/gpt-4o", Provider: ProviderOpenRouter, ContextTokens: 128000, InputPerK: 0.005, OutputPerK: 0.015},
	"anthropic/claude-3.5-sonnet": {Name: "anthropic/claude-3.5-sonnet", Provider: ProviderOpenRouter, ContextTokens: 200000, InputPerK: 0.003, OutputPerK: 0.015},
	"google/gemini-1.5-flash":     {Name: "google/gemini-1.5-flash", Provider: ProviderOpenRouter, ContextTokens: 1000000, InputPerK: 0.0002, OutputPerK: 0.0008},
	"llama3.1:8b":                 {Name: "llama3.1:8b", Provider: ProviderOllama, ContextTokens: 8192},
	"mistral:7b-instruct":         {Name: "mistral:7b-instruct", Provider: ProviderOllama, ContextTokens: 8192},
}

// defaults maps a provider to the model used when none is configured.
var defaults = map[string]string{
	ProviderOpenRouter: "openai/gpt-4o-mini",
	ProviderOllama:     "llama3.1:8b",
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// DefaultModel returns the model used for provider when the user set none.
func DefaultModel(provider string) (string, bool) {
	if provider == "" {
		provider = ProviderOpenRouter
	}
	m, ok := defaults[provider]
	return m, ok
}

// ModelsFor lists catalog models for a provider, sorted by name.
func ModelsFor(provider string) []ModelInfo {
	var out []ModelInfo
	for _, mi := range models {
		if mi.Provider == provider {
			out = append(out, mi)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}
