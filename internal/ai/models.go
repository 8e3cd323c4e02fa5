package ai

import "sort"

// DefaultModel is used when neither flags nor config name one.
const DefaultModel = "openai/gpt-4.1-mini"

// ModelInfo carries context window and illustrative pricing for UX warnings.
type ModelInfo struct {
	Name          string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

var models = map[string]ModelInfo{
	"openai/gpt-4.1-mini":              {Name: "openai/gpt-4.1-mini", ContextTokens: 128000, InputPerK: 0.0004, OutputPerK: 0.0016},
	"openai/gpt-4o-mini":               {Name: "openai/gpt-4o-mini", ContextTokens: 128000, InputPerK: 0.00015, OutputPerK: 0.0006},
	"anthropic/claude-3-haiku":         {Name: "anthropic/claude-3-haiku", ContextTokens: 200000, InputPerK: 0.00025, OutputPerK: 0.00125},
	"google/gemini-1.5-flash":          {Name: "google/gemini-1.5-flash", ContextTokens: 1000000, InputPerK: 0.0002, OutputPerK: 0.0008},
	"meta-llama/llama-3.1-8b-instruct": {Name: "meta-llama/llama-3.1-8b-instruct", ContextTokens: 131072},
	// local (Ollama) tags
	"llama3.1:8b":     {Name: "llama3.1:8b", ContextTokens: 8192},
	"mistral:7b":      {Name: "mistral:7b", ContextTokens: 8192},
	"phi3:mini":       {Name: "phi3:mini", ContextTokens: 4096},
	"qwen2.5:7b":      {Name: "qwen2.5:7b", ContextTokens: 32768},
	"gemma2:9b":       {Name: "gemma2:9b", ContextTokens: 8192},
	"llama3.2:latest": {Name: "llama3.2:latest", ContextTokens: 131072},
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost for the given token counts. ok is
// false for unknown models.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	return float64(promptTokens)/1000*mi.InputPerK + float64(completionTokens)/1000*mi.OutputPerK, true
}

// ModelNames lists catalog entries in sorted order.
func ModelNames() []string {
	out := make([]string, 0, len(models))
	for k := range models {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
