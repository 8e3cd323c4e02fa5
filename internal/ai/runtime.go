package ai

import "context"

// Runtime is implemented by AI backends such as OpenRouter and a local Ollama.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// StreamRuntime is an optional extension that supports streaming output.
// Implementors invoke onDelta with each partial content chunk.
type StreamRuntime interface {
	GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderLocal      = "local"
)

// NormalizeProvider maps aliases onto a registered provider name.
func NormalizeProvider(p string) string {
	switch p {
	case "", ProviderOpenRouter:
		return ProviderOpenRouter
	case ProviderOllama, ProviderLocal:
		return ProviderOllama
	default:
		return p
	}
}
