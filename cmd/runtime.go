package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/tabsight/internal/ai"
	cfgpkg "github.com/KaramelBytes/tabsight/internal/config"
)

var errNoAPIKey = errors.New("API key is not configured")

type runtimeOptions struct {
	ProviderFlag string
	OllamaHost   string
}

// providerName resolves --provider, then config, then the OpenRouter default.
func providerName(cfg *cfgpkg.Global, flag string) string {
	name := strings.ToLower(strings.TrimSpace(flag))
	if name == "" && cfg != nil {
		name = strings.ToLower(cfg.DefaultProvider)
	}
	return ai.NormalizeProvider(name)
}

func runtimeConfig(cfg *cfgpkg.Global, opts runtimeOptions) ai.RuntimeConfig {
	rc := ai.RuntimeConfig{
		HTTPTimeout: 60 * time.Second,
		Retry:       ai.RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 4 * time.Second},
		Logger:      logger,
		Host:        opts.OllamaHost,
	}
	if cfg == nil {
		return rc
	}
	if t := cfg.HTTPTimeout(); t > 0 {
		rc.HTTPTimeout = t
	}
	if cfg.RetryMaxAttempts > 0 {
		rc.Retry.MaxAttempts = cfg.RetryMaxAttempts
	}
	base, ceiling := cfg.RetryDelays()
	if base > 0 {
		rc.Retry.BaseDelay = base
	}
	if ceiling > 0 {
		rc.Retry.MaxDelay = ceiling
	}
	rc.APIKey = cfg.APIKey
	rc.BaseURL = cfg.BaseURL
	if rc.Host == "" {
		rc.Host = cfg.OllamaHost
	}
	return rc
}

// buildRuntime returns the runtime for the selected provider. OpenRouter
// without an API key yields errNoAPIKey.
func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	name := providerName(cfg, opts.ProviderFlag)
	rc := runtimeConfig(cfg, opts)
	if name == ai.ProviderOpenRouter && rc.APIKey == "" {
		return nil, name, errNoAPIKey
	}
	rt, ok := ai.GetRuntime(name, rc)
	if !ok {
		return nil, name, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(ai.Providers(), ", "))
	}
	return rt, name, nil
}

// selectModel picks --model, then config, then the built-in default.
func selectModel(cfg *cfgpkg.Global, flag string) string {
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return ai.DefaultModel
}
