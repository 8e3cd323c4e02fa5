package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/tabsight/internal/ai"
	cfgpkg "github.com/KaramelBytes/tabsight/internal/config"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, API key and runtime reachability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		problems := 0

		if cfg == nil {
			failf(out, "Config could not be loaded")
			return fmt.Errorf("doctor found problems")
		}
		path := cfgFile
		if path == "" {
			if dir, err := cfgpkg.Dir(); err == nil {
				path = filepath.Join(dir, "config.yaml")
			}
		}
		okf(out, "Config loaded (%s)", path)

		provider := providerName(cfg, "")
		okf(out, "Provider: %s, model: %s", provider, selectModel(cfg, ""))
		if _, ok := ai.LookupModel(selectModel(cfg, "")); !ok {
			warnf(out, "Model %q is not in the built-in catalog; context-window checks are skipped", selectModel(cfg, ""))
		}

		switch provider {
		case ai.ProviderOllama:
			rc := runtimeConfig(cfg, runtimeOptions{})
			oc := ai.NewOllamaClient(rc.Host, rc.HTTPTimeout, rc.Retry, ai.WithLogger(logger))
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			names, err := oc.ListModels(ctx)
			if err != nil {
				failf(out, "Ollama not reachable at %s: %v", oc.Host(), err)
				problems++
				break
			}
			okf(out, "Ollama reachable at %s (%d model(s))", oc.Host(), len(names))
			found := false
			for _, n := range names {
				if n == selectModel(cfg, "") {
					found = true
				}
			}
			if !found {
				warnf(out, "Model %q is not installed; run 'ollama pull %s'", selectModel(cfg, ""), selectModel(cfg, ""))
			}
		default:
			if cfg.APIKey == "" {
				failf(out, "No OpenRouter API key (set OPENROUTER_API_KEY or 'tabsight config set api_key <key>')")
				problems++
			} else {
				okf(out, "OpenRouter API key set (%s)", mask(cfg.APIKey))
			}
		}

		if problems > 0 {
			return fmt.Errorf("doctor found %d problem(s)", problems)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
