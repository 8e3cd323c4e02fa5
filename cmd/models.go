package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/KaramelBytes/tabsight/internal/ai"
	"github.com/spf13/cobra"
)

var (
	modelsProvider   string
	modelsOllamaHost string
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models and their context windows",
	Example: `  tabsight models
  tabsight models --provider ollama`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if providerName(cfg, modelsProvider) == ai.ProviderOllama {
			rc := runtimeConfig(cfg, runtimeOptions{OllamaHost: modelsOllamaHost})
			oc := ai.NewOllamaClient(rc.Host, rc.HTTPTimeout, rc.Retry, ai.WithLogger(logger))
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			names, err := oc.ListModels(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				warnf(cmd.ErrOrStderr(), "No models installed at %s (try 'ollama pull llama3.1:8b')", oc.Host())
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MODEL\tCONTEXT\tIN $/1K\tOUT $/1K")
		for _, name := range ai.ModelNames() {
			mi, _ := ai.LookupModel(name)
			fmt.Fprintf(tw, "%s\t%d\t%.5f\t%.5f\n", mi.Name, mi.ContextTokens, mi.InputPerK, mi.OutputPerK)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().StringVar(&modelsProvider, "provider", "", "openrouter lists the built-in catalog; ollama lists installed tags")
	modelsCmd.Flags().StringVar(&modelsOllamaHost, "ollama-host", "", "Ollama base URL (default from config)")
}
