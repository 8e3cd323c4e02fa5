package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/KaramelBytes/tabsight/internal/ai"
	"github.com/KaramelBytes/tabsight/internal/analysis"
	"github.com/KaramelBytes/tabsight/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	sumInput       inputFlags
	sumModel       string
	sumProvider    string
	sumOllamaHost  string
	sumMaxTokens   int
	sumTemp        float64
	sumLanguage    string
	sumDryRun      bool
	sumStream      bool
	sumTimeoutSec  int
	sumFromPayload bool
	sumOutput      string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Ask an LLM for a short written summary of a dataset's statistics",
	Example: `  tabsight summarize sales.csv
  tabsight summarize sales.csv --provider ollama --model llama3.1:8b --stream
  tabsight summarize sales.csv --dry-run
  tabsight summarize payload.json --from-payload`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Flags bound to package vars persist between Execute calls; reset the
		// ones not given in this run.
		provided := map[string]bool{}
		cmd.Flags().Visit(func(fl *pflag.Flag) { provided[fl.Name] = true })
		if !provided["dry-run"] {
			sumDryRun = false
		}
		if !provided["stream"] {
			sumStream = false
		}

		payload, err := loadSummaryPayload(args[0])
		if err != nil {
			return err
		}

		opts := ai.SummaryOptions{
			Model:       selectModel(cfg, sumModel),
			MaxTokens:   sumMaxTokens,
			Temperature: sumTemp,
			Language:    sumLanguage,
		}
		if cfg != nil {
			if !provided["max-tokens"] && cfg.MaxTokens > 0 {
				opts.MaxTokens = cfg.MaxTokens
			}
			if !provided["temp"] && cfg.Temperature > 0 {
				opts.Temperature = cfg.Temperature
			}
			if opts.Language == "" {
				opts.Language = cfg.SummaryLanguage
			}
		}

		msgs, err := ai.SummaryMessages(payload, opts.Language)
		if err != nil {
			return err
		}
		tokens := utils.TokenBreakdown(map[string]string{"system": msgs[0].Content, "user": msgs[1].Content})
		promptTokens := tokens["system"] + tokens["user"]
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "Tokens: total≈%d (system≈%d, payload≈%d)\n", promptTokens, tokens["system"], tokens["user"])
		if mi, ok := ai.LookupModel(opts.Model); ok {
			if utils.ExceedsWindow(promptTokens, opts.MaxTokens, mi.ContextTokens) {
				warnf(errOut, "Prompt (%d tokens) + max-tokens (%d) exceeds %s context window (~%d tokens)",
					promptTokens, opts.MaxTokens, mi.Name, mi.ContextTokens)
			}
			if cost, ok := ai.EstimateCostUSD(opts.Model, promptTokens, opts.MaxTokens); ok && cost > 0 {
				fmt.Fprintf(errOut, "Estimated max cost: ~$%.4f\n", cost)
			}
		}

		if sumDryRun {
			fmt.Fprintln(errOut, "--dry-run: no API call will be made. Prompt preview below --")
			out := cmd.OutOrStdout()
			for _, m := range msgs {
				fmt.Fprintf(out, "[%s]\n%s\n\n", m.Role, m.Content)
			}
			return nil
		}

		rt, provider, err := buildRuntime(cfg, runtimeOptions{ProviderFlag: sumProvider, OllamaHost: sumOllamaHost})
		if err != nil {
			return err
		}
		timeout := time.Duration(sumTimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = 180 * time.Second
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		out := cmd.OutOrStdout()
		streaming := sumStream && sumOutput == ""
		if streaming {
			if _, ok := rt.(ai.StreamRuntime); !ok {
				warnf(errOut, "Streaming not supported for this provider; falling back to non-streaming.")
				streaming = false
			}
		}
		if streaming {
			opts.OnDelta = func(d string) { fmt.Fprint(out, d) }
		}
		fmt.Fprintf(errOut, "⚙ Summarizing with %s model=%s ...\n", provider, opts.Model)
		start := time.Now()
		summary, err := ai.Summarize(ctx, rt, opts, payload)
		if err != nil {
			return fmt.Errorf("summary failed: %w", err)
		}
		logger.Info("Summary generated",
			zap.String("provider", provider),
			zap.String("model", opts.Model),
			zap.Int("chars", len(summary)),
			zap.Duration("elapsed", time.Since(start)))

		if streaming {
			fmt.Fprintln(out)
			return nil
		}
		if summary == "" {
			warnf(errOut, "Model returned an empty summary")
		}
		if err := utils.WriteOutput(out, sumOutput, []byte(summary+"\n")); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if sumOutput != "" && sumOutput != "-" {
			okf(errOut, "Wrote summary to %s", sumOutput)
		}
		return nil
	},
}

// loadSummaryPayload builds the payload from a dataset file, or reads an
// already computed payload with --from-payload.
func loadSummaryPayload(path string) (*ai.SummaryPayload, error) {
	if sumFromPayload {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		return ai.ParseSummaryPayload(b)
	}
	coercion, err := sumInput.coercion()
	if err != nil {
		return nil, err
	}
	ds, err := sumInput.load(path)
	if err != nil {
		return nil, err
	}
	opt := analysis.DefaultOptions()
	opt.Coercion = coercion
	opt.PreviewRows = ai.SummaryPreviewRows
	return ai.NewSummaryPayload(analysis.Summarize(ds, opt)), nil
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	f := summarizeCmd.Flags()
	sumInput.register(f)
	f.StringVar(&sumModel, "model", "", "model name (default from config)")
	f.StringVar(&sumProvider, "provider", "", "openrouter|ollama (default from config)")
	f.StringVar(&sumOllamaHost, "ollama-host", "", "Ollama base URL (default from config)")
	f.IntVar(&sumMaxTokens, "max-tokens", 800, "max completion tokens")
	f.Float64Var(&sumTemp, "temp", 0.2, "sampling temperature")
	f.StringVar(&sumLanguage, "language", "", "summary language (default from config, else English)")
	f.BoolVar(&sumDryRun, "dry-run", false, "print the prompt without calling the model")
	f.BoolVar(&sumStream, "stream", false, "stream the summary as it is generated")
	f.IntVar(&sumTimeoutSec, "timeout-sec", 180, "request timeout in seconds")
	f.BoolVar(&sumFromPayload, "from-payload", false, "treat the input as a summary payload JSON instead of a dataset")
	f.StringVarP(&sumOutput, "output", "o", "", "write the summary to a file")
}
