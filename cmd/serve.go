package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/tabsight/internal/ai"
	"github.com/KaramelBytes/tabsight/internal/analysis"
	"github.com/KaramelBytes/tabsight/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveAddr     string
	serveInput    inputFlags
	serveProvider string
	serveModel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stats, preprocess, plot and summary operations over HTTP",
	Example: `  tabsight serve --addr :8080
  curl -F file=@sales.csv localhost:8080/api/datasets`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		coercion, err := serveInput.coercion()
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" && cfg != nil {
			addr = cfg.ServerAddr
		}
		if addr == "" {
			addr = "127.0.0.1:8080"
		}

		sc := server.Config{
			Coercion:       coercion,
			PreviewRows:    analysis.DefaultOptions().PreviewRows,
			Logger:         logger,
			SummaryTimeout: 180 * time.Second,
			Summary:        ai.SummaryOptions{Model: selectModel(cfg, serveModel)},
		}
		if cfg != nil {
			if cfg.PreviewRows > 0 {
				sc.PreviewRows = cfg.PreviewRows
			}
			sc.Summary.MaxTokens = cfg.MaxTokens
			sc.Summary.Temperature = cfg.Temperature
			sc.Summary.Language = cfg.SummaryLanguage
		}
		rt, provider, err := buildRuntime(cfg, runtimeOptions{ProviderFlag: serveProvider})
		switch {
		case errors.Is(err, errNoAPIKey):
			warnf(cmd.ErrOrStderr(), "No API key configured; /api/summarize will answer 500")
		case err != nil:
			return err
		default:
			sc.Runtime = rt
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		okf(cmd.ErrOrStderr(), "Serving on http://%s (provider %s)", addr, provider)
		logger.Info("Starting server", zap.String("addr", addr), zap.String("provider", provider))
		return server.New(sc).ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", "", "listen address (default from config server_addr)")
	f.StringVar(&serveInput.thousands, "thousands", "", "thousands separator for numeric coercion (default from config)")
	f.StringVar(&serveProvider, "provider", "", "openrouter|ollama for /api/summarize (default from config)")
	f.StringVar(&serveModel, "model", "", "model for /api/summarize (default from config)")
}
