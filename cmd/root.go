package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/tabsight/internal/config"
	"github.com/KaramelBytes/tabsight/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	noColor bool
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global
	// Process logger; stays a no-op until config is loaded.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "tabsight",
	Short: "Summarize, clean and plot tabular datasets",
	Long: `tabsight loads CSV, TSV, XLSX or column-oriented JSON datasets, reports per-column
statistics and missing values, runs a preprocessing pipeline (median imputation,
IQR clipping, z-score standardization, missing-value indicators), projects columns
into Plotly figures and asks an LLM for a short written summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		failf(os.Stderr, "Error: %v", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
		}
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func init() {
	cobra.OnInitialize(loadConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.tabsight/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.BoolVar(&noColor, "no-color", false, "disable colored status output")
	pf.IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	pf.IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	pf.IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	pf.IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	setColor(!noColor)
	if err := cfgpkg.LoadDotEnv(""); err != nil {
		warnf(os.Stderr, "Warning: %v", err)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		warnf(os.Stderr, "Warning: failed to load config: %v", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := logging.New(level, cfg.LogFormat)
	if err != nil {
		warnf(os.Stderr, "Warning: %v; logging disabled", err)
		return
	}
	logger = l
	logger.Debug("Config loaded",
		zap.String("provider", cfg.DefaultProvider),
		zap.String("model", cfg.DefaultModel),
		zap.Bool("apiKeySet", cfg.APIKey != ""))
}
