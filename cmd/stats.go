package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/tabsight/internal/analysis"
	"github.com/KaramelBytes/tabsight/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	statsInput       inputFlags
	statsJSON        bool
	statsPreviewRows int
	statsOutput      string
	statsJobs        int
)

var statsCmd = &cobra.Command{
	Use:   "stats <files...>",
	Short: "Report column statistics, missing values and preview rows",
	Example: `  tabsight stats sales.csv
  tabsight stats 'data/*.csv' --json -o report.json
  tabsight stats book.xlsx --sheet-name Q3 --thousands ,`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		coercion, err := statsInput.coercion()
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		opt.Coercion = coercion
		if cfg != nil && cfg.PreviewRows > 0 {
			opt.PreviewRows = cfg.PreviewRows
		}
		if cmd.Flags().Changed("preview-rows") {
			if statsPreviewRows < 0 {
				return fmt.Errorf("--preview-rows must be >= 0")
			}
			opt.PreviewRows = statsPreviewRows
		}

		reports := make([]*analysis.Report, len(files))
		g, ctx := errgroup.WithContext(cmd.Context())
		if statsJobs > 0 {
			g.SetLimit(statsJobs)
		}
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				ds, err := statsInput.load(path)
				if err != nil {
					return err
				}
				rep := analysis.Summarize(ds, opt)
				rep.Name = filepath.Base(path)
				reports[i] = rep
				logger.Debug("Dataset summarized",
					zap.String("file", path),
					zap.Int("rows", rep.RowCount),
					zap.Int("columns", len(rep.Columns)))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var out []byte
		if statsJSON {
			var v any = reports
			if len(reports) == 1 {
				v = reports[0]
			}
			if out, err = utils.PrettyJSON(v); err != nil {
				return err
			}
		} else {
			var buf bytes.Buffer
			for i, rep := range reports {
				if i > 0 {
					buf.WriteString("\n")
				}
				buf.WriteString(rep.Markdown())
			}
			out = buf.Bytes()
		}
		if err := utils.WriteOutput(cmd.OutOrStdout(), statsOutput, out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if statsOutput != "" && statsOutput != "-" {
			okf(cmd.ErrOrStderr(), "Wrote %d report(s) to %s", len(reports), statsOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	f := statsCmd.Flags()
	statsInput.register(f)
	f.BoolVar(&statsJSON, "json", false, "emit JSON instead of Markdown")
	f.IntVar(&statsPreviewRows, "preview-rows", 10, "number of preview rows, 0 to omit them (default from config)")
	f.StringVarP(&statsOutput, "output", "o", "", "write to file instead of stdout")
	f.IntVar(&statsJobs, "jobs", 4, "files loaded in parallel")
}
