package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tabsight/internal/plot"
	"github.com/KaramelBytes/tabsight/internal/utils"
	"github.com/spf13/cobra"
)

var (
	plotInput  inputFlags
	plotX      string
	plotY      string
	plotAll    bool
	plotOutput string
)

var plotCmd = &cobra.Command{
	Use:   "plot <file>",
	Short: "Emit a Plotly figure (JSON) for two columns or all numeric columns",
	Example: `  tabsight plot sales.csv --x price --y quantity
  tabsight plot sales.csv --all -o figure.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if plotAll && (plotX != "" || plotY != "") {
			return fmt.Errorf("--all cannot be combined with --x/--y")
		}
		if !plotAll && (plotX == "" || plotY == "") {
			return fmt.Errorf("set both --x and --y, or use --all")
		}
		coercion, err := plotInput.coercion()
		if err != nil {
			return err
		}
		ds, err := plotInput.load(args[0])
		if err != nil {
			return err
		}
		var fig plot.Figure
		if plotAll {
			fig = plot.Lines(ds, coercion)
		} else {
			for _, col := range []string{plotX, plotY} {
				if _, ok := ds.Column(col); !ok {
					warnf(cmd.ErrOrStderr(), "Column %q not found; the figure will be empty", col)
				}
			}
			fig = plot.Scatter(ds, plotX, plotY, coercion)
		}
		if len(fig.Data) == 0 {
			warnf(cmd.ErrOrStderr(), "No numeric values to plot")
		}
		b, err := utils.PrettyJSON(fig)
		if err != nil {
			return err
		}
		return utils.WriteOutput(cmd.OutOrStdout(), plotOutput, b)
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	f := plotCmd.Flags()
	plotInput.register(f)
	f.StringVar(&plotX, "x", "", "column for the x axis")
	f.StringVar(&plotY, "y", "", "column for the y axis")
	f.BoolVar(&plotAll, "all", false, "one line trace per numeric column against row number")
	f.StringVarP(&plotOutput, "output", "o", "", "write to file instead of stdout")
}
