// Package preprocess runs the one-click cleaning pipeline: median imputation,
// IQR clipping, z-score standardization and missing-indicator columns, with a
// log entry for every decision.
package preprocess

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/KaramelBytes/tabsight/internal/analysis"
	"github.com/KaramelBytes/tabsight/internal/dataset"
)

// ErrInvalidInput is returned when there is no dataset to process.
var ErrInvalidInput = errors.New("no dataset to preprocess")

// FillValue replaces missing cells in non-numeric columns.
const FillValue = "(missing)"

// IQRMultiplier scales the interquartile range into clipping bounds.
const IQRMultiplier = 1.5

const (
	suffixStandardized = "_standardized"
	suffixWasMissing   = "_was_missing"
)

// Options configures a pipeline run.
type Options struct {
	Coercion dataset.Coercion
	// Format renders numbers inside log descriptions. Parameters always keep
	// full precision. Defaults to FormatNumber.
	Format func(float64) string
	// Logger receives per-column diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Result is the processed dataset and the transformation log.
type Result struct {
	ProcessedData *dataset.Dataset `json:"processedData"`
	Log           Log              `json:"log"`
}

// FormatNumber rounds to 4 fractional digits for display.
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	if math.Abs(f) < 1e15 {
		f = math.Round(f*1e4) / 1e4
	}
	if f == 0 {
		f = 0 // drop negative zero
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Apply runs the pipeline over every column of ds in declaration order. Each
// column is right-padded with Missing to the dataset row count first. The
// input is never modified.
func Apply(ds *dataset.Dataset, opt Options) (*Result, error) {
	if ds == nil {
		return nil, ErrInvalidInput
	}
	p := &pipeline{
		coercion: opt.Coercion,
		format:   opt.Format,
		logger:   opt.Logger,
		out:      dataset.New(),
		log:      Log{},
	}
	if p.format == nil {
		p.format = FormatNumber
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}

	rows := ds.RowCount()
	for _, c := range ds.Columns() {
		p.column(c.Name, dataset.Aligned(c.Values, rows))
	}
	p.logger.Info("Preprocessing finished",
		zap.Int("columns", ds.Len()),
		zap.Int("rows", rows),
		zap.Int("outputColumns", p.out.Len()),
		zap.Int("logEntries", len(p.log)))
	return &Result{ProcessedData: p.out, Log: p.log}, nil
}

type pipeline struct {
	coercion dataset.Coercion
	format   func(float64) string
	logger   *zap.Logger
	out      *dataset.Dataset
	log      Log
}

func (p *pipeline) add(step, desc string, params Params) {
	p.log = append(p.log, Entry{Step: step, Description: desc, Parameters: params})
}

func (p *pipeline) set(name string, vals []dataset.Value) {
	if _, exists := p.out.Column(name); exists {
		p.logger.Warn("Output column replaced", zap.String("column", name))
	}
	p.out.Set(name, vals)
}

func (p *pipeline) column(name string, vals []dataset.Value) {
	n := len(vals)
	mask := make([]bool, n)
	nums := make([]float64, n)
	parsed := make([]bool, n)
	missing, numeric := 0, 0
	for i, v := range vals {
		if dataset.IsMissing(v) {
			mask[i] = true
			missing++
		}
		if f, ok := p.coercion.ToNumeric(v); ok {
			nums[i], parsed[i] = f, true
			numeric++
		}
	}

	if numeric == 0 {
		p.textColumn(name, vals, mask, missing)
	} else {
		p.numericColumn(name, nums, parsed, n-numeric)
	}

	indicator := name + suffixWasMissing
	flags := make([]dataset.Value, n)
	for i, m := range mask {
		if m {
			flags[i] = dataset.Num(1)
		} else {
			flags[i] = dataset.Num(0)
		}
	}
	p.set(indicator, flags)
	p.add(StepColumnGeneration,
		fmt.Sprintf("%s: generated missing-value indicator column.", indicator),
		Params{
			{"derivedColumn", indicator},
			{"source", name},
			{"method", "missing_indicator"},
			{"missingCount", missing},
		})
	p.logger.Debug("Column processed",
		zap.String("column", name),
		zap.Bool("numeric", numeric > 0),
		zap.Int("missing", missing))
}

func (p *pipeline) textColumn(name string, vals []dataset.Value, mask []bool, missing int) {
	filled := make([]dataset.Value, len(vals))
	for i, v := range vals {
		if mask[i] {
			v = dataset.Str(FillValue)
		}
		filled[i] = v
	}
	p.set(name, filled)

	desc := fmt.Sprintf("%s: no missing values detected; nothing to fill.", name)
	if missing > 0 {
		desc = fmt.Sprintf("%s: filled %d missing value(s) with %q.", name, missing, FillValue)
	}
	p.add(StepImputation, desc, Params{
		{"column", name},
		{"method", "fill_constant"},
		{"fillValue", FillValue},
		{"missingCount", missing},
	})
}

func (p *pipeline) numericColumn(name string, nums []float64, parsed []bool, failed int) {
	// imputation
	avail := make([]float64, 0, len(nums))
	for i, f := range nums {
		if parsed[i] {
			avail = append(avail, f)
		}
	}
	median, _ := analysis.Median(avail)
	filled := make([]float64, len(nums))
	for i, f := range nums {
		if parsed[i] {
			filled[i] = f
		} else {
			filled[i] = median
		}
	}
	desc := fmt.Sprintf("%s: no missing values detected (median %s).", name, p.format(median))
	if failed > 0 {
		desc = fmt.Sprintf("%s: imputed %d value(s) with median %s.", name, failed, p.format(median))
	}
	p.add(StepImputation, desc, Params{
		{"column", name},
		{"method", "median"},
		{"median", median},
		{"missingCount", failed},
	})

	// outlier clipping
	clipped := filled
	sorted := append([]float64(nil), filled...)
	sort.Float64s(sorted)
	q1, ok1 := analysis.Quantile(sorted, 0.25)
	q3, ok3 := analysis.Quantile(sorted, 0.75)
	if ok1 && ok3 {
		lower, upper := IQRBounds(q1, q3)
		clipped = Clip(filled, lower, upper)
		p.add(StepOutlierClip,
			fmt.Sprintf("%s: clipped to [%s, %s] by interquartile range.", name, p.format(lower), p.format(upper)),
			Params{
				{"column", name},
				{"method", "iqr_clip"},
				{"lowerBound", lower},
				{"upperBound", upper},
				{"q1", q1},
				{"q3", q3},
			})
	} else {
		p.add(StepOutlierClip,
			fmt.Sprintf("%s: quartiles could not be computed; clipping skipped.", name),
			Params{
				{"column", name},
				{"method", "iqr_clip"},
				{"skipped", true},
			})
	}

	// standardization
	std := name + suffixStandardized
	z := make([]dataset.Value, len(clipped))
	mean, sd, ok := analysis.MeanStd(clipped)
	if ok && len(clipped) > 0 && slices.Min(clipped) == slices.Max(clipped) {
		// constant column
		mean, sd = clipped[0], 0
	}
	computable := ok && !math.IsNaN(sd) && !math.IsInf(sd, 0) && !math.IsNaN(mean) && !math.IsInf(mean, 0)
	params := Params{{"column", std}, {"source", name}, {"method", "zscore"}}
	switch {
	case computable && sd != 0:
		for i, v := range clipped {
			z[i] = dataset.Num((v - mean) / sd)
		}
		params = append(params, Param{"mean", mean}, Param{"stdDev", sd})
		p.add(StepStandardization,
			fmt.Sprintf("%s: z-score with mean %s and standard deviation %s.", std, p.format(mean), p.format(sd)),
			params)
	case computable:
		for i := range z {
			z[i] = dataset.Num(0)
		}
		params = append(params, Param{"mean", mean}, Param{"stdDev", sd})
		p.add(StepStandardization,
			fmt.Sprintf("%s: standard deviation is 0; all values set to 0.", std),
			params)
	default:
		for i := range z {
			z[i] = dataset.Num(0)
		}
		params = append(params, Param{"mean", nil}, Param{"stdDev", nil})
		p.add(StepStandardization,
			fmt.Sprintf("%s: statistics could not be computed; all values set to 0.", std),
			params)
	}

	out := make([]dataset.Value, len(clipped))
	for i, v := range clipped {
		out[i] = dataset.Num(v)
	}
	p.set(name, out)
	p.set(std, z)
}

// IQRBounds returns [q1 - 1.5*IQR, q3 + 1.5*IQR].
func IQRBounds(q1, q3 float64) (lower, upper float64) {
	iqr := q3 - q1
	return q1 - IQRMultiplier*iqr, q3 + IQRMultiplier*iqr
}

// Clip returns a copy of vals with every value bounded to [lower, upper].
func Clip(vals []float64, lower, upper float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Min(math.Max(v, lower), upper)
	}
	return out
}
