package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/KaramelBytes/tabsight/internal/dataset"
)

// Placeholder is shown in preview rows for missing cells.
const Placeholder = "-"

// Options controls how a dataset is summarized.
type Options struct {
	// PreviewRows bounds the preview table. 0 omits it; a negative value
	// means the default of 10.
	PreviewRows int
	// Coercion decides which cells count as numeric.
	Coercion dataset.Coercion
}

// DefaultOptions returns the options used by the CLI and the HTTP API.
func DefaultOptions() Options {
	return Options{PreviewRows: 10}
}

// Report is the dataset-wide statistics document.
type Report struct {
	Name             string           `json:"name,omitempty"`
	Columns          []string         `json:"columns"`
	RowCount         int              `json:"rowCount"`
	TotalValidValues int              `json:"totalValidValues"`
	NumericSummaries []ColumnSummary  `json:"numericSummaries"`
	MissingSummaries []MissingSummary `json:"missingSummaries"`
	PreviewRows      []PreviewRow     `json:"previewRows"`
}

// ColumnSummary holds descriptive statistics for one column. Count is the raw
// length; Missing is the number of cells that did not coerce to a number.
// The numeric stats are nil when the column has no numeric value.
type ColumnSummary struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Missing int      `json:"missing"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Mean    *float64 `json:"mean"`
	Median  *float64 `json:"median"`
}

// Numeric reports whether the column had at least one numeric value.
func (s ColumnSummary) Numeric() bool { return s.Count-s.Missing > 0 }

// MissingSummary is the missing-value rate of one column.
type MissingSummary struct {
	Name    string  `json:"name"`
	Total   int     `json:"total"`
	Missing int     `json:"missing"`
	Rate    float64 `json:"rate"`
}

// Cell is one column's value in a preview row.
type Cell struct {
	Column string
	Value  dataset.Value
}

// PreviewRow is a 1-based row with its cells in column order.
type PreviewRow struct {
	Index int
	Cells []Cell
}

// MarshalJSON writes {"index": n, "values": {column: value, ...}} keeping
// column order.
func (p PreviewRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"index":`)
	idx, _ := json.Marshal(p.Index)
	buf.Write(idx)
	buf.WriteString(`,"values":{`)
	for i, c := range p.Cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Column)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// Summarize computes the full report for ds. A nil dataset yields an empty
// report.
func Summarize(ds *dataset.Dataset, opt Options) *Report {
	n := opt.PreviewRows
	if n < 0 {
		n = DefaultOptions().PreviewRows
	}
	rep := &Report{
		Columns:          ds.Names(),
		RowCount:         ds.RowCount(),
		NumericSummaries: []ColumnSummary{},
		MissingSummaries: MissingSummaries(ds),
		PreviewRows:      PreviewRows(ds, n),
	}
	if rep.Columns == nil {
		rep.Columns = []string{}
	}
	for _, c := range ds.Columns() {
		s := SummarizeColumn(c.Name, c.Values, opt.Coercion)
		rep.NumericSummaries = append(rep.NumericSummaries, s)
		rep.TotalValidValues += s.Count - s.Missing
	}
	return rep
}

// SummarizeColumn computes count, missing, min, max, mean and median over the
// cells of values that coerce to numbers.
func SummarizeColumn(name string, values []dataset.Value, c dataset.Coercion) ColumnSummary {
	nums := c.Numbers(values)
	s := ColumnSummary{Name: name, Count: len(values), Missing: len(values) - len(nums)}
	if len(nums) == 0 {
		return s
	}
	sort.Float64s(nums)
	mn, mx := nums[0], nums[len(nums)-1]
	mean := runningMean(nums)
	if !math.IsInf(mean, 0) && !math.IsNaN(mean) {
		// rounding may land a hair outside [min, max]
		mean = math.Min(math.Max(mean, mn), mx)
		s.Mean = &mean
	}
	med := medianSorted(nums)
	s.Min, s.Max, s.Median = &mn, &mx, &med
	return s
}

// MissingSummaries reports, per column, how many cells are missing.
func MissingSummaries(ds *dataset.Dataset) []MissingSummary {
	out := make([]MissingSummary, 0, ds.Len())
	for _, c := range ds.Columns() {
		m := MissingSummary{Name: c.Name, Total: len(c.Values)}
		for _, v := range c.Values {
			if dataset.IsMissing(v) {
				m.Missing++
			}
		}
		if m.Total > 0 {
			m.Rate = float64(m.Missing) / float64(m.Total)
		}
		out = append(out, m)
	}
	return out
}

// PreviewRows returns up to n leading rows. Missing or absent cells are
// replaced by Placeholder.
func PreviewRows(ds *dataset.Dataset, n int) []PreviewRow {
	rows := min(ds.RowCount(), n)
	if rows < 0 {
		rows = 0
	}
	cols := ds.Columns()
	out := make([]PreviewRow, 0, rows)
	for i := 0; i < rows; i++ {
		row := PreviewRow{Index: i + 1, Cells: make([]Cell, len(cols))}
		for j, c := range cols {
			v := dataset.At(c.Values, i)
			if dataset.IsMissing(v) {
				v = dataset.Str(Placeholder)
			}
			row.Cells[j] = Cell{Column: c.Name, Value: v}
		}
		out = append(out, row)
	}
	return out
}
