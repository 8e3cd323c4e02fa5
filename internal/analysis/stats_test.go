package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabsight/internal/dataset"
)

func sample() *dataset.Dataset {
	ds := dataset.New()
	ds.Set("Score", []dataset.Value{dataset.Num(10), dataset.Str("11.5"), dataset.Str("n/a"), dataset.Null(), dataset.Num(8.5)})
	ds.Set("Group", []dataset.Value{dataset.Str("A"), dataset.Str("B"), dataset.Str(" ")})
	ds.Set("Empty", []dataset.Value{})
	return ds
}

func TestMedian(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{1, 2, 3, 4}, 2.5},
		{[]float64{1, 2, 3}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
		{[]float64{7}, 7},
	}
	for _, c := range cases {
		got, ok := Median(c.in)
		if !ok || got != c.want {
			t.Errorf("Median(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	if _, ok := Median(nil); ok {
		t.Fatalf("median of empty input should fail")
	}
	in := []float64{3, 1, 2}
	Median(in)
	if in[0] != 3 {
		t.Fatalf("Median must not reorder its input")
	}
}

func TestQuantileLinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	q1, _ := Quantile(sorted, 0.25)
	q3, _ := Quantile(sorted, 0.75)
	if !almostEqual(q1, 1.75, 1e-12) || !almostEqual(q3, 3.25, 1e-12) {
		t.Fatalf("q1=%v q3=%v", q1, q3)
	}
	if v, ok := Quantile([]float64{9}, 0.25); !ok || v != 9 {
		t.Fatalf("single element quantile = %v", v)
	}
	if _, ok := Quantile(nil, 0.5); ok {
		t.Fatalf("empty quantile should fail")
	}
}

func TestMeanStdPopulation(t *testing.T) {
	mean, std, ok := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !ok || !almostEqual(mean, 5, 1e-12) || !almostEqual(std, 2, 1e-12) {
		t.Fatalf("mean=%v std=%v", mean, std)
	}
	_, std, _ = MeanStd([]float64{5, 5, 5})
	if std != 0 {
		t.Fatalf("constant input std = %v", std)
	}
}

func TestSummarizeColumn(t *testing.T) {
	vals, _ := sample().Column("Score")
	s := SummarizeColumn("Score", vals, dataset.Coercion{})
	if s.Count != 5 || s.Missing != 2 {
		t.Fatalf("count=%d missing=%d", s.Count, s.Missing)
	}
	if *s.Min != 8.5 || *s.Max != 11.5 || *s.Median != 10 {
		t.Fatalf("min=%v max=%v median=%v", *s.Min, *s.Max, *s.Median)
	}
	if !almostEqual(*s.Mean, 10, 1e-12) {
		t.Fatalf("mean=%v", *s.Mean)
	}

	text := SummarizeColumn("Group", []dataset.Value{dataset.Str("A"), dataset.Null()}, dataset.Coercion{})
	if text.Missing != text.Count || text.Min != nil || text.Max != nil || text.Mean != nil || text.Median != nil {
		t.Fatalf("non-numeric summary = %+v", text)
	}
	b, _ := json.Marshal(text)
	if !strings.Contains(string(b), `"min":null`) || !strings.Contains(string(b), `"median":null`) {
		t.Fatalf("nil stats should encode as null: %s", b)
	}
}

func TestSummaryInvariants(t *testing.T) {
	cols := [][]dataset.Value{
		{dataset.Num(1e308), dataset.Num(1e308), dataset.Num(-1e308)},
		{dataset.Num(0.1), dataset.Num(0.2), dataset.Num(0.3), dataset.Str("x")},
		{dataset.Num(math.NaN()), dataset.Str("-3"), dataset.Num(3), dataset.Str("")},
		{dataset.Num(-2), dataset.Num(-2), dataset.Num(-2)},
	}
	for i, vals := range cols {
		s := SummarizeColumn("c", vals, dataset.Coercion{})
		numeric := len(dataset.Coercion{}.Numbers(vals))
		if s.Missing+numeric != s.Count {
			t.Fatalf("col %d: missing %d + numeric %d != count %d", i, s.Missing, numeric, s.Count)
		}
		if *s.Min > *s.Median || *s.Median > *s.Max {
			t.Fatalf("col %d: median %v outside [%v, %v]", i, *s.Median, *s.Min, *s.Max)
		}
		if s.Mean != nil && (*s.Min > *s.Mean || *s.Mean > *s.Max) {
			t.Fatalf("col %d: mean %v outside [%v, %v]", i, *s.Mean, *s.Min, *s.Max)
		}
	}
}

func TestMissingSummaries(t *testing.T) {
	ds := dataset.New()
	ds.Set("C", []dataset.Value{dataset.Num(1), dataset.Null(), dataset.Str(""), dataset.Num(3)})
	ds.Set("E", nil)
	got := MissingSummaries(ds)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Missing != 2 || got[0].Total != 4 || got[0].Rate != 0.5 {
		t.Fatalf("C = %+v", got[0])
	}
	if got[1].Total != 0 || got[1].Rate != 0 {
		t.Fatalf("E = %+v", got[1])
	}
}

func TestPreviewRowsPlaceholderAndBound(t *testing.T) {
	rows := PreviewRows(sample(), 10)
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	if rows[0].Index != 1 || rows[4].Index != 5 {
		t.Fatalf("indices = %d..%d", rows[0].Index, rows[4].Index)
	}
	if got := rows[2].Cells[1].Value.String(); got != Placeholder {
		t.Fatalf("blank cell = %q, want placeholder", got)
	}
	if got := rows[4].Cells[1].Value.String(); got != Placeholder {
		t.Fatalf("absent cell = %q, want placeholder", got)
	}
	if got := rows[2].Cells[0].Value.String(); got != "n/a" {
		t.Fatalf("non-numeric text must pass through, got %q", got)
	}
	if len(PreviewRows(sample(), 2)) != 2 {
		t.Fatalf("preview should be bounded by n")
	}

	b, err := json.Marshal(rows[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"index":1,"values":{"Score":10,"Group":"A","Empty":"-"}}`
	if string(b) != want {
		t.Fatalf("json = %s, want %s", b, want)
	}
}

func TestSummarizeReport(t *testing.T) {
	rep := Summarize(sample(), DefaultOptions())
	if strings.Join(rep.Columns, ",") != "Score,Group,Empty" {
		t.Fatalf("columns = %v", rep.Columns)
	}
	if rep.RowCount != 5 {
		t.Fatalf("rowCount = %d", rep.RowCount)
	}
	if rep.TotalValidValues != 3 {
		t.Fatalf("totalValidValues = %d, want 3", rep.TotalValidValues)
	}
	if len(rep.NumericSummaries) != 3 || len(rep.MissingSummaries) != 3 || len(rep.PreviewRows) != 5 {
		t.Fatalf("unexpected report shape: %+v", rep)
	}

	empty := Summarize(nil, Options{})
	b, _ := json.Marshal(empty)
	want := `{"columns":[],"rowCount":0,"totalValidValues":0,"numericSummaries":[],"missingSummaries":[],"previewRows":[]}`
	if string(b) != want {
		t.Fatalf("empty report = %s", b)
	}
}

func TestSummarizePreviewRowCount(t *testing.T) {
	ds := dataset.New()
	vals := make([]dataset.Value, 20)
	for i := range vals {
		vals[i] = dataset.Num(float64(i))
	}
	ds.Set("n", vals)

	if rep := Summarize(ds, Options{PreviewRows: 0}); len(rep.PreviewRows) != 0 {
		t.Fatalf("PreviewRows 0 should omit the preview, got %d rows", len(rep.PreviewRows))
	}
	if rep := Summarize(ds, Options{PreviewRows: -1}); len(rep.PreviewRows) != DefaultOptions().PreviewRows {
		t.Fatalf("negative PreviewRows should use the default, got %d rows", len(rep.PreviewRows))
	}
	if rep := Summarize(ds, Options{PreviewRows: 3}); len(rep.PreviewRows) != 3 {
		t.Fatalf("PreviewRows 3 gave %d rows", len(rep.PreviewRows))
	}
	rep := Summarize(ds, Options{PreviewRows: 0})
	if strings.Contains(rep.Markdown(), "[PREVIEW ROWS]") {
		t.Fatalf("markdown should skip the empty preview section")
	}
}

func TestSummarizeThousandsSeparator(t *testing.T) {
	ds := dataset.New()
	ds.Set("Revenue", []dataset.Value{dataset.Str("1,200"), dataset.Str("3,400.5")})
	plain := Summarize(ds, DefaultOptions())
	if plain.NumericSummaries[0].Numeric() {
		t.Fatalf("separators should not parse by default")
	}
	opt := DefaultOptions()
	opt.Coercion = dataset.Coercion{ThousandsSeparator: ','}
	rep := Summarize(ds, opt)
	s := rep.NumericSummaries[0]
	if s.Missing != 0 || *s.Max != 3400.5 {
		t.Fatalf("summary with separator = %+v", s)
	}
}

func TestMarkdown(t *testing.T) {
	rep := Summarize(sample(), DefaultOptions())
	rep.Name = "scores.csv"
	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: scores.csv",
		"Rows: 5",
		"- Score: count 5, non-numeric 2 | min 8.5, max 11.5, mean 10, median 10",
		"- Group: count 3, non-numeric 3 | no numeric values",
		"[MISSING VALUES]",
		"| Group | 1 | 3 | 33.3% |",
		"[PREVIEW ROWS]",
		"| 1 | 10 | A | - |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
