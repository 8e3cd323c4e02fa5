package preprocess

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/tabsight/internal/dataset"
)

func nums(vals ...float64) []dataset.Value {
	out := make([]dataset.Value, len(vals))
	for i, v := range vals {
		out[i] = dataset.Num(v)
	}
	return out
}

func floats(t *testing.T, ds *dataset.Dataset, name string) []float64 {
	t.Helper()
	vals, ok := ds.Column(name)
	if !ok {
		t.Fatalf("column %q not found in %v", name, ds.Names())
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, ok := v.Float()
		if !ok {
			t.Fatalf("%s[%d] = %#v, want number", name, i, v)
		}
		out[i] = f
	}
	return out
}

func entriesFor(l Log, column string) []Entry {
	var out []Entry
	for _, e := range l {
		src, _ := e.Parameters.Get("source")
		col, _ := e.Parameters.Get("column")
		if src == column || col == column {
			out = append(out, e)
		}
	}
	return out
}

func TestApplyColumnLayout(t *testing.T) {
	ds := dataset.New()
	ds.Set("A", []dataset.Value{dataset.Num(1), dataset.Num(2), dataset.Null()})
	ds.Set("B", []dataset.Value{dataset.Str("x"), dataset.Str("y"), dataset.Str("z")})

	res, err := Apply(ds, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := strings.Join(res.ProcessedData.Names(), ",")
	if got != "A,A_standardized,A_was_missing,B,B_was_missing" {
		t.Fatalf("columns = %s", got)
	}
	if a := floats(t, res.ProcessedData, "A"); a[2] != 1.5 {
		t.Fatalf("A imputed = %v, want median 1.5 at index 2", a)
	}
	if m := floats(t, res.ProcessedData, "A_was_missing"); m[0] != 0 || m[2] != 1 {
		t.Fatalf("A indicator = %v", m)
	}
	wantSteps := "imputation,outlier_clip,standardization,column_generation,imputation,column_generation"
	if got := strings.Join(res.Log.Steps(), ","); got != wantSteps {
		t.Fatalf("steps = %s", got)
	}
	if mc, _ := res.Log[0].Parameters.Get("missingCount"); mc != 1 {
		t.Fatalf("A missingCount = %v", mc)
	}
	if b, _ := res.ProcessedData.Column("B"); b[0].String() != "x" {
		t.Fatalf("B should be unchanged, got %v", b)
	}
}

func TestApplyInvalidAndEmpty(t *testing.T) {
	if _, err := Apply(nil, Options{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil dataset err = %v", err)
	}
	res, err := Apply(dataset.New(), Options{})
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	b, _ := json.Marshal(res)
	if string(b) != `{"processedData":{},"log":[]}` {
		t.Fatalf("empty result = %s", b)
	}
}

func TestApplyConstantInexactColumn(t *testing.T) {
	ds := dataset.New()
	ds.Set("E", nums(0.1, 0.1, 0.1))
	res, err := Apply(ds, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, z := range floats(t, res.ProcessedData, "E_standardized") {
		if z != 0 {
			t.Fatalf("standardized = %v, want zeros", z)
		}
	}
	for _, e := range res.Log {
		if e.Step != StepStandardization {
			continue
		}
		if sd, ok := e.Parameters.Float("stdDev"); !ok || sd != 0 {
			t.Fatalf("stdDev = %v (%v)", sd, ok)
		}
		if m, ok := e.Parameters.Float("mean"); !ok || m != 0.1 {
			t.Fatalf("mean = %v (%v)", m, ok)
		}
	}
}

func TestApplyZeroVariance(t *testing.T) {
	ds := dataset.New()
	ds.Set("D", nums(5, 5, 5))
	res, err := Apply(ds, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, z := range floats(t, res.ProcessedData, "D_standardized") {
		if z != 0 {
			t.Fatalf("standardized = %v, want zeros", z)
		}
	}
	var std []Entry
	for _, e := range res.Log {
		if e.Step == StepStandardization {
			std = append(std, e)
		}
	}
	if len(std) != 1 {
		t.Fatalf("standardization entries = %d", len(std))
	}
	if sd, ok := std[0].Parameters.Float("stdDev"); !ok || sd != 0 {
		t.Fatalf("stdDev = %v (%v)", sd, ok)
	}
	if !strings.Contains(std[0].Description, "standard deviation is 0") {
		t.Fatalf("description = %q", std[0].Description)
	}
}

func TestApplyCleanColumnIsUnchanged(t *testing.T) {
	ds := dataset.New()
	ds.Set("C", nums(3, 1, 2, 4))
	res, err := Apply(ds, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	imp := res.Log[0]
	if imp.Step != StepImputation {
		t.Fatalf("first step = %s", imp.Step)
	}
	if mc, _ := imp.Parameters.Get("missingCount"); mc != 0 {
		t.Fatalf("missingCount = %v", mc)
	}
	if !strings.Contains(imp.Description, "no missing values") {
		t.Fatalf("description = %q", imp.Description)
	}
	got := floats(t, res.ProcessedData, "C")
	for i, want := range []float64{3, 1, 2, 4} {
		if got[i] != want {
			t.Fatalf("C = %v", got)
		}
	}
}

func TestApplyClipsOutliersIdempotently(t *testing.T) {
	ds := dataset.New()
	ds.Set("X", nums(1, 2, 3, 4, 100))
	res, err := Apply(ds, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	clip := res.Log[1]
	if clip.Step != StepOutlierClip {
		t.Fatalf("second step = %s", clip.Step)
	}
	upper, _ := clip.Parameters.Float("upperBound")
	lower, _ := clip.Parameters.Float("lowerBound")
	if upper != 7 || lower != -1 {
		t.Fatalf("bounds = [%v, %v], want [-1, 7]", lower, upper)
	}
	first := floats(t, res.ProcessedData, "X")
	if first[4] != 7 {
		t.Fatalf("clipped = %v", first)
	}

	again := dataset.New()
	again.Set("X", nums(first...))
	res2, err := Apply(again, Options{})
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	second := floats(t, res2.ProcessedData, "X")
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("clipping changed on rerun: %v -> %v", first, second)
		}
	}

	once := Clip([]float64{-5, 0, 5, 50}, -1, 7)
	twice := Clip(once, -1, 7)
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("Clip not idempotent: %v vs %v", once, twice)
		}
	}
}

func TestApplyStandardizes(t *testing.T) {
	ds := dataset.New()
	ds.Set("S", nums(1, 3, 1, 3))
	res, err := Apply(ds, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	z := floats(t, res.ProcessedData, "S_standardized")
	if math.Abs(z[0]-(-1)) > 1e-12 || math.Abs(z[3]-1) > 1e-12 {
		t.Fatalf("z = %v", z)
	}
	e := entriesFor(res.Log, "S_standardized")
	if len(e) != 1 || e[0].Description != "S_standardized: z-score with mean 2 and standard deviation 1." {
		t.Fatalf("standardization entry = %+v", e)
	}
}

func TestApplyPadsShortColumns(t *testing.T) {
	ds := dataset.New()
	ds.Set("long", nums(1, 2, 3, 4))
	ds.Set("short", []dataset.Value{dataset.Str("a")})
	res, err := Apply(ds, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	short, _ := res.ProcessedData.Column("short")
	if len(short) != 4 || short[3].String() != FillValue {
		t.Fatalf("short = %v", short)
	}
	if m := floats(t, res.ProcessedData, "short_was_missing"); m[0] != 0 || m[1] != 1 || m[3] != 1 {
		t.Fatalf("indicator = %v", m)
	}
	orig, _ := ds.Column("short")
	if len(orig) != 1 {
		t.Fatalf("input must not be modified")
	}
}

func TestApplyCountsUnparseableAsImputed(t *testing.T) {
	ds := dataset.New()
	ds.Set("N", []dataset.Value{dataset.Num(1), dataset.Str("oops"), dataset.Num(3), dataset.Null()})
	res, err := Apply(ds, Options{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if mc, _ := res.Log[0].Parameters.Get("missingCount"); mc != 2 {
		t.Fatalf("imputation missingCount = %v, want 2", mc)
	}
	last := res.Log[len(res.Log)-1]
	if mc, _ := last.Parameters.Get("missingCount"); mc != 1 {
		t.Fatalf("indicator missingCount = %v, want 1", mc)
	}
	if n := floats(t, res.ProcessedData, "N"); n[1] != 2 || n[3] != 2 {
		t.Fatalf("N = %v", n)
	}
}

func TestApplyThousandsSeparator(t *testing.T) {
	ds := dataset.New()
	ds.Set("R", []dataset.Value{dataset.Str("1,000"), dataset.Str("2,000")})
	plain, _ := Apply(ds, Options{})
	if plain.Log[0].Parameters[1].Value != "fill_constant" {
		t.Fatalf("default coercion should treat R as text: %+v", plain.Log[0])
	}
	res, _ := Apply(ds, Options{Coercion: dataset.Coercion{ThousandsSeparator: ','}})
	if r := floats(t, res.ProcessedData, "R"); r[0] != 1000 || r[1] != 2000 {
		t.Fatalf("R = %v", r)
	}
}

func TestFormatStrategyOnlyAffectsDescriptions(t *testing.T) {
	ds := dataset.New()
	ds.Set("P", nums(1, 2, 2.123456789))
	res, err := Apply(ds, Options{Format: func(float64) string { return "#" }})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !strings.Contains(res.Log[0].Description, "median #") {
		t.Fatalf("description = %q", res.Log[0].Description)
	}
	if m, _ := res.Log[0].Parameters.Float("median"); m != 2 {
		t.Fatalf("median param = %v", m)
	}
	if FormatNumber(2.123456789) != "2.1235" || FormatNumber(math.NaN()) != "n/a" || FormatNumber(-0.00001) != "0" {
		t.Fatalf("FormatNumber rounding is off")
	}
}

func TestLogJSONAndMarkdown(t *testing.T) {
	ds := dataset.New()
	ds.Set("A", nums(1, 2))
	res, _ := Apply(ds, Options{})
	b, err := json.Marshal(res.Log[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"step":"imputation","description":"A: no missing values detected (median 1.5).","parameters":{"column":"A","method":"median","median":1.5,"missingCount":0}}`
	if string(b) != want {
		t.Fatalf("entry json = %s", b)
	}
	nan, _ := json.Marshal(Params{{"mean", math.NaN()}})
	if string(nan) != `{"mean":null}` {
		t.Fatalf("non-finite param = %s", nan)
	}
	md := res.Log.Markdown()
	if !strings.HasPrefix(md, "[PREPROCESSING LOG]\n1. [imputation] A:") {
		t.Fatalf("markdown = %s", md)
	}
}

func TestApplyLogsSummary(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ds := dataset.New()
	ds.Set("A", nums(1, 2))
	if _, err := Apply(ds, Options{Logger: zap.New(core)}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if logs.FilterMessage("Column processed").Len() != 1 {
		t.Fatalf("expected one column debug line")
	}
	done := logs.FilterMessage("Preprocessing finished").All()
	if len(done) != 1 || done[0].ContextMap()["outputColumns"] != int64(3) {
		t.Fatalf("summary log = %+v", done)
	}
}
