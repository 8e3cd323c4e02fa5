package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestIsMissing(t *testing.T) {
	cases := []struct {
		name string
		in   Value
		want bool
	}{
		{"null", Null(), true},
		{"nan", Num(math.NaN()), true},
		{"inf", Num(math.Inf(1)), true},
		{"empty", Str(""), true},
		{"blank", Str("  \t"), true},
		{"zero", Num(0), false},
		{"text", Str("abc"), false},
		{"numeric text", Str("12"), false},
	}
	for _, c := range cases {
		if got := IsMissing(c.in); got != c.want {
			t.Errorf("%s: IsMissing = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestToNumeric(t *testing.T) {
	cases := []struct {
		in   Value
		want float64
		ok   bool
	}{
		{Num(3.5), 3.5, true},
		{Num(math.NaN()), 0, false},
		{Str(" 42 "), 42, true},
		{Str("1e3"), 1000, true},
		{Str("-0.25"), -0.25, true},
		{Str("1,234"), 0, false},
		{Str("Infinity"), 0, false},
		{Str("abc"), 0, false},
		{Str(""), 0, false},
		{Null(), 0, false},
	}
	for _, c := range cases {
		got, ok := ToNumeric(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ToNumeric(%#v) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestToNumericThousandsSeparator(t *testing.T) {
	c := Coercion{ThousandsSeparator: ','}
	if got, ok := c.ToNumeric(Str("1,234,567.5")); !ok || got != 1234567.5 {
		t.Fatalf("with separator: got (%v, %v)", got, ok)
	}
	if _, ok := ToNumeric(Str("1,234,567.5")); ok {
		t.Fatalf("default coercion must not strip separators")
	}
	if got, ok := c.ToNumeric(Num(7)); !ok || got != 7 {
		t.Fatalf("numbers pass through: got (%v, %v)", got, ok)
	}
}

func TestParseSeparator(t *testing.T) {
	for in, want := range map[string]rune{"": 0, "none": 0, ",": ',', "comma": ',', ".": '.', "space": ' '} {
		got, ok := ParseSeparator(in)
		if !ok || got != want {
			t.Errorf("ParseSeparator(%q) = (%q, %v), want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseSeparator("x"); ok {
		t.Fatalf("expected unknown separator to fail")
	}
}

func TestDatasetJSONKeepsOrder(t *testing.T) {
	in := `{"z":[1,"a",null,true],"a":[{"k":1}],"m":"not an array"}`
	var ds Dataset
	if err := json.Unmarshal([]byte(in), &ds); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := strings.Join(ds.Names(), ","); got != "z,a,m" {
		t.Fatalf("names = %s", got)
	}
	z, _ := ds.Column("z")
	if z[0].Kind() != KindNumber || z[1].Kind() != KindText || z[2].Kind() != KindMissing {
		t.Fatalf("unexpected kinds: %#v", z)
	}
	if s, _ := z[3].Text(); s != "true" {
		t.Fatalf("bool should become text, got %q", s)
	}
	a, _ := ds.Column("a")
	if s, _ := a[0].Text(); s != `{"k":1}` {
		t.Fatalf("object should become compact text, got %q", s)
	}
	m, ok := ds.Column("m")
	if !ok || len(m) != 0 {
		t.Fatalf("non-array column should be empty, got %#v", m)
	}
	if ds.RowCount() != 4 {
		t.Fatalf("row count = %d", ds.RowCount())
	}

	out, err := json.Marshal(&ds)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"z":[1,"a",null,"true"],"a":["{\"k\":1}"],"m":[]}`
	if string(out) != want {
		t.Fatalf("marshal = %s, want %s", out, want)
	}
}

func TestDecodeJSONRejectsNonObject(t *testing.T) {
	for _, in := range []string{`[1,2]`, `null`, `"x"`, ``} {
		_, err := DecodeJSON(strings.NewReader(in))
		if !errors.Is(err, ErrNotObject) {
			t.Errorf("DecodeJSON(%q) err = %v, want ErrNotObject", in, err)
		}
	}
}

func TestSetKeepsPosition(t *testing.T) {
	ds := New()
	ds.Set("a", []Value{Num(1)})
	ds.Set("b", []Value{Num(2)})
	ds.Set("a", []Value{Num(3), Num(4)})
	if got := strings.Join(ds.Names(), ","); got != "a,b" {
		t.Fatalf("names = %s", got)
	}
	a, _ := ds.Column("a")
	if len(a) != 2 {
		t.Fatalf("a not replaced: %#v", a)
	}
	var nilDS *Dataset
	if nilDS.Len() != 0 || nilDS.RowCount() != 0 || nilDS.Names() != nil {
		t.Fatalf("nil dataset should behave as empty")
	}
}

func TestAligned(t *testing.T) {
	vals := []Value{Num(1)}
	got := Aligned(vals, 3)
	if len(got) != 3 || got[1].Kind() != KindMissing || got[2].Kind() != KindMissing {
		t.Fatalf("aligned = %#v", got)
	}
	if len(Aligned([]Value{Num(1), Num(2)}, 1)) != 2 {
		t.Fatalf("Aligned must never truncate")
	}
}

func TestLoadCSVSniffsDelimiterAndPadsRows(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sales.csv")
	content := "region;amount;amount;\n" +
		"north;1200;5;x\n" +
		"south;;7\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds, err := LoadFile(p, LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := strings.Join(ds.Names(), "|"); got != "region|amount|amount.1|Column_4" {
		t.Fatalf("names = %s", got)
	}
	amount, _ := ds.Column("amount")
	if s, _ := amount[1].Text(); s != "" || !IsMissing(amount[1]) {
		t.Fatalf("empty field should be blank text: %#v", amount[1])
	}
	last, _ := ds.Column("Column_4")
	if last[1].Kind() != KindMissing {
		t.Fatalf("short row should leave Missing, got %#v", last[1])
	}
}

func TestLoadTSVAndEmpty(t *testing.T) {
	ds, err := Load(strings.NewReader("a\tb\n1\t2\n"), "x.tsv", LoadOptions{})
	if err != nil {
		t.Fatalf("load tsv: %v", err)
	}
	if ds.Len() != 2 || ds.RowCount() != 1 {
		t.Fatalf("tsv shape = %d cols x %d rows", ds.Len(), ds.RowCount())
	}
	empty, err := Load(strings.NewReader(""), "empty.csv", LoadOptions{})
	if err != nil || empty.Len() != 0 {
		t.Fatalf("empty csv: %v, %d cols", err, empty.Len())
	}
	if _, err := Load(strings.NewReader(""), "notes.docx", LoadOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestLoadXLSXSheetSelection(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Data"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows := [][]any{{"Group", "Score"}, {"A", 10}, {"B", 12.5}}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Data", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	data := buf.Bytes()

	ds, err := Load(bytes.NewReader(data), "book.xlsx", LoadOptions{SheetName: "data"})
	if err != nil {
		t.Fatalf("load by name: %v", err)
	}
	score, _ := ds.Column("Score")
	if got, ok := ToNumeric(score[1]); !ok || got != 12.5 {
		t.Fatalf("score[1] = %v (%v)", got, ok)
	}

	byIndex, err := Load(bytes.NewReader(data), "book.xlsx", LoadOptions{SheetIndex: 2})
	if err != nil {
		t.Fatalf("load by index: %v", err)
	}
	if byIndex.Len() != 2 {
		t.Fatalf("sheet 2 columns = %d", byIndex.Len())
	}

	if _, err := Load(bytes.NewReader(data), "book.xlsx", LoadOptions{SheetName: "Missing"}); err == nil || !strings.Contains(err.Error(), "Available sheets") {
		t.Fatalf("expected sheet-not-found error, got %v", err)
	}
}

func TestWriteCSV(t *testing.T) {
	ds := New()
	ds.Set("a", []Value{Num(1.5), Null()})
	ds.Set("b", []Value{Str("x")})
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != "a,b\n1.5,x\n,\n" {
		t.Fatalf("csv = %q", got)
	}
}
