package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotObject is returned when decoding a dataset from JSON that is not an object.
var ErrNotObject = errors.New("dataset must be a JSON object of columns")

// Column is a named sequence of raw cells.
type Column struct {
	Name   string
	Values []Value
}

// Dataset is an ordered set of uniquely named columns. Columns may differ in
// length; the row count is the longest column.
type Dataset struct {
	cols  []Column
	index map[string]int
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// Set stores values under name. An existing column keeps its position.
func (d *Dataset) Set(name string, values []Value) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[name]; ok {
		d.cols[i].Values = values
		return
	}
	d.index[name] = len(d.cols)
	d.cols = append(d.cols, Column{Name: name, Values: values})
}

// Column returns the values stored under name.
func (d *Dataset) Column(name string) ([]Value, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i].Values, true
}

// Columns returns the columns in declaration order. Callers must not mutate
// the returned slices.
func (d *Dataset) Columns() []Column {
	if d == nil {
		return nil
	}
	return d.cols
}

// Names returns the column names in declaration order.
func (d *Dataset) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// Len returns the number of columns.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.cols)
}

// RowCount returns the length of the longest column.
func (d *Dataset) RowCount() int {
	n := 0
	for _, c := range d.Columns() {
		if len(c.Values) > n {
			n = len(c.Values)
		}
	}
	return n
}

// Aligned returns vals right-padded with Missing to n cells. It never truncates.
func Aligned(vals []Value, n int) []Value {
	if len(vals) >= n {
		return vals
	}
	out := make([]Value, n)
	copy(out, vals)
	return out
}

// At returns vals[i], or Missing when i is out of range.
func At(vals []Value, i int) Value {
	if i < 0 || i >= len(vals) {
		return Null()
	}
	return vals[i]
}

// MarshalJSON writes the dataset as {"column": [values...]} in column order.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range d.Columns() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		vals := c.Values
		if vals == nil {
			vals = []Value{}
		}
		b, err := json.Marshal(vals)
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", c.Name, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads {"column": [values...]} keeping key order. A column
// whose value is not an array decodes as an empty column.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	out, err := decode(dec)
	if err != nil {
		return err
	}
	*d = *out
	return nil
}

// DecodeJSON reads a single dataset object from r.
func DecodeJSON(r io.Reader) (*Dataset, error) {
	return decode(json.NewDecoder(r))
}

func decode(dec *json.Decoder) (*Dataset, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotObject
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}
	ds := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
		name, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode column %q: %w", name, err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '[' {
			ds.Set(name, []Value{})
			continue
		}
		var vals []Value
		if err := json.Unmarshal(raw, &vals); err != nil {
			return nil, fmt.Errorf("decode column %q: %w", name, err)
		}
		if vals == nil {
			vals = []Value{}
		}
		ds.Set(name, vals)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}
