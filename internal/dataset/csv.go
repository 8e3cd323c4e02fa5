package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

// Load reads a delimited file whose first record is the header. Every cell
// becomes Text; coercion decides later what is numeric.
func (csvLoader) Load(r io.Reader, filename string, opt LoadOptions) (*Dataset, error) {
	br := bufio.NewReader(r)
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(filename, br)
	}
	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, append([]string(nil), rec...))
	}
	return fromRows(header, rows), nil
}

// sniffDelimiter picks tab for .tsv files, otherwise the most frequent of
// ',', ';', '\t' in the first line, defaulting to ','.
func sniffDelimiter(filename string, br *bufio.Reader) rune {
	if strings.HasSuffix(strings.ToLower(filename), ".tsv") {
		return '\t'
	}
	peek, _ := br.Peek(64 << 10)
	line := string(peek)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestN := ',', 0
	for _, c := range []rune{',', ';', '\t'} {
		if n := strings.Count(line, string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

// WriteCSV writes ds with a header row. Columns are padded to the row count;
// Missing cells are written as empty fields.
func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	cols := ds.Columns()
	rec := make([]string, len(cols))
	for i, n := 0, ds.RowCount(); i < n; i++ {
		for j, c := range cols {
			rec[j] = At(c.Values, i).String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
