package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadOptions tunes how files are read into a Dataset.
type LoadOptions struct {
	// Delimiter for CSV. If 0, sniffs among ',', ';', '\t' from the header line.
	Delimiter rune
	// SheetName selects an XLSX sheet (case-insensitive).
	SheetName string
	// SheetIndex is the 1-based XLSX sheet used when SheetName is empty.
	SheetIndex int
}

// Loader reads one file format into a Dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(r io.Reader, name string, opt LoadOptions) (*Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a format no registered loader accepts.
var ErrUnsupported = errors.New("unsupported dataset format")

// Load picks a loader by filename and reads r.
func Load(r io.Reader, filename string, opt LoadOptions) (*Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(filename) {
			return l.Load(r, filename, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
}

// LoadFile opens path and reads it with the matching loader.
func LoadFile(path string, opt LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(f, path, opt)
}

// ParseDelimiter maps a CLI/form spelling to a CSV delimiter. "" means sniff.
func ParseDelimiter(s string) (rune, bool) {
	switch strings.ToLower(s) {
	case "", "auto":
		return 0, true
	case ",", "comma":
		return ',', true
	case ";", "semicolon":
		return ';', true
	case "\t", "\\t", "tab":
		return '\t', true
	case "|", "pipe":
		return '|', true
	default:
		return 0, false
	}
}

type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

func (jsonLoader) Load(r io.Reader, _ string, _ LoadOptions) (*Dataset, error) {
	return DecodeJSON(r)
}

// uniqueHeader trims header cells, names blank ones Column_N and suffixes
// repeats with .1, .2, ... so every column name is unique.
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// fromRows builds a dataset from a header and string rows. Short rows leave
// Missing cells; cells past the header are ignored.
func fromRows(header []string, rows [][]string) *Dataset {
	names := uniqueHeader(header)
	cols := make([][]Value, len(names))
	for j := range cols {
		cols[j] = make([]Value, len(rows))
	}
	for i, row := range rows {
		for j := range names {
			if j < len(row) {
				cols[j][i] = Str(row[j])
			}
		}
	}
	ds := New()
	for j, name := range names {
		ds.Set(name, cols[j])
	}
	return ds
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
	Register(jsonLoader{})
}
