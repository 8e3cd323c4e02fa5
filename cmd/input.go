package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/tabsight/internal/dataset"
	"github.com/spf13/pflag"
)

// inputFlags are the dataset-reading flags shared by stats, preprocess, plot
// and summarize.
type inputFlags struct {
	delimiter  string
	thousands  string
	sheetName  string
	sheetIndex int
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: , ; tab | (default: sniff from header)")
	fs.StringVar(&f.thousands, "thousands", "", "thousands separator stripped before parsing numbers: , . space ' (default from config, else none)")
	fs.StringVar(&f.sheetName, "sheet-name", "", "XLSX sheet name (case-insensitive)")
	fs.IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX 1-based sheet index when --sheet-name is empty")
}

func (f *inputFlags) loadOptions() (dataset.LoadOptions, error) {
	delim, ok := dataset.ParseDelimiter(f.delimiter)
	if !ok {
		return dataset.LoadOptions{}, fmt.Errorf("unsupported --delimiter: %s (use ','|';'|'tab'|'|')", f.delimiter)
	}
	return dataset.LoadOptions{Delimiter: delim, SheetName: f.sheetName, SheetIndex: f.sheetIndex}, nil
}

// coercion applies --thousands, falling back to config thousands_separator.
func (f *inputFlags) coercion() (dataset.Coercion, error) {
	spec := f.thousands
	if spec == "" && cfg != nil {
		spec = cfg.ThousandsSeparator
	}
	sep, ok := dataset.ParseSeparator(spec)
	if !ok {
		return dataset.Coercion{}, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space'|\"'\")", spec)
	}
	return dataset.Coercion{ThousandsSeparator: sep}, nil
}

func (f *inputFlags) load(path string) (*dataset.Dataset, error) {
	opt, err := f.loadOptions()
	if err != nil {
		return nil, err
	}
	ds, err := dataset.LoadFile(path, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return ds, nil
}

// expandInputs resolves globs, keeps literal paths that exist and drops
// duplicates. The result is sorted.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("input not found: %s", arg)
			}
			matches = []string{arg}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}
