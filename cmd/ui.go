package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/tabsight/internal/ai"
	"github.com/KaramelBytes/tabsight/internal/dataset"
	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
)

func setColor(enabled bool) {
	if !enabled {
		color.NoColor = true
	}
}

// okf, warnf and failf print a status line prefixed with ✓, ⚠ or ✗.
func okf(w io.Writer, format string, a ...any) {
	okColor.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", a...)
}

func warnf(w io.Writer, format string, a ...any) {
	warnColor.Fprint(w, "⚠ ")
	fmt.Fprintf(w, format+"\n", a...)
}

func failf(w io.Writer, format string, a ...any) {
	failColor.Fprint(w, "✗ ")
	fmt.Fprintf(w, format+"\n", a...)
}

// errorHint suggests a next step for errors users commonly hit.
func errorHint(err error) string {
	if h := ai.Hint(err); h != "" {
		return h
	}
	switch {
	case errors.Is(err, dataset.ErrUnsupported):
		return "supported inputs are .csv, .tsv, .xlsx and .json"
	case errors.Is(err, errNoAPIKey):
		return "export OPENROUTER_API_KEY, run 'tabsight config set api_key <key>', or use --provider ollama"
	}
	return ""
}
