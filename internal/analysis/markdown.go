package analysis

import (
	"fmt"
	"strings"
)

// Markdown renders a compact report suitable for prompts or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.RowCount))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Columns)))
	b.WriteString(fmt.Sprintf("Valid numeric values: %d\n\n", r.TotalValidValues))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.NumericSummaries {
		b.WriteString(fmt.Sprintf("- %s: count %d, non-numeric %d", safeName(c.Name), c.Count, c.Missing))
		if c.Numeric() {
			b.WriteString(fmt.Sprintf(" | min %s, max %s, mean %s, median %s",
				fmtStat(c.Min), fmtStat(c.Max), fmtStat(c.Mean), fmtStat(c.Median)))
		} else {
			b.WriteString(" | no numeric values")
		}
		b.WriteString("\n")
	}

	if len(r.MissingSummaries) > 0 {
		b.WriteString("\n[MISSING VALUES]\n")
		b.WriteString("| column | missing | total | rate |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, m := range r.MissingSummaries {
			b.WriteString(fmt.Sprintf("| %s | %d | %d | %.1f%% |\n", safeVal(safeName(m.Name)), m.Missing, m.Total, m.Rate*100))
		}
	}

	if len(r.PreviewRows) > 0 {
		b.WriteString("\n[PREVIEW ROWS]\n")
		b.WriteString("| # |")
		for _, c := range r.Columns {
			b.WriteString(" ")
			b.WriteString(safeVal(safeName(c)))
			b.WriteString(" |")
		}
		b.WriteString("\n| --- |")
		for range r.Columns {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
		for _, row := range r.PreviewRows {
			b.WriteString(fmt.Sprintf("| %d |", row.Index))
			for _, cell := range row.Cells {
				val := cell.Value.String()
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(" ")
				b.WriteString(safeVal(val))
				b.WriteString(" |")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func fmtStat(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", *p)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
