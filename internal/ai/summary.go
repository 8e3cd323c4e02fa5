package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/tabsight/internal/analysis"
	"github.com/KaramelBytes/tabsight/internal/dataset"
)

// SummaryPreviewRows is how many preview rows are forwarded to the model.
const SummaryPreviewRows = 5

// ErrInvalidPayload is returned when a summary request body is not valid JSON.
var ErrInvalidPayload = errors.New("summary payload is not valid JSON")

// SummaryPayload is the statistics document sent to the model.
type SummaryPayload struct {
	Columns          []string                  `json:"columns"`
	RowCount         int                       `json:"rowCount"`
	TotalValidValues int                       `json:"totalValidValues"`
	NumericSummaries []analysis.ColumnSummary  `json:"numericSummaries"`
	MissingSummaries []analysis.MissingSummary `json:"missingSummaries"`
	PreviewRows      []analysis.PreviewRow     `json:"previewRows"`
}

// NewSummaryPayload trims a report to what the model needs.
func NewSummaryPayload(rep *analysis.Report) *SummaryPayload {
	p := emptyPayload()
	if rep == nil {
		return p
	}
	p.Columns = append(p.Columns, rep.Columns...)
	p.RowCount = rep.RowCount
	p.TotalValidValues = rep.TotalValidValues
	p.NumericSummaries = append(p.NumericSummaries, rep.NumericSummaries...)
	p.MissingSummaries = append(p.MissingSummaries, rep.MissingSummaries...)
	rows := rep.PreviewRows
	if len(rows) > SummaryPreviewRows {
		rows = rows[:SummaryPreviewRows]
	}
	p.PreviewRows = append(p.PreviewRows, rows...)
	return p
}

func emptyPayload() *SummaryPayload {
	return &SummaryPayload{
		Columns:          []string{},
		NumericSummaries: []analysis.ColumnSummary{},
		MissingSummaries: []analysis.MissingSummary{},
		PreviewRows:      []analysis.PreviewRow{},
	}
}

// ParseSummaryPayload reads an untrusted payload. Unknown or mistyped fields
// fall back to zero values: non-string columns are dropped, non-numeric
// counts become 0, non-finite stats become null and a non-finite rate becomes
// 0. Column summaries are accepted under "numericSummaries" or
// "columnSummaries". Preview rows may be {index, values:{...}} or flat
// {index, column: value, ...}.
func ParseSummaryPayload(body []byte) (*SummaryPayload, error) {
	if !json.Valid(body) {
		return nil, ErrInvalidPayload
	}
	p := emptyPayload()
	top, ok := objectFields(body)
	if !ok {
		return p, nil
	}
	if items, ok := arrayItems(top.get("columns")); ok {
		for _, it := range items {
			if s, ok := asString(it); ok {
				p.Columns = append(p.Columns, s)
			}
		}
	}
	p.RowCount = asInt(top.get("rowCount"))
	p.TotalValidValues = asInt(top.get("totalValidValues"))

	summaries := top.get("numericSummaries")
	if summaries == nil {
		summaries = top.get("columnSummaries")
	}
	if items, ok := arrayItems(summaries); ok {
		for _, it := range items {
			f, ok := objectFields(it)
			if !ok {
				continue
			}
			name, _ := asString(f.get("name"))
			p.NumericSummaries = append(p.NumericSummaries, analysis.ColumnSummary{
				Name:    name,
				Count:   asInt(f.get("count")),
				Missing: asInt(f.get("missing")),
				Min:     asFinite(f.get("min")),
				Max:     asFinite(f.get("max")),
				Mean:    asFinite(f.get("mean")),
				Median:  asFinite(f.get("median")),
			})
		}
	}
	if items, ok := arrayItems(top.get("missingSummaries")); ok {
		for _, it := range items {
			f, ok := objectFields(it)
			if !ok {
				continue
			}
			name, _ := asString(f.get("name"))
			m := analysis.MissingSummary{Name: name, Total: asInt(f.get("total")), Missing: asInt(f.get("missing"))}
			if r := asFinite(f.get("rate")); r != nil {
				m.Rate = *r
			}
			p.MissingSummaries = append(p.MissingSummaries, m)
		}
	}
	if items, ok := arrayItems(top.get("previewRows")); ok {
		for _, it := range items {
			if row, ok := parsePreviewRow(it); ok {
				p.PreviewRows = append(p.PreviewRows, row)
			}
		}
	}
	return p, nil
}

func parsePreviewRow(raw json.RawMessage) (analysis.PreviewRow, bool) {
	f, ok := objectFields(raw)
	if !ok {
		return analysis.PreviewRow{}, false
	}
	row := analysis.PreviewRow{Index: asInt(f.get("index")), Cells: []analysis.Cell{}}
	cells, flat := f, true
	if nested, ok := objectFields(f.get("values")); ok {
		cells, flat = nested, false
	}
	for _, kv := range cells {
		if flat && kv.key == "index" {
			continue
		}
		var v dataset.Value
		if err := json.Unmarshal(kv.raw, &v); err != nil {
			continue
		}
		row.Cells = append(row.Cells, analysis.Cell{Column: kv.key, Value: v})
	}
	return row, true
}

type field struct {
	key string
	raw json.RawMessage
}

type fields []field

func (fs fields) get(key string) json.RawMessage {
	for _, f := range fs {
		if f.key == key {
			return f.raw
		}
	}
	return nil
}

// objectFields returns the members of a JSON object in document order.
func objectFields(raw json.RawMessage) (fields, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	var out fields
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, false
		}
		out = append(out, field{key: key, raw: v})
	}
	return out, true
}

func arrayItems(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func asString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func asNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

func asInt(raw json.RawMessage) int {
	f, ok := asNumber(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func asFinite(raw json.RawMessage) *float64 {
	f, ok := asNumber(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// SummaryMessages builds the system and user messages for a summary request.
func SummaryMessages(p *SummaryPayload, language string) ([]Message, error) {
	if strings.TrimSpace(language) == "" {
		language = "English"
	}
	doc, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	system := fmt.Sprintf("You are an expert data analyst who writes concise %s summaries of datasets. "+
		"Highlight notable statistics, data quality issues, and suggested next steps.", language)
	user := fmt.Sprintf("The following JSON summarizes an uploaded tabular dataset. "+
		"Write 3-4 short bullet points in %s covering notable values, missing-data patterns, "+
		"and a useful next analysis.\n\n%s", language, doc)
	return []Message{{Role: "system", Content: system}, {Role: "user", Content: user}}, nil
}

// SummaryOptions configures one summary call.
type SummaryOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Language    string
	// OnDelta enables streaming when the runtime supports it.
	OnDelta func(string)
}

// Summarize asks rt for a natural-language summary of p. The result is
// trimmed and may be empty.
func Summarize(ctx context.Context, rt Runtime, opt SummaryOptions, p *SummaryPayload) (string, error) {
	if rt == nil {
		return "", errors.New("no runtime configured")
	}
	msgs, err := SummaryMessages(p, opt.Language)
	if err != nil {
		return "", err
	}
	model := opt.Model
	if model == "" {
		model = DefaultModel
	}
	req := GenerateRequest{Model: model, Messages: msgs, MaxTokens: opt.MaxTokens, Temperature: opt.Temperature}

	if sr, ok := rt.(StreamRuntime); ok && opt.OnDelta != nil {
		var b strings.Builder
		err := sr.GenerateStream(ctx, req, func(d string) {
			b.WriteString(d)
			opt.OnDelta(d)
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(b.String()), nil
	}
	resp, err := rt.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
