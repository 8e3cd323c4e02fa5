package preprocess

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Log step categories, in the order they are emitted for a numeric column.
const (
	StepImputation       = "imputation"
	StepOutlierClip      = "outlier_clip"
	StepStandardization  = "standardization"
	StepColumnGeneration = "column_generation"
)

// Param is one named value recorded with a log entry. Value is a string,
// int, float64, bool or nil.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered set of parameters.
type Params []Param

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Float returns the float64 stored under key.
func (p Params) Float(key string) (float64, bool) {
	v, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// MarshalJSON writes the parameters as an object in insertion order.
// Non-finite floats are written as null.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		val := kv.Value
		if f, ok := val.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			val = nil
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("marshal param %s: %w", kv.Key, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Entry records one decision taken by the pipeline.
type Entry struct {
	Step        string `json:"step"`
	Description string `json:"description"`
	Parameters  Params `json:"parameters"`
}

// Log is the ordered transformation history of one run.
type Log []Entry

// Markdown renders the log as a numbered list.
func (l Log) Markdown() string {
	var b strings.Builder
	b.WriteString("[PREPROCESSING LOG]\n")
	if len(l) == 0 {
		b.WriteString("(no steps)\n")
		return b.String()
	}
	for i, e := range l {
		b.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, e.Step, e.Description))
	}
	return b.String()
}

// Steps returns the step names in order.
func (l Log) Steps() []string {
	out := make([]string, len(l))
	for i, e := range l {
		out[i] = e.Step
	}
	return out
}
