package dataset

import (
	"math"
	"strconv"
	"strings"
)

// IsMissing reports whether v counts as absent: Missing, a non-finite number,
// or blank text. Non-numeric text is not missing.
func IsMissing(v Value) bool {
	switch v.kind {
	case KindNumber:
		return math.IsNaN(v.num) || math.IsInf(v.num, 0)
	case KindText:
		return strings.TrimSpace(v.text) == ""
	default:
		return true
	}
}

// Coercion is the numeric parsing policy applied to every cell of a run.
type Coercion struct {
	// ThousandsSeparator is removed from text before parsing; 0 disables it.
	ThousandsSeparator rune
}

// ToNumeric converts v to a finite number using the zero Coercion.
func ToNumeric(v Value) (float64, bool) { return Coercion{}.ToNumeric(v) }

// ToNumeric converts v to a finite number. Text is trimmed and parsed as a
// decimal float; anything else that is not a finite Number fails.
func (c Coercion) ToNumeric(v Value) (float64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	case KindText:
		raw := strings.TrimSpace(v.text)
		if raw == "" {
			return 0, false
		}
		if c.ThousandsSeparator != 0 {
			raw = strings.ReplaceAll(raw, string(c.ThousandsSeparator), "")
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Numbers returns the values of vals that coerce, in order.
func (c Coercion) Numbers(vals []Value) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if f, ok := c.ToNumeric(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// ParseSeparator maps a CLI/config spelling to a thousands separator.
func ParseSeparator(s string) (rune, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return 0, true
	case ",", "comma":
		return ',', true
	case ".", "dot":
		return '.', true
	case "space":
		return ' ', true
	case "'", "apostrophe":
		return '\'', true
	default:
		return 0, false
	}
}
