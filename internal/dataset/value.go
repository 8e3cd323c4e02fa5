package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single raw cell: a number, a piece of text, or nothing.
// The zero Value is Missing.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Num returns a Number value. Non-finite numbers are kept as-is and reported
// missing by IsMissing.
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// Str returns a Text value.
func Str(s string) Value { return Value{kind: KindText, text: s} }

// Null returns the Missing value.
func Null() Value { return Value{} }

func (v Value) Kind() Kind { return v.kind }

// Float returns the number held by a Number value.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the string held by a Text value.
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// String renders the value for display; Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatFloat(v.num)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// FormatFloat prints f in the shortest form that round-trips.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// MarshalJSON encodes numbers as JSON numbers (non-finite as null), text as
// strings and Missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON value. Booleans, objects and arrays are kept
// as Text holding their compact JSON form.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("decode value: empty input")
	}
	switch b[0] {
	case 'n':
		*v = Null()
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode value: %w", err)
		}
		*v = Str(s)
		return nil
	case '{', '[', 't', 'f':
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return fmt.Errorf("decode value: %w", err)
		}
		*v = Str(buf.String())
		return nil
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return fmt.Errorf("decode value: %w", err)
		}
		*v = Num(f)
		return nil
	}
}
