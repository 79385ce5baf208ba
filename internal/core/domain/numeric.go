package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/go-openapi/swag"
)

// Numeric is a patch value for numeric fields. Set reports whether the field
// was present at all; Value is nil when it was present but empty or not a number.
type Numeric struct {
	Set   bool
	Value *float64
}

func NumberOf(v float64) Numeric {
	return Numeric{Set: true, Value: swag.Float64(v)}
}

func NullNumber() Numeric {
	return Numeric{Set: true}
}

// ParseNumeric converts form input. Blank and non-numeric text become null.
func ParseNumeric(s string) Numeric {
	return Numeric{Set: true, Value: parseFloat(s)}
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value = nil

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n.Value = parseFloat(s)
		return nil
	}
	// booleans, objects and arrays are not numbers
	n.Value = parseFloat(string(data))
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// Float returns a copy of the value, nil when null.
func (n Numeric) Float() *float64 {
	if n.Value == nil {
		return nil
	}
	return swag.Float64(*n.Value)
}

// Int returns the value rounded to the nearest integer, nil when null.
func (n Numeric) Int() *int64 {
	if n.Value == nil {
		return nil
	}
	return swag.Int64(int64(math.Round(*n.Value)))
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return swag.Float64(v)
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return swag.Float64(*v)
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	return swag.Int64(*v)
}
