package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a float that also accepts numeric strings ("2363.64") on decode.
// Stored spreadsheet imports carry quantities and rates in either form.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null, bools and objects read as zero
		*n = 0
		return nil
	}
	*n = Number(ParseNumber(s))
	return nil
}

func (n Number) Float() float64 {
	return float64(n)
}

// ParseNumber reads a loosely formatted number; garbage reads as zero.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// AnyNumber converts a decoded JSON value to float64.
func AnyNumber(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	case Number:
		return float64(x)
	case string:
		return ParseNumber(x)
	}
	return 0
}
