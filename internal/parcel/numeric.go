// Package parcel decodes assessment parcel tables and writes resident masks.
package parcel

import (
	"math"
	"strconv"
	"strings"
)

// missingTokens are cell values exported by spreadsheets and dataframes for
// "no value".
var missingTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"null": true,
	".":    true,
	"-":    true,
}

var numberNoise = strings.NewReplacer(",", "", "$", "", " ", "")

// ParseNumber coerces a numeric cell that may carry thousands separators or a
// currency symbol. ok is false when the value is missing or unparseable.
func ParseNumber(s string) (v float64, ok bool) {
	s = numberNoise.Replace(strings.TrimSpace(s))
	if missingTokens[strings.ToLower(s)] {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseNonNegative returns nil for missing, unparseable or negative values.
func ParseNonNegative(s string) *float64 {
	v, ok := ParseNumber(s)
	if !ok || v < 0 {
		return nil
	}
	return &v
}

// ParseInt parses an integral value; "12.0" is accepted, "12.5" is not.
func ParseInt(s string) *int {
	v, ok := ParseNumber(s)
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return nil
	}
	i := int(v)
	return &i
}

// ParseFlag reads a yes/no style cell.
func ParseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "t", "1":
		return true
	}
	return false
}
