package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseCount parses a case count cell. Integral float text such as "2.0" is
// accepted because spreadsheet exports render numeric cells that way.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty count")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("non-numeric count %q", s)
		}
		n = int(f)
	}
	if n < 1 {
		return 0, fmt.Errorf("count %d is not positive", n)
	}
	return n, nil
}

// ParseFlag interprets a yes/no spreadsheet cell.
func ParseFlag(v *string) bool {
	if v == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*v)) {
	case "true", "yes", "y", "1", "x":
		return true
	}
	return false
}

// RoundHalfUp rounds a non-negative value to the nearest integer with halves
// rounded up.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// OptFloat parses optional numeric directory text. Blank or non-numeric
// input yields nil.
func OptFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// OptInt parses optional integer directory text, accepting integral floats.
func OptInt(s string) *int {
	f := OptFloat(s)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}
