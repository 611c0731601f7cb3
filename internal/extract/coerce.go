package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vvka-141/dwload/internal/catalog"
)

// Absent is the marker written for values that carry no data.
const Absent = ""

// coercer rewrites a single field value.
type coercer func(string) string

// NullableInt truncates a finite number to its integer part and maps
// everything else (blank, "nan", infinities, text) to Absent.
func NullableInt(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return Absent
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Absent
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return Absent
	}
	return strconv.FormatInt(int64(f), 10)
}

func coercerFor(c catalog.Coercion) (coercer, error) {
	switch c {
	case catalog.NullableInt:
		return NullableInt, nil
	default:
		return nil, fmt.Errorf("unknown coercion %q", c)
	}
}
