package folder

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var sizeRE = regexp.MustCompile(`^([0-9]+(?:\.[0-9]*)?)([kmgtp]?)(i?)[bo]?$`)

var unitPowers = map[string]int{"": 0, "k": 1, "m": 2, "g": 3, "t": 4, "p": 5}

// ParseSize normalizes a size bound to a number of bytes.
// Numbers are truncated to integers.
// Strings are read as a number optionally followed by a unit:
// k, m, g, t or p for powers of 1000,
// the same followed by i for powers of 1024,
// and an optional trailing b or o (for byte or octet).
// Case and whitespace (even inside the number, as in "10 000") are ignored.
// The second result is false when v is nil or cannot be parsed,
// which callers treat as "no bound".
func ParseSize(v interface{}) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	case string:
		return parseSizeString(v)
	}
	return 0, false
}

func parseSizeString(s string) (int64, bool) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)

	m := sizeRE.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	num, unit, binary := m[1], m[2], m[3] != ""

	base := int64(1000)
	if binary {
		base = 1024
	}
	mult := int64(1)
	for i := 0; i < unitPowers[unit]; i++ {
		mult *= base
	}

	if !strings.Contains(num, ".") {
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil || (n != 0 && mult > math.MaxInt64/n) {
			return 0, false
		}
		return n * mult, true
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	f *= float64(mult)
	if f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
