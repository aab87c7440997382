package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var sizeSuffixes = map[byte]int64{
	'B': 1,
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
}

// ParseSize parses a byte count with an optional binary suffix (B, K, M, G,
// T, case-insensitive). Fractions are allowed with a suffix, e.g. "1.5M".
// An extra trailing "B" or "iB" after the unit is accepted ("64KB", "2MiB").
func ParseSize(s string) (int64, error) {
	orig := s
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	if len(s) > 2 && strings.HasSuffix(s, "IB") {
		s = s[:len(s)-2]
	} else if len(s) > 2 && s[len(s)-1] == 'B' && sizeSuffixes[s[len(s)-2]] > 1 {
		s = s[:len(s)-1]
	}

	multiplier := int64(1)
	if m, ok := sizeSuffixes[s[len(s)-1]]; ok {
		multiplier = m
		s = s[:len(s)-1]
	}
	if s == "" {
		return 0, fmt.Errorf("invalid size: %q", orig)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", orig)
		}
		return n * multiplier, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !(f >= 0) || math.IsInf(f, 1) {
		return 0, fmt.Errorf("invalid size: %q", orig)
	}
	return int64(f * float64(multiplier)), nil
}
