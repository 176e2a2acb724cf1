package util

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	factor float64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses a human-readable byte size such as "200MB", "1.5 GB" or
// "4096". Units are binary and case-insensitive.
func ParseSize(s string) (int64, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("empty size")
	}
	factor := 1.0
	for _, u := range sizeUnits {
		if strings.HasSuffix(v, u.suffix) {
			factor = u.factor
			v = strings.TrimSpace(strings.TrimSuffix(v, u.suffix))
			break
		}
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return int64(n * factor), nil
}

// ParseSizeOr is ParseSize with a fallback for empty or malformed input.
func ParseSizeOr(s string, fallback int64) int64 {
	n, err := ParseSize(s)
	if err != nil {
		return fallback
	}
	return n
}

// MaskSecret shows the first visible characters of s for log lines. Short
// or empty values are masked completely.
func MaskSecret(s string, visible int) string {
	if len(s) <= visible {
		return "***"
	}
	return s[:visible] + "***"
}
