package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseDurationExtended parses Go-style duration strings and additionally
// accepts a trailing d (days) unit, e.g. "24h", "1d", "2d12h".
func parseDurationExtended(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("duration is required")
	}
	if !strings.Contains(raw, "d") {
		return time.ParseDuration(raw)
	}

	s := raw
	neg := false
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		neg = s[0] == '-'
		s = s[1:]
	}

	idx := strings.Index(s, "d")
	numStr := s[:idx]
	rest := s[idx+1:]

	days, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}

	total := time.Duration(days * 24 * float64(time.Hour))
	if rest != "" {
		tail, err := time.ParseDuration(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		total += tail
	}
	if neg {
		total = -total
	}
	return total, nil
}
