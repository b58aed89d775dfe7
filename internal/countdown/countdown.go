// Package countdown converts absolute expiry instants to and from the
// human-readable countdown strings shown on the reminder panel.
package countdown

import (
	"fmt"
	"strconv"
	"strings"
)

// Expired is the sentinel countdown string for an instant that has
// already passed.
const Expired = "Expired"

// Millisecond factors for the countdown decomposition.
const (
	msPerDay    = 86_400_000
	msPerHour   = 3_600_000
	msPerMinute = 60_000
	msPerSecond = 1_000
)

// Encode renders the time remaining until expiresAt (epoch milliseconds)
// relative to now as "{d}d:{h}h:{m}m:{s}s". The seconds field is always
// present. When expiresAt <= now it returns the Expired sentinel.
func Encode(expiresAt, now int64) string {
	remaining := expiresAt - now
	if remaining <= 0 {
		return Expired
	}

	d := remaining / msPerDay
	h := (remaining % msPerDay) / msPerHour
	m := (remaining % msPerHour) / msPerMinute
	s := (remaining % msPerMinute) / msPerSecond

	return fmt.Sprintf("%dd:%dh:%dm:%ds", d, h, m, s)
}

// Parse splits a countdown string into its day/hour/minute/second
// fields. It rejects the Expired sentinel and anything that does not
// have exactly four unit-suffixed integer fields.
func Parse(s string) (days, hours, minutes, seconds int, err error) {
	if s == "" || s == Expired {
		return 0, 0, 0, 0, fmt.Errorf("not a countdown: %q", s)
	}

	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("malformed countdown %q: want 4 fields, got %d", s, len(parts))
	}

	vals := make([]int, 4)
	for i, suffix := range []string{"d", "h", "m", "s"} {
		field := strings.TrimSuffix(parts[i], suffix)
		if field == parts[i] {
			return 0, 0, 0, 0, fmt.Errorf("malformed countdown %q: field %d missing %q suffix", s, i, suffix)
		}
		v, convErr := strconv.Atoi(field)
		if convErr != nil {
			return 0, 0, 0, 0, fmt.Errorf("malformed countdown %q: %w", s, convErr)
		}
		vals[i] = v
	}

	return vals[0], vals[1], vals[2], vals[3], nil
}

// IsUrgent reports whether a countdown string indicates expiry within
// five minutes. Expired, empty, and unparseable strings are not urgent.
func IsUrgent(remaining string) bool {
	d, h, m, s, err := Parse(remaining)
	if err != nil {
		return false
	}
	return d == 0 && h == 0 && (m < 5 || (m == 5 && s <= 0))
}
