// Package parse converts the heterogeneous duration and timestamp strings the
// search API returns into canonical values. All functions are pure: same input,
// same output, no state, and no panics — malformed input degrades to nil.
package parse

import (
	"strconv"
	"strings"
	"time"
)

// DurationMinutes parses a trip duration string into total minutes.
//
// Formats are tried in order:
//  1. 'h'/'m' markers ("1h 30m", "45m", "2h") — the text before 'h' is hours,
//     the text between 'h' (or the start) and 'm' is minutes; fragments that
//     are not integers are ignored.
//  2. a colon-delimited "H:M" pair, when form 1 yields nothing.
//  3. a bare integer, taken as minutes.
//
// Returns nil for empty input, negative results, or when no format matches.
func DurationMinutes(v string) *int {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" {
		return nil
	}

	total := 0
	h := strings.IndexByte(s, 'h')
	m := strings.IndexByte(s, 'm')
	if h != -1 {
		if n, err := strconv.Atoi(strings.TrimSpace(s[:h])); err == nil {
			total += n * 60
		}
	}
	if m != -1 {
		start := 0
		if h != -1 {
			start = h + 1
		}
		if start <= m {
			if n, err := strconv.Atoi(strings.TrimSpace(s[start:m])); err == nil {
				total += n
			}
		}
	}
	if total > 0 {
		return &total
	}

	if parts := strings.SplitN(s, ":", 3); len(parts) == 2 {
		hh, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
		mm, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errH == nil && errM == nil {
			n := hh*60 + mm
			if n >= 0 {
				return &n
			}
			return nil
		}
	}

	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return &n
	}
	return nil
}

// Timestamp parses an ISO-8601 timestamp, treating a trailing 'Z' as UTC.
// Timestamps without an offset are taken as UTC. Returns nil for empty or
// malformed input.
func Timestamp(v string) *time.Time {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC); err == nil {
		return &t
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return &t
	}
	return nil
}
