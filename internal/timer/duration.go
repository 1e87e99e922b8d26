// Package timer tracks in-progress work sessions and converts them, and
// manually entered durations, into remote work logs. The single-active
// invariant lives in the store; this package drives the state machine
// Absent → Active → Stopped(unsynced) → Stopped(synced) on top of it.
package timer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Schedule is the working-time calibration: how many hours a working day
// has and how many days a working week has. "1d" and "1w" are only
// meaningful relative to these.
type Schedule struct {
	HoursPerDay float64
	DaysPerWeek float64
}

// durationPattern matches compound duration strings like "1w2.5d5.5h30m":
// any subset of week/day/hour/minute components, in that order, with "."
// or "," as the fractional separator.
var durationPattern = regexp.MustCompile(
	`^(?:(\d+(?:[.,]\d+)?)w)?(?:(\d+(?:[.,]\d+)?)d)?(?:(\d+(?:[.,]\d+)?)h)?(?:(\d+(?:[.,]\d+)?)m)?$`)

// ParseTimeSpent converts a compound duration string to seconds using
// the given schedule. At least one component with a unit is required, so
// a bare "1" is an error rather than a guess.
func ParseTimeSpent(s string, schedule Schedule) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q: expected components like 1w2d7.5h30m", s)
	}

	weeks, err := parseComponent(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	days, err := parseComponent(m[2])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	hours, err := parseComponent(m[3])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	minutes, err := parseComponent(m[4])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	if m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "" {
		return 0, fmt.Errorf("invalid duration %q: no unit given", s)
	}

	seconds := weeks*schedule.DaysPerWeek*schedule.HoursPerDay*3600 +
		days*schedule.HoursPerDay*3600 +
		hours*3600 +
		minutes*60
	return int64(math.Round(seconds)), nil
}

func parseComponent(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", s, err)
	}
	return v, nil
}

// FormatTimeSpent renders seconds as the compact "7h30m" style used in
// reports and as the human duration column of cached entries.
func FormatTimeSpent(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	switch {
	case hours == 0 && minutes == 0:
		return "0m"
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
}
