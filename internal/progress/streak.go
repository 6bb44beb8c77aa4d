package progress

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const dayFormat = "2006-01-02"

// ErrInvalidDate is returned when a completion date cannot be parsed.
// Malformed input is a caller bug; it is never coerced to a default day.
var ErrInvalidDate = errors.New("invalid completion date")

type Streaks struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// ComputeStreaks computes the current and longest consecutive-day streaks for
// one habit. All dates are normalized to UTC calendar days and deduplicated
// before counting. The current streak is anchored at the asOf day: a habit not
// yet completed today is still on streak as long as yesterday was completed.
func ComputeStreaks(dates []string, asOf time.Time) (Streaks, error) {
	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		day, err := NormalizeDay(d)
		if err != nil {
			return Streaks{}, err
		}
		days[day] = struct{}{}
	}
	if len(days) == 0 {
		return Streaks{}, nil
	}

	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		t, _ := time.ParseInLocation(dayFormat, d, time.UTC)
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	anchor := asOf.UTC().Truncate(24 * time.Hour)
	if _, ok := days[anchor.Format(dayFormat)]; !ok {
		// A miss today does not break the streak yet; a miss yesterday does.
		anchor = anchor.AddDate(0, 0, -1)
	}
	for {
		if _, ok := days[anchor.Format(dayFormat)]; !ok {
			break
		}
		current++
		anchor = anchor.AddDate(0, 0, -1)
	}

	return Streaks{Current: current, Longest: longest}, nil
}

// NormalizeDay truncates a date string to its UTC calendar day. It accepts the
// canonical YYYY-MM-DD form as well as RFC3339 timestamps.
func NormalizeDay(s string) (string, error) {
	if t, err := time.ParseInLocation(dayFormat, s, time.UTC); err == nil {
		return t.Format(dayFormat), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(dayFormat), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
