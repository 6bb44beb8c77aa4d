package progress

import (
	"errors"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeStreaksEmpty(t *testing.T) {
	s, err := ComputeStreaks(nil, day("2024-01-03"))
	if err != nil {
		t.Fatalf("ComputeStreaks: %v", err)
	}
	if s.Current != 0 || s.Longest != 0 {
		t.Fatalf("got %+v, want {0 0}", s)
	}
}

func TestComputeStreaksConsecutiveRunEndingToday(t *testing.T) {
	s, err := ComputeStreaks([]string{"2024-01-01", "2024-01-02", "2024-01-03"}, day("2024-01-03"))
	if err != nil {
		t.Fatalf("ComputeStreaks: %v", err)
	}
	if s.Current != 3 || s.Longest != 3 {
		t.Fatalf("got %+v, want {3 3}", s)
	}
}

func TestComputeStreaksMissTodayStillCounts(t *testing.T) {
	// Nothing logged on the asOf day itself; the run through yesterday holds.
	s, err := ComputeStreaks([]string{"2024-01-01", "2024-01-02", "2024-01-03"}, day("2024-01-04"))
	if err != nil {
		t.Fatalf("ComputeStreaks: %v", err)
	}
	if s.Current != 3 {
		t.Fatalf("current = %d, want 3", s.Current)
	}
}

func TestComputeStreaksGapBreaksCurrent(t *testing.T) {
	s, err := ComputeStreaks([]string{"2024-01-01", "2024-01-03"}, day("2024-02-01"))
	if err != nil {
		t.Fatalf("ComputeStreaks: %v", err)
	}
	if s.Current != 0 || s.Longest != 1 {
		t.Fatalf("got %+v, want {0 1}", s)
	}
}

func TestComputeStreaksDuplicatesCollapse(t *testing.T) {
	dates := []string{"2024-01-02", "2024-01-02", "2024-01-02T15:04:05Z", "2024-01-01"}
	s, err := ComputeStreaks(dates, day("2024-01-02"))
	if err != nil {
		t.Fatalf("ComputeStreaks: %v", err)
	}
	if s.Current != 2 || s.Longest != 2 {
		t.Fatalf("got %+v, want {2 2}", s)
	}
}

func TestComputeStreaksLongestInPast(t *testing.T) {
	dates := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-10", "2024-01-11"}
	s, err := ComputeStreaks(dates, day("2024-01-11"))
	if err != nil {
		t.Fatalf("ComputeStreaks: %v", err)
	}
	if s.Longest != 4 || s.Current != 2 {
		t.Fatalf("got %+v, want {2 4}", s)
	}
	if s.Current > s.Longest {
		t.Fatalf("current %d exceeds longest %d", s.Current, s.Longest)
	}
}

func TestComputeStreaksSingleRecentDay(t *testing.T) {
	s, err := ComputeStreaks([]string{"2024-01-03"}, day("2024-01-03"))
	if err != nil {
		t.Fatalf("ComputeStreaks: %v", err)
	}
	if s.Current != 1 || s.Longest != 1 {
		t.Fatalf("got %+v, want {1 1}", s)
	}
}

func TestComputeStreaksRejectsMalformedDate(t *testing.T) {
	_, err := ComputeStreaks([]string{"2024-01-01", "not-a-date"}, day("2024-01-03"))
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
}

func TestNormalizeDayIdempotent(t *testing.T) {
	d, err := NormalizeDay("2024-03-09T23:30:00Z")
	if err != nil {
		t.Fatalf("NormalizeDay: %v", err)
	}
	again, err := NormalizeDay(d)
	if err != nil {
		t.Fatalf("NormalizeDay: %v", err)
	}
	if d != again || d != "2024-03-09" {
		t.Fatalf("normalization not idempotent: %q then %q", d, again)
	}
}
