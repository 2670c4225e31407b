package query

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewBetween_RejectsInvertedRange(t *testing.T) {
	if _, err := NewBetween(day(2024, time.March, 31), day(2024, time.January, 1)); err == nil {
		t.Error("expected error for end before start")
	}
}

func TestBounds(t *testing.T) {
	now := day(2025, time.June, 15)
	between, err := NewBetween(day(2024, time.January, 1), day(2024, time.March, 31))
	if err != nil {
		t.Fatalf("NewBetween failed: %v", err)
	}
	lastMonths, err := NewRelative(Months, 3, Past)
	if err != nil {
		t.Fatalf("NewRelative failed: %v", err)
	}
	q3, err := NewInQuarter(2024, 3)
	if err != nil {
		t.Fatalf("NewInQuarter failed: %v", err)
	}

	tests := []struct {
		name      string
		temporal  Temporal
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"before is open below", NewBefore(day(2024, time.March, 1)), time.Time{}, day(2024, time.March, 1)},
		{"after is open above", NewAfter(day(2025, time.January, 1)), day(2025, time.January, 1), time.Time{}},
		// The end date names a whole day, so the window runs through it.
		{"between includes the end day", between, day(2024, time.January, 1), day(2024, time.April, 1)},
		{"relative past", lastMonths, now.AddDate(0, 0, -90), now},
		{"quarter", q3, day(2024, time.July, 1), day(2024, time.October, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.temporal.Bounds(now)
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("Bounds = [%v, %v), want [%v, %v)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestBounds_ContentOnEndDayFallsInsideWindow(t *testing.T) {
	between, err := NewBetween(day(2024, time.January, 1), day(2024, time.March, 31))
	if err != nil {
		t.Fatalf("NewBetween failed: %v", err)
	}

	start, end := between.Bounds(day(2025, time.June, 15))
	published := time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC)
	if published.Before(start) || !published.Before(end) {
		t.Errorf("noon on the end day must fall inside [%v, %v)", start, end)
	}
}
