package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsDueOnDailyAlwaysDue(t *testing.T) {
	habit := Habit{Frequency: FrequencyDaily}
	for d := date(2024, time.January, 1); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		if !IsDueOn(habit, d) {
			t.Fatalf("daily habit not due on %s", FormatDate(d))
		}
	}
}

func TestIsDueOnWeeklyBehavesLikeDaily(t *testing.T) {
	// Weekly is due every day; the once-per-week rule was never defined upstream.
	habit := Habit{Frequency: FrequencyWeekly}
	for i := 0; i < 14; i++ {
		d := date(2024, time.March, 1).AddDate(0, 0, i)
		if !IsDueOn(habit, d) {
			t.Fatalf("weekly habit not due on %s", FormatDate(d))
		}
	}
}

func TestIsDueOnSpecificDays(t *testing.T) {
	habit := Habit{Frequency: FrequencySpecificDays, DaysOfWeek: []int{1, 3, 5}}

	// 2024-01-07 is a Sunday.
	sunday := date(2024, time.January, 7)
	expected := map[int]bool{0: false, 1: true, 2: false, 3: true, 4: false, 5: true, 6: false}
	for offset, want := range expected {
		d := sunday.AddDate(0, 0, offset)
		if got := IsDueOn(habit, d); got != want {
			t.Fatalf("weekday %d: due=%v want %v", offset, got, want)
		}
	}
}

func TestIsDueOnEmptyDaySetNeverDue(t *testing.T) {
	habit := Habit{Frequency: FrequencySpecificDays}
	for i := 0; i < 7; i++ {
		if IsDueOn(habit, date(2024, time.June, 2).AddDate(0, 0, i)) {
			t.Fatal("habit with empty day set should never be due")
		}
	}
}

func TestIsDueOnUnknownFrequencyFailsClosed(t *testing.T) {
	habit := Habit{Frequency: "fortnightly", DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6}}
	if IsDueOn(habit, date(2024, time.January, 1)) {
		t.Fatal("unknown frequency should not be due")
	}
}
