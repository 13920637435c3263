package domain

import (
	"context"
	"testing"
	"time"
)

func TestBuildHeatmapGridStartsOnSunday(t *testing.T) {
	// 2024-03-15 is a Friday; one year earlier is also mid-week.
	today := date(2024, time.March, 15)
	heatmap := BuildHeatmap(today.AddDate(-1, 0, 0), today, nil)

	first, err := ParseDate(heatmap.Cells[0].Date)
	if err != nil {
		t.Fatalf("bad first cell date: %v", err)
	}
	if first.Weekday() != time.Sunday {
		t.Fatalf("grid starts on %s, want Sunday", first.Weekday())
	}

	last := heatmap.Cells[len(heatmap.Cells)-1]
	if last.Date != FormatDate(today) {
		t.Fatalf("grid ends on %s, want %s", last.Date, FormatDate(today))
	}
}

func TestBuildHeatmapWeeksAreSevenDayColumns(t *testing.T) {
	today := date(2024, time.March, 15)
	heatmap := BuildHeatmap(today.AddDate(-1, 0, 0), today, nil)

	weeks := heatmap.Weeks()
	for i, week := range weeks[:len(weeks)-1] {
		if len(week) != 7 {
			t.Fatalf("week %d has %d days, want 7", i, len(week))
		}
	}
	if tail := weeks[len(weeks)-1]; len(tail) == 0 || len(tail) > 7 {
		t.Fatalf("tail week has %d days", len(tail))
	}
}

func TestBuildHeatmapFullWeeksWhenTodayIsSaturday(t *testing.T) {
	// 2024-06-15 is a Saturday, so the grid closes a week exactly.
	today := date(2024, time.June, 15)
	heatmap := BuildHeatmap(today.AddDate(-1, 0, 0), today, nil)
	if len(heatmap.Cells)%7 != 0 {
		t.Fatalf("grid length %d not a multiple of 7", len(heatmap.Cells))
	}
}

func TestBuildHeatmapBinaryIntensity(t *testing.T) {
	today := date(2024, time.March, 15)
	active := map[string]struct{}{
		"2024-03-10": {},
		"2024-01-01": {},
	}
	heatmap := BuildHeatmap(today.AddDate(-1, 0, 0), today, active)

	marked := 0
	for _, cell := range heatmap.Cells {
		if cell.Completed {
			marked++
			if _, ok := active[cell.Date]; !ok {
				t.Fatalf("cell %s marked active unexpectedly", cell.Date)
			}
		}
	}
	if marked != 2 {
		t.Fatalf("expected 2 active cells, got %d", marked)
	}
	if heatmap.TotalCompletions != 2 {
		t.Fatalf("total completions = %d, want 2", heatmap.TotalCompletions)
	}
}

func TestBuildHeatmapCompletionRate(t *testing.T) {
	today := date(2024, time.March, 15)
	heatmap := BuildHeatmap(today.AddDate(-1, 0, 0), today, map[string]struct{}{
		"2024-03-01": {},
		"2024-03-02": {},
		"2024-03-03": {},
	})

	if heatmap.CompletionRate < 0 || heatmap.CompletionRate > 100 {
		t.Fatalf("rate out of range: %f", heatmap.CompletionRate)
	}
	// One decimal place.
	scaled := heatmap.CompletionRate * 10
	if scaled != float64(int64(scaled)) {
		t.Fatalf("rate %f not rounded to one decimal", heatmap.CompletionRate)
	}

	empty := BuildHeatmap(today.AddDate(-1, 0, 0), today, nil)
	if empty.CompletionRate != 0 {
		t.Fatalf("rate with no completions = %f, want 0", empty.CompletionRate)
	}
}

func TestYearHeatmapQueriesInclusiveRange(t *testing.T) {
	service, _, ledger := newTestService()
	ctx := context.Background()

	// Completions on the two endpoints of a covering range.
	if _, err := service.ToggleCompletion(ctx, "user-1", "habit-1", date(2024, time.January, 1)); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if _, err := service.ToggleCompletion(ctx, "user-1", "habit-2", date(2024, time.June, 15)); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	// Another user's completion must not leak in.
	if _, err := service.ToggleCompletion(ctx, "user-2", "habit-9", date(2024, time.June, 1)); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	got, err := ledger.ListForRange(ctx, "user-1", "2024-01-01", "2024-06-15")
	if err != nil {
		t.Fatalf("range query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected exactly the two endpoint completions, got %v", got)
	}

	heatmap, err := service.YearHeatmap(ctx, "user-1", date(2024, time.June, 15))
	if err != nil {
		t.Fatalf("heatmap failed: %v", err)
	}
	if heatmap.TotalCompletions != 2 {
		t.Fatalf("total completions = %d, want 2", heatmap.TotalCompletions)
	}
}
