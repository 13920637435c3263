package domain

import (
	"context"
	"math"
	"time"
)

// HeatmapCell is one day in the rolling-year activity grid. Intensity is
// binary: a day is active when any habit was completed on it.
type HeatmapCell struct {
	Date      string
	Completed bool
}

// Heatmap is the rolling 365-day activity view. Cells run from the Sunday on
// or before (today - 1 year) through today, oldest first, so the grid always
// begins on a week boundary.
type Heatmap struct {
	Cells            []HeatmapCell
	TotalCompletions int     // distinct active days, not completion rows
	CompletionRate   float64 // percentage of grid days active, one decimal place
}

// Weeks partitions the cells into consecutive 7-day columns for grid
// rendering. The final week may be shorter when today is mid-week.
func (h Heatmap) Weeks() [][]HeatmapCell {
	weeks := make([][]HeatmapCell, 0, (len(h.Cells)+6)/7)
	for i := 0; i < len(h.Cells); i += 7 {
		end := i + 7
		if end > len(h.Cells) {
			end = len(h.Cells)
		}
		weeks = append(weeks, h.Cells[i:end])
	}
	return weeks
}

// BuildHeatmap derives the activity grid from the set of active dates within
// [rangeStart, today]. Pure; date comparison is date-only throughout.
func BuildHeatmap(rangeStart, today time.Time, activeDates map[string]struct{}) Heatmap {
	gridStart := rangeStart.AddDate(0, 0, -int(rangeStart.Weekday()))

	var cells []HeatmapCell
	for d := gridStart; !d.After(today); d = d.AddDate(0, 0, 1) {
		date := FormatDate(d)
		_, active := activeDates[date]
		cells = append(cells, HeatmapCell{Date: date, Completed: active})
	}

	heatmap := Heatmap{Cells: cells, TotalCompletions: len(activeDates)}
	if len(cells) > 0 {
		rate := float64(heatmap.TotalCompletions) / float64(len(cells)) * 100
		heatmap.CompletionRate = math.Round(rate*10) / 10
	}
	return heatmap
}

// YearHeatmap queries the ledger for the rolling year ending today and builds
// the habit-agnostic activity grid.
func (s *Service) YearHeatmap(ctx context.Context, userID string, today time.Time) (Heatmap, error) {
	rangeStart := today.AddDate(-1, 0, 0)

	completions, err := s.ledger.ListForRange(ctx, userID, FormatDate(rangeStart), FormatDate(today))
	if err != nil {
		return Heatmap{}, err
	}

	activeDates := make(map[string]struct{}, len(completions))
	for _, c := range completions {
		activeDates[c.Date] = struct{}{}
	}
	return BuildHeatmap(rangeStart, today, activeDates), nil
}
