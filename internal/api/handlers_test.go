package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/habits/internal/auth"
	"example.com/habits/internal/domain"
)

func newTestHandler(now time.Time) (*Handler, *mockHabitRepo, *mockLedger) {
	repo := &mockHabitRepo{}
	ledger := &mockLedger{completed: make(map[string]bool)}
	handler := NewHandler(domain.NewService(repo, ledger))
	handler.now = func() time.Time { return now }
	return handler, repo, ledger
}

func authedRequest(method, target, body string, scopes ...string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	scopeSet := make(map[string]struct{}, len(scopes))
	for _, scope := range scopes {
		scopeSet[scope] = struct{}{}
	}
	claims := &auth.Claims{
		Subject:   "user-1",
		Scopes:    scopeSet,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestCreateHabitNormalizesStaleDays(t *testing.T) {
	handler, repo, _ := newTestHandler(time.Now())

	body := `{"name":"Journal","frequency":"weekly","days_of_week":[1,3]}`
	req := authedRequest(http.MethodPost, "/v1/habits", body, auth.ScopeHabitsWrite)
	rr := httptest.NewRecorder()
	handler.habits(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp HabitView
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.DaysOfWeek) != 0 {
		t.Fatalf("expected cleared day set, got %v", resp.DaysOfWeek)
	}
	if len(repo.habits) != 1 || len(repo.habits[0].DaysOfWeek) != 0 {
		t.Fatal("persisted habit should carry the cleared day set")
	}
}

func TestCreateHabitRejectsEmptyName(t *testing.T) {
	handler, _, _ := newTestHandler(time.Now())

	req := authedRequest(http.MethodPost, "/v1/habits", `{"name":"","frequency":"daily"}`, auth.ScopeHabitsWrite)
	rr := httptest.NewRecorder()
	handler.habits(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestCreateHabitRequiresWriteScope(t *testing.T) {
	handler, _, _ := newTestHandler(time.Now())

	req := authedRequest(http.MethodPost, "/v1/habits", `{"name":"Read","frequency":"daily"}`, auth.ScopeHabitsRead)
	rr := httptest.NewRecorder()
	handler.habits(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func TestListHabitsUnauthorizedWithoutClaims(t *testing.T) {
	handler, _, _ := newTestHandler(time.Now())

	req := httptest.NewRequest(http.MethodGet, "/v1/habits", nil)
	rr := httptest.NewRecorder()
	handler.habits(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestTodayFiltersBySchedule(t *testing.T) {
	// 2024-01-03 is a Wednesday.
	wednesday := time.Date(2024, time.January, 3, 12, 0, 0, 0, time.UTC)
	handler, repo, _ := newTestHandler(wednesday)

	repo.habits = []domain.Habit{
		{ID: "h-1", UserID: "user-1", Name: "Meditate", Frequency: domain.FrequencyDaily},
		{ID: "h-2", UserID: "user-1", Name: "Swim", Frequency: domain.FrequencySpecificDays, DaysOfWeek: []int{1}},
	}

	req := authedRequest(http.MethodGet, "/v1/habits/today", "", auth.ScopeHabitsRead)
	rr := httptest.NewRecorder()
	handler.today(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp TodayResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].HabitID != "h-1" {
		t.Fatalf("expected only the daily habit, got %+v", resp.Items)
	}
	if resp.Items[0].Completed {
		t.Fatal("habit should start uncompleted")
	}
	if resp.Summary.Total != 1 || resp.Summary.ProgressPct != 0 {
		t.Fatalf("unexpected summary %+v", resp.Summary)
	}
}

func TestToggleRoundTrip(t *testing.T) {
	now := time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)
	handler, _, _ := newTestHandler(now)

	req := authedRequest(http.MethodPost, "/v1/habits/h-1/toggle", `{"date":"2024-05-06"}`, auth.ScopeHabitsWrite)
	rr := httptest.NewRecorder()
	handler.habitByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ToggleResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Completed || resp.Date != "2024-05-06" || resp.HabitID != "h-1" {
		t.Fatalf("unexpected toggle response %+v", resp)
	}

	// Toggling again returns to uncompleted.
	req = authedRequest(http.MethodPost, "/v1/habits/h-1/toggle", `{"date":"2024-05-06"}`, auth.ScopeHabitsWrite)
	rr = httptest.NewRecorder()
	handler.habitByID(rr, req)

	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Completed {
		t.Fatal("second toggle should report uncompleted")
	}
}

func TestToggleRejectsBadDate(t *testing.T) {
	handler, _, _ := newTestHandler(time.Now())

	req := authedRequest(http.MethodPost, "/v1/habits/h-1/toggle", `{"date":"06/05/2024"}`, auth.ScopeHabitsWrite)
	rr := httptest.NewRecorder()
	handler.habitByID(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestDeleteHabitNotFound(t *testing.T) {
	handler, _, _ := newTestHandler(time.Now())

	req := authedRequest(http.MethodDelete, "/v1/habits/missing", "", auth.ScopeHabitsWrite)
	rr := httptest.NewRecorder()
	handler.habitByID(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestHeatmapShape(t *testing.T) {
	// 2024-06-15 is a Saturday, closing the grid on a full week.
	today := time.Date(2024, time.June, 15, 8, 0, 0, 0, time.UTC)
	handler, _, ledger := newTestHandler(today)
	ledger.completed["user-1|h-1|2024-06-01"] = true

	req := authedRequest(http.MethodGet, "/v1/heatmap", "", auth.ScopeHabitsRead)
	rr := httptest.NewRecorder()
	handler.heatmap(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp HeatmapResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Cells)%7 != 0 {
		t.Fatalf("grid length %d not a multiple of 7", len(resp.Cells))
	}
	first, err := domain.ParseDate(resp.Cells[0].Date)
	if err != nil {
		t.Fatalf("bad first cell date: %v", err)
	}
	if first.Weekday() != time.Sunday {
		t.Fatalf("grid starts on %s, want Sunday", first.Weekday())
	}
	if resp.TotalCompletions != 1 {
		t.Fatalf("total completions = %d, want 1", resp.TotalCompletions)
	}
}

type mockHabitRepo struct {
	habits []domain.Habit
}

func (m *mockHabitRepo) Create(_ context.Context, habit domain.Habit) error {
	m.habits = append(m.habits, habit)
	return nil
}

func (m *mockHabitRepo) Update(_ context.Context, habit domain.Habit) error {
	for i := range m.habits {
		if m.habits[i].ID == habit.ID {
			m.habits[i] = habit
			return nil
		}
	}
	return domain.ErrHabitNotFound
}

func (m *mockHabitRepo) Delete(_ context.Context, userID, habitID string) (bool, error) {
	for i := range m.habits {
		if m.habits[i].ID == habitID && m.habits[i].UserID == userID {
			m.habits = append(m.habits[:i], m.habits[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockHabitRepo) Get(_ context.Context, userID, habitID string) (*domain.Habit, error) {
	for i := range m.habits {
		if m.habits[i].ID == habitID && m.habits[i].UserID == userID {
			habit := m.habits[i]
			return &habit, nil
		}
	}
	return nil, nil
}

func (m *mockHabitRepo) ListByUser(_ context.Context, userID string, _ *domain.Cursor, _ int) ([]domain.Habit, *domain.Cursor, error) {
	var out []domain.Habit
	for _, habit := range m.habits {
		if habit.UserID == userID {
			out = append(out, habit)
		}
	}
	return out, nil, nil
}

type mockLedger struct {
	completed map[string]bool
}

func ledgerKey(userID, habitID, date string) string {
	return userID + "|" + habitID + "|" + date
}

func (m *mockLedger) Toggle(_ context.Context, userID, habitID, date string) (domain.ToggleOutcome, error) {
	key := ledgerKey(userID, habitID, date)
	if m.completed[key] {
		delete(m.completed, key)
		return domain.ToggleOutcome{Completed: false}, nil
	}
	m.completed[key] = true
	return domain.ToggleOutcome{Completed: true, Created: &domain.Completion{UserID: userID, HabitID: habitID, Date: date}}, nil
}

func (m *mockLedger) ListForDate(_ context.Context, userID, date string) ([]string, error) {
	var out []string
	for key := range m.completed {
		parts := strings.SplitN(key, "|", 3)
		if parts[0] == userID && parts[2] == date {
			out = append(out, parts[1])
		}
	}
	return out, nil
}

func (m *mockLedger) ListForRange(_ context.Context, userID, startDate, endDate string) ([]domain.CompletionDay, error) {
	var out []domain.CompletionDay
	for key := range m.completed {
		parts := strings.SplitN(key, "|", 3)
		if parts[0] == userID && parts[2] >= startDate && parts[2] <= endDate {
			out = append(out, domain.CompletionDay{Date: parts[2], HabitID: parts[1]})
		}
	}
	return out, nil
}
