// Package api exposes HTTP handlers for the habit service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/habits/internal/auth"
	"example.com/habits/internal/domain"
	"example.com/habits/internal/persistence"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	now     func() time.Time
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/habits", h.habits)
	mux.HandleFunc("/v1/habits/today", h.today)
	mux.HandleFunc("/v1/habits/", h.habitByID)
	mux.HandleFunc("/v1/heatmap", h.heatmap)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) habits(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createHabit(w, r)
	case http.MethodGet:
		h.listHabits(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) habitByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/habits/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing habit id")
		return
	}

	if id, ok := strings.CutSuffix(rest, "/toggle"); ok {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.toggleCompletion(w, r, id)
		return
	}

	if strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getHabit(w, r, rest)
	case http.MethodPut:
		h.updateHabit(w, r, rest)
	case http.MethodDelete:
		h.deleteHabit(w, r, rest)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createHabit(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	var req CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	habit, err := h.service.CreateHabit(r.Context(), claims.Subject, domain.CreateHabitInput{
		Name:         req.Name,
		Frequency:    domain.Frequency(req.Frequency),
		DaysOfWeek:   req.DaysOfWeek,
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toHabitView(*habit))
}

func (h *Handler) getHabit(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	habit, err := h.service.GetHabit(r.Context(), claims.Subject, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHabitView(*habit))
}

func (h *Handler) updateHabit(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	var req UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	patch := domain.HabitPatch{
		Name:         req.Name,
		DaysOfWeek:   req.DaysOfWeek,
		ReminderTime: req.ReminderTime,
	}
	if req.Frequency != nil {
		frequency := domain.Frequency(*req.Frequency)
		patch.Frequency = &frequency
	}

	habit, err := h.service.UpdateHabit(r.Context(), claims.Subject, id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHabitView(*habit))
}

func (h *Handler) deleteHabit(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	if err := h.service.DeleteHabit(r.Context(), claims.Subject, id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listHabits(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	habits, next, err := h.service.ListHabits(r.Context(), claims.Subject, cursor, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]HabitView, 0, len(habits))
	for _, habit := range habits {
		items = append(items, toHabitView(habit))
	}

	writeJSON(w, http.StatusOK, ListHabitsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	statuses, summary, err := h.service.TodaysHabits(r.Context(), claims.Subject, h.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]TodayHabitView, 0, len(statuses))
	for _, status := range statuses {
		items = append(items, TodayHabitView{
			HabitView: toHabitView(status.Habit),
			Completed: status.Completed,
		})
	}

	writeJSON(w, http.StatusOK, TodayResponse{
		Items: items,
		Summary: TodaySummary{
			Total:       summary.Total,
			Completed:   summary.Completed,
			ProgressPct: summary.ProgressPct,
		},
	})
}

func (h *Handler) toggleCompletion(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	date := h.now()
	if r.ContentLength != 0 {
		var req ToggleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if req.Date != "" {
			parsed, err := domain.ParseDate(req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "validation_failed", "date must be YYYY-MM-DD")
				return
			}
			date = parsed
		}
	}

	outcome, err := h.service.ToggleCompletion(r.Context(), claims.Subject, id, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ToggleResponse{
		HabitID:   id,
		Date:      domain.FormatDate(date),
		Completed: outcome.Completed,
	})
}

func (h *Handler) heatmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	if !ok {
		return
	}

	heatmap, err := h.service.YearHeatmap(r.Context(), claims.Subject, h.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	cells := make([]HeatmapCellView, 0, len(heatmap.Cells))
	for _, cell := range heatmap.Cells {
		cells = append(cells, HeatmapCellView{Date: cell.Date, Completed: cell.Completed})
	}

	writeJSON(w, http.StatusOK, HeatmapResponse{
		Cells:            cells,
		TotalCompletions: heatmap.TotalCompletions,
		CompletionRate:   heatmap.CompletionRate,
	})
}

func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

// CreateHabitRequest is the payload for POST /v1/habits.
type CreateHabitRequest struct {
	Name         string `json:"name"`
	Frequency    string `json:"frequency"`
	DaysOfWeek   []int  `json:"days_of_week"`
	ReminderTime string `json:"reminder_time"`
}

// Validate ensures request correctness.
func (r CreateHabitRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Frequency) == "" {
		return errors.New("frequency is required")
	}
	return nil
}

// UpdateHabitRequest carries partial updates for PUT /v1/habits/{id}.
type UpdateHabitRequest struct {
	Name         *string `json:"name"`
	Frequency    *string `json:"frequency"`
	DaysOfWeek   *[]int  `json:"days_of_week"`
	ReminderTime *string `json:"reminder_time"`
}

// ToggleRequest selects the day for POST /v1/habits/{id}/toggle; an empty
// body toggles today.
type ToggleRequest struct {
	Date string `json:"date"`
}

// ToggleResponse reports the ledger state after a toggle.
type ToggleResponse struct {
	HabitID   string `json:"habit_id"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// HabitView exposes full details about a habit.
type HabitView struct {
	HabitID      string    `json:"habit_id"`
	Name         string    `json:"name"`
	Frequency    string    `json:"frequency"`
	DaysOfWeek   []int     `json:"days_of_week,omitempty"`
	ReminderTime string    `json:"reminder_time,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListHabitsResponse packages list results.
type ListHabitsResponse struct {
	Items      []HabitView `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// TodayHabitView pairs a due habit with its completion state.
type TodayHabitView struct {
	HabitView
	Completed bool `json:"completed"`
}

// TodaySummary carries the running completion counts for the day.
type TodaySummary struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	ProgressPct float64 `json:"progress_pct"`
}

// TodayResponse is the body for GET /v1/habits/today.
type TodayResponse struct {
	Items   []TodayHabitView `json:"items"`
	Summary TodaySummary     `json:"summary"`
}

// HeatmapCellView is one day in the rolling-year grid.
type HeatmapCellView struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// HeatmapResponse is the body for GET /v1/heatmap.
type HeatmapResponse struct {
	Cells            []HeatmapCellView `json:"cells"`
	TotalCompletions int               `json:"total_completions"`
	CompletionRate   float64           `json:"completion_rate"`
}

func writeDomainError(w http.ResponseWriter, err error) {
	var validation domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrHabitNotFound):
		writeError(w, http.StatusNotFound, "not_found", "habit not found")
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized", "no authenticated user")
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "validation_failed", validation.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toHabitView(habit domain.Habit) HabitView {
	return HabitView{
		HabitID:      habit.ID,
		Name:         habit.Name,
		Frequency:    string(habit.Frequency),
		DaysOfWeek:   habit.DaysOfWeek,
		ReminderTime: habit.ReminderTime,
		CreatedAt:    habit.CreatedAt,
		UpdatedAt:    habit.UpdatedAt,
	}
}
