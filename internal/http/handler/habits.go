package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"betterr/internal/auth"
	"betterr/internal/dateutil"
	"betterr/internal/habit"
)

type HabitHandler struct {
	Svc   *habit.Service
	Users *auth.Service
}

type habitReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Frequency   *habit.Frequency `json:"frequency"`
	Status      *habit.Status    `json:"status"`
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req habitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == nil || *req.Name == "" || req.Frequency == nil {
		http.Error(w, "name and frequency required", http.StatusBadRequest)
		return
	}

	created, err := h.Svc.Create(r.Context(), uid, habit.CreateInput{
		Name:        *req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Frequency:   *req.Frequency,
	})
	if err != nil {
		habitError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var status *habit.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := habit.Status(s)
		status = &st
	}

	habits, err := h.Svc.List(r.Context(), uid, status)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	found, err := h.Svc.Get(r.Context(), uid, id)
	if err != nil {
		habitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	var req habitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	updated, err := h.Svc.Update(r.Context(), uid, id, habit.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Frequency:   req.Frequency,
		Status:      req.Status,
	})
	if err != nil {
		habitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *HabitHandler) Archive(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	if err := h.Svc.Archive(r.Context(), uid, id); err != nil {
		habitError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	if err := h.Svc.Delete(r.Context(), uid, id); err != nil {
		habitError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle flips completion for one date (default today) and returns the log
// plus recomputed streaks.
func (h *HabitHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	// An empty body means "today".
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	today := dateutil.FromTime(time.Now())
	date := today
	if req.Date != "" {
		parsed, err := dateutil.ParseDate(req.Date)
		if err != nil {
			http.Error(w, "bad date", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	res, err := h.Svc.Toggle(r.Context(), uid, id, date, today)
	if err != nil {
		habitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *HabitHandler) Logs(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	today := dateutil.FromTime(time.Now())
	from := today.AddDays(-30)
	to := today
	if s := r.URL.Query().Get("from"); s != "" {
		d, err := dateutil.ParseDate(s)
		if err != nil {
			http.Error(w, "bad from date", http.StatusBadRequest)
			return
		}
		from = d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := dateutil.ParseDate(s)
		if err != nil {
			http.Error(w, "bad to date", http.StatusBadRequest)
			return
		}
		to = d
	}

	logs, err := h.Svc.Logs(r.Context(), uid, id, from, to)
	if err != nil {
		habitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// Stats reports streaks, the absence summary, and milestone progress.
func (h *HabitHandler) Stats(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	found, err := h.Svc.Get(r.Context(), uid, id)
	if err != nil {
		habitError(w, err)
		return
	}
	u, err := h.Users.GetUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	today := dateutil.FromTime(time.Now())
	absence, err := h.Svc.AbsenceFor(r.Context(), found, today, u.WeekStartDay())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	var nextMilestone any
	if m, ok := habit.NextMilestone(found.CurrentStreak); ok {
		nextMilestone = m
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current_streak": found.CurrentStreak,
		"best_streak":    found.BestStreak,
		"next_milestone": nextMilestone,
		"absence":        absence,
	})
}

func habitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, habit.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, habit.ErrHabitLimit):
		http.Error(w, "habit limit reached", http.StatusConflict)
	case errors.Is(err, habit.ErrEditWindowExceeded):
		http.Error(w, "date outside the edit window", http.StatusUnprocessableEntity)
	case errors.Is(err, habit.ErrInvalidFrequency):
		http.Error(w, "invalid frequency", http.StatusBadRequest)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
