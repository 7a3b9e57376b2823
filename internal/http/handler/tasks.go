package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"betterr/internal/auth"
	"betterr/internal/task"
)

type TaskHandler struct {
	Svc *task.Service
}

type taskReq struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	CategoryID  *uuid.UUID   `json:"category_id"`
	Priority    *int         `json:"priority"`
	DueDate     *string      `json:"due_date"`
	DueTime     *string      `json:"due_time"`
	Status      *task.Status `json:"status"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Title == nil || *req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	in := task.CreateInput{
		Title:       *req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		DueDate:     req.DueDate,
		DueTime:     req.DueTime,
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	t, err := h.Svc.Create(r.Context(), uid, in)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var f task.ListFilter
	q := r.URL.Query()
	if d := q.Get("due_date"); d != "" {
		f.DueDate = &d
	}
	if c := q.Get("completed"); c != "" {
		v := c == "true"
		f.Completed = &v
	}
	if s := q.Get("status"); s != "" {
		st := task.Status(s)
		f.Status = &st
	}
	if p := q.Get("priority"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			http.Error(w, "bad priority", http.StatusBadRequest)
			return
		}
		f.Priority = &n
	}
	if hd := q.Get("has_due_date"); hd != "" {
		v := hd == "true"
		f.HasDueDate = &v
	}

	tasks, err := h.Svc.List(r.Context(), uid, f)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	t, err := h.Svc.Get(r.Context(), uid, id)
	if errors.Is(err, task.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Update edits a task. A scope query parameter (this/following/all) routes
// instance edits through the series-aware path.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	in := task.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		DueTime:     req.DueTime,
		Status:      req.Status,
	}

	var (
		t   *task.Task
		err error
	)
	if scope := r.URL.Query().Get("scope"); scope != "" {
		t, err = h.Svc.UpdateInstanceScoped(r.Context(), uid, id, task.Scope(scope), in)
	} else {
		t, err = h.Svc.Update(r.Context(), uid, id, in)
	}
	if err != nil {
		taskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	var err error
	if scope := r.URL.Query().Get("scope"); scope != "" {
		err = h.Svc.DeleteInstanceScoped(r.Context(), uid, id, task.Scope(scope))
	} else {
		err = h.Svc.Delete(r.Context(), uid, id)
	}
	if err != nil {
		taskError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	t, err := h.Svc.Toggle(r.Context(), uid, id, time.Now())
	if err != nil {
		taskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func taskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound), errors.Is(err, task.ErrTemplateNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, task.ErrNotPartOfSeries):
		http.Error(w, "task is not part of a recurring series", http.StatusBadRequest)
	case errors.Is(err, task.ErrMissingOriginalDate):
		http.Error(w, "instance has no original date", http.StatusConflict)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
