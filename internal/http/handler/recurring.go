package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"betterr/internal/auth"
	"betterr/internal/dateutil"
	"betterr/internal/recurrence"
	"betterr/internal/task"
)

type RecurringHandler struct {
	Svc        *task.Service
	Gen        *task.Generator
	WindowDays int
}

type recurringReq struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Priority    *int             `json:"priority"`
	DueTime     *string          `json:"due_time"`
	Rule        *recurrence.Rule `json:"rule"`
	StartDate   *string          `json:"start_date"`
	EndType     *task.EndType    `json:"end_type"`
	EndDate     *string          `json:"end_date"`
	EndCount    *int             `json:"end_count"`
}

func (h *RecurringHandler) window() dateutil.Date {
	return dateutil.FromTime(time.Now()).AddDays(h.WindowDays)
}

func (h *RecurringHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req recurringReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Title == nil || *req.Title == "" || req.Rule == nil || req.StartDate == nil {
		http.Error(w, "title, rule and start_date required", http.StatusBadRequest)
		return
	}

	in := task.TemplateInput{
		Title:       *req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		DueTime:     req.DueTime,
		Rule:        *req.Rule,
		StartDate:   *req.StartDate,
		EndDate:     req.EndDate,
		EndCount:    req.EndCount,
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}
	if req.EndType != nil {
		in.EndType = *req.EndType
	}

	tpl, err := h.Svc.CreateTemplate(r.Context(), uid, in)
	if errors.Is(err, recurrence.ErrInvalidRule) {
		http.Error(w, "invalid recurrence rule", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	// Materialize the first window right away so the new series shows up.
	if err := h.Gen.EnsureInstances(r.Context(), uid, h.window()); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *RecurringHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	tpls, err := h.Svc.ListTemplates(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tpls)
}

func (h *RecurringHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	tpl, err := h.Svc.GetTemplate(r.Context(), uid, id)
	if errors.Is(err, task.ErrTemplateNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *RecurringHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	var req recurringReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	tpl, err := h.Svc.UpdateTemplate(r.Context(), uid, id, task.TemplateUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
		DueTime:     req.DueTime,
		Rule:        req.Rule,
		StartDate:   req.StartDate,
		EndType:     req.EndType,
		EndDate:     req.EndDate,
		EndCount:    req.EndCount,
	})
	if errors.Is(err, recurrence.ErrInvalidRule) {
		http.Error(w, "invalid recurrence rule", http.StatusBadRequest)
		return
	}
	if err != nil {
		taskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *RecurringHandler) Pause(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	tpl, err := h.Svc.Pause(r.Context(), uid, id)
	if err != nil {
		taskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *RecurringHandler) Resume(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	tpl, err := h.Svc.Resume(r.Context(), uid, id, dateutil.FromTime(time.Now()))
	if err != nil {
		taskError(w, err)
		return
	}
	if err := h.Gen.EnsureInstances(r.Context(), uid, h.window()); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *RecurringHandler) Archive(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	tpl, err := h.Svc.ArchiveTemplate(r.Context(), uid, id)
	if err != nil {
		taskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *RecurringHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	if err := h.Svc.DeleteTemplate(r.Context(), uid, id); err != nil {
		taskError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Describe renders the template's rule as a human-readable phrase.
func (h *RecurringHandler) Describe(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	tpl, err := h.Svc.GetTemplate(r.Context(), uid, id)
	if err != nil {
		taskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"description": recurrence.Describe(tpl.Rule.Data()),
	})
}
