package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"betterr/internal/auth"
	"betterr/internal/category"
)

type CategoryHandler struct {
	Svc *category.Service
}

type categoryReq struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	categories, err := h.Svc.List(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	c, err := h.Svc.Create(r.Context(), uid, req.Name, req.Color)
	if err != nil {
		http.Error(w, "category already exists", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	c, err := h.Svc.Update(r.Context(), uid, id, req.Name, req.Color)
	if errors.Is(err, category.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	err := h.Svc.Delete(r.Context(), uid, id)
	if errors.Is(err, category.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
