package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"betterr/internal/auth"
)

type MeHandler struct {
	Svc *auth.Service
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	u, err := h.Svc.GetUser(r.Context(), uid)
	if errors.Is(err, auth.ErrUserNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, userPayload(u))
}

func (h *MeHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var prefs auth.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	u, err := h.Svc.UpdatePreferences(r.Context(), uid, prefs)
	if err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, userPayload(u))
}
