package handler

import (
	"net/http"
	"time"

	"betterr/internal/auth"
	"betterr/internal/dateutil"
	"betterr/internal/insight"
)

type InsightHandler struct {
	Svc   *insight.Service
	Users *auth.Service
}

func (h *InsightHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	u, err := h.Users.GetUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	insights, err := h.Svc.WeeklyFor(r.Context(), uid.String(), dateutil.FromTime(time.Now()), u.WeekStartDay())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if insights == nil {
		insights = []insight.Insight{}
	}
	writeJSON(w, http.StatusOK, insights)
}
