package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"betterr/internal/auth"
	"betterr/internal/category"
	"betterr/internal/config"
	"betterr/internal/habit"
	"betterr/internal/http/handler"
	mw "betterr/internal/http/middleware"
	"betterr/internal/insight"
	"betterr/internal/task"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authSvc := auth.NewService(db, jwtSvc)
	taskSvc := task.NewService(db)
	habitSvc := &habit.Service{DB: db}
	gen := task.NewGenerator(db)

	ah := &handler.AuthHandler{Svc: authSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{Svc: authSvc}
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))
		r.Get("/me", me.Me)
		r.Put("/profile/preferences", me.UpdatePreferences)
	})

	ch := &handler.CategoryHandler{Svc: category.NewService(db)}
	r.Route("/categories", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", ch.List)
		r.Post("/", ch.Create)
		r.Patch("/{id}", ch.Update)
		r.Delete("/{id}", ch.Delete)
	})

	th := &handler.TaskHandler{Svc: taskSvc}
	r.Route("/tasks", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", th.Create)
		r.Get("/", th.List)
		r.Get("/{id}", th.Get)
		r.Patch("/{id}", th.Update)
		r.Delete("/{id}", th.Delete)
		r.Post("/{id}/toggle", th.Toggle)
	})

	rh := &handler.RecurringHandler{Svc: taskSvc, Gen: gen, WindowDays: cfg.GenerateWindowDays}
	r.Route("/recurring-tasks", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", rh.Create)
		r.Get("/", rh.List)
		r.Get("/{id}", rh.Get)
		r.Patch("/{id}", rh.Update)
		r.Delete("/{id}", rh.Delete)
		r.Post("/{id}/pause", rh.Pause)
		r.Post("/{id}/resume", rh.Resume)
		r.Post("/{id}/archive", rh.Archive)
		r.Get("/{id}/describe", rh.Describe)
	})

	hh := &handler.HabitHandler{Svc: habitSvc, Users: authSvc}
	r.Route("/habits", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", hh.Create)
		r.Get("/", hh.List)
		r.Get("/{id}", hh.Get)
		r.Patch("/{id}", hh.Update)
		r.Delete("/{id}", hh.Delete)
		r.Post("/{id}/archive", hh.Archive)
		r.Post("/{id}/toggle", hh.Toggle)
		r.Get("/{id}/logs", hh.Logs)
		r.Get("/{id}/stats", hh.Stats)
	})

	dh := &handler.DashboardHandler{
		Tasks:      taskSvc,
		Habits:     habitSvc,
		Users:      authSvc,
		Gen:        gen,
		WindowDays: cfg.GenerateWindowDays,
	}
	ih := &handler.InsightHandler{Svc: insight.NewService(db), Users: authSvc}
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))
		r.Get("/dashboard", dh.Dashboard)
		r.Get("/insights/weekly", ih.Weekly)
	})

	return r
}
