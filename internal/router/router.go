package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/AG-1laksh/JanPath-sub001/internal/config"
	"github.com/AG-1laksh/JanPath-sub001/internal/events"
	"github.com/AG-1laksh/JanPath-sub001/internal/handlers"
	"github.com/AG-1laksh/JanPath-sub001/internal/middleware"
	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/repository/postgres"
	"github.com/AG-1laksh/JanPath-sub001/internal/service"
)

func New(log zerolog.Logger, db *pgxpool.Pool, cfg config.Config, hub *events.Hub, bus events.Publisher) http.Handler {
	r := chi.NewRouter()

	// Repos
	userRepo := postgres.NewUserRepo(db)
	grievanceRepo := postgres.NewGrievanceRepo(db)
	requestRepo := postgres.NewRequestRepo(db)

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(middleware.WithAuth(log, cfg, userRepo))

	// Services + handlers
	authSvc := service.NewAuthService(userRepo, cfg.SessionSecret)
	grievanceSvc := service.NewGrievanceService(grievanceRepo, userRepo, bus)
	requestSvc := service.NewRequestService(requestRepo, grievanceRepo, userRepo, bus)

	ah := handlers.NewAuthHTTP(authSvc, userRepo)
	gh := handlers.NewGrievanceHTTP(grievanceSvc, grievanceRepo)
	rh := handlers.NewRequestHTTP(requestSvc)
	uh := handlers.NewUserHTTP(userRepo)
	rp := handlers.NewReportsHTTP(grievanceRepo)
	ws := handlers.NewWSHTTP(hub, grievanceRepo, requestRepo, userRepo, cfg.SessionSecret, log)

	// Health
	r.Get("/healthz", handlers.Health())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", ah.Register())
		r.Post("/login", ah.Login())
		r.Post("/logout", ah.Logout())
		r.Get("/me", ah.Me())
	})

	r.Route("/api/grievances", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", gh.List())
		r.Post("/", gh.Create())
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", gh.Get())
			r.Get("/logs", gh.Logs())
			r.With(middleware.RequireRoles(models.RoleAdmin)).Post("/assign", gh.Assign())
			r.With(middleware.RequireRoles(models.RoleAdmin, models.RoleWorker)).Post("/status", gh.UpdateStatus())
			r.With(middleware.RequireRoles(models.RoleAdmin)).Post("/reject", gh.Reject())
			r.With(middleware.RequireRoles(models.RoleAdmin)).Post("/close", gh.Close())
		})
	})

	r.Route("/api/worker-requests", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", rh.ListWorkerRequests())
		r.With(middleware.RequireRoles(models.RoleWorker)).Post("/", rh.CreateWorkerRequest())
		r.With(middleware.RequireRoles(models.RoleAdmin)).Post("/{id}/approve", rh.ApproveWorkerRequest())
		r.With(middleware.RequireRoles(models.RoleAdmin)).Post("/{id}/reject", rh.RejectWorkerRequest())
	})

	r.Route("/api/worker-signup-requests", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRoles(models.RoleUser)).Post("/", rh.CreateSignupRequest())
		r.With(middleware.RequireRoles(models.RoleAdmin)).Get("/", rh.ListSignupRequests())
		r.With(middleware.RequireRoles(models.RoleAdmin)).Post("/{id}/approve", rh.DecideSignupRequest(true))
		r.With(middleware.RequireRoles(models.RoleAdmin)).Post("/{id}/reject", rh.DecideSignupRequest(false))
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRoles(models.RoleAdmin)).Get("/", uh.List())
		r.With(middleware.RequireSelfOrRoles(models.RoleAdmin)).Get("/{id}", uh.Get())
		r.With(middleware.RequireRoles(models.RoleAdmin)).Patch("/{id}/role", uh.UpdateRole())
	})

	r.With(middleware.RequireAuth, middleware.RequireRoles(models.RoleAdmin)).
		Get("/api/reports/summary", rp.Summary())

	// Live subscriptions; does its own auth to support ?token=.
	r.Get("/api/ws", ws.Subscribe())

	return r
}
