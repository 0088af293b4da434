package http

import (
	"log/slog"
	"os"

	"github.com/attendly/attendance-backend-go/internal/config"
	"github.com/attendly/attendance-backend-go/internal/handler/http/middleware"
	"github.com/attendly/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	settingsHandler SettingsHandler,
	tokenHandler TokenHandler,
	userHandler UserHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Get("/events", eventsHandler.Stream)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/mark", attendanceHandler.Mark)

				// Supervisors can read exports
				r.Group(func(r chi.Router) {
					r.Use(middleware.SupervisorOrAdmin)
					r.Get("/export", attendanceHandler.Export)
				})

				r.Route("/records", func(r chi.Router) {
					r.Get("/", attendanceHandler.List)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Post("/", attendanceHandler.CreateManual)
						r.Put("/{id}", attendanceHandler.Update)
						r.Delete("/{id}", attendanceHandler.Delete)
						r.Delete("/", attendanceHandler.DeleteAll)
					})
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", settingsHandler.Get)
				r.Get("/teams/{department}", settingsHandler.GetTeam)
				r.Post("/token/validate", tokenHandler.Validate)

				// Supervisors run the kiosk display
				r.Group(func(r chi.Router) {
					r.Use(middleware.SupervisorOrAdmin)
					r.Post("/token/rotate", tokenHandler.Rotate)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Put("/", settingsHandler.Update)
					r.Put("/teams/{department}", settingsHandler.UpdateTeam)
					r.Post("/teams/rename", settingsHandler.RenameTeam)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/{userID}", userHandler.Get)
			})
		})
	})

	return r
}
