package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/users-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/users-service/internal/http/handlers/users/block"
	"github.com/magabrotheeeer/users-service/internal/http/handlers/users/list"
	"github.com/magabrotheeeer/users-service/internal/http/handlers/users/login"
	"github.com/magabrotheeeer/users-service/internal/http/handlers/users/read"
	"github.com/magabrotheeeer/users-service/internal/http/handlers/users/register"
	"github.com/magabrotheeeer/users-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/users-service/internal/metrics"
	"github.com/magabrotheeeer/users-service/internal/models"
	userservice "github.com/magabrotheeeer/users-service/internal/services/users"
)

// Deps — зависимости, из которых собираются маршруты.
type Deps struct {
	Users          *userservice.Service
	Tokens         middlewarectx.TokenVerifier
	Limiter        *rate.Limiter
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	DB             health.Pinger
	// CheckActive включает проверку, что владелец токена не заблокирован.
	CheckActive bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		deps.Metrics.Middleware,
	)

	authOpts := []middlewarectx.AuthOption{middlewarectx.WithRecorder(deps.Metrics)}
	if deps.CheckActive {
		authOpts = append(authOpts, middlewarectx.WithActiveCheck(deps.Users))
	}
	authenticate := middlewarectx.Authenticate(deps.Tokens, logger, authOpts...)

	r.Route("/users", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimit(logger, deps.Limiter))
			r.Method(http.MethodPost, "/register", register.New(logger, deps.Users))
			r.Method(http.MethodPost, "/login", login.New(logger, deps.Users))
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.With(middlewarectx.RequireRoles(logger, models.RoleAdmin)).
				Method(http.MethodGet, "/", list.New(logger, deps.Users))
			r.With(middlewarectx.OwnerOrAdmin(logger, "id")).
				Method(http.MethodGet, "/{id}", read.New(logger, deps.Users))
			r.With(middlewarectx.OwnerOrAdmin(logger, "id")).
				Method(http.MethodPatch, "/{id}/block", block.New(logger, deps.Users))
		})
	})

	r.Method(http.MethodGet, "/health", health.New(logger, deps.DB))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
