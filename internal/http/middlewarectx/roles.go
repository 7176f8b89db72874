package middlewarectx

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/users-service/internal/http/response"
	"github.com/magabrotheeeer/users-service/internal/lib/apperr"
	"github.com/magabrotheeeer/users-service/internal/models"
)

// RequireRoles пропускает запрос, только если роль вызывающего входит в roles.
// Должен стоять после Authenticate.
func RequireRoles(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireRoles"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			id, ok := IdentityFrom(r.Context())
			if !ok {
				response.Fail(w, r, log, apperr.Unauthenticated(msgTokenMissing))
				return
			}
			if !slices.Contains(roles, id.Role) {
				response.Fail(w, r, log, apperr.Forbidden(msgNotAuthorized))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OwnerOrAdmin пропускает администратора и владельца ресурса, чей идентификатор
// совпадает с параметром маршрута param.
func OwnerOrAdmin(log *slog.Logger, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.OwnerOrAdmin"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			id, ok := IdentityFrom(r.Context())
			if !ok {
				response.Fail(w, r, log, apperr.Unauthenticated(msgTokenMissing))
				return
			}
			if !id.IsAdmin() && id.ID != chi.URLParam(r, param) {
				response.Fail(w, r, log, apperr.Forbidden(msgNotAuthorized))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
