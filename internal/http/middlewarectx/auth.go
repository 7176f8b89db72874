// Package middlewarectx содержит HTTP middleware аутентификации, авторизации
// и ограничения частоты запросов.
//
// Authenticate проверяет JWT из заголовка Authorization и кладёт личность
// пользователя в контекст. RequireRoles и OwnerOrAdmin решают, допустим ли
// запрос для этой личности.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/users-service/internal/http/response"
	"github.com/magabrotheeeer/users-service/internal/lib/apperr"
	"github.com/magabrotheeeer/users-service/internal/lib/jwt"
	"github.com/magabrotheeeer/users-service/internal/models"
)

const (
	msgTokenMissing  = "authentication token is missing"
	msgTokenInvalid  = "invalid or expired token"
	msgInvalidRole   = "invalid user role"
	msgAuthError     = "authentication error"
	msgUserInactive  = "user is blocked or no longer exists"
	msgNotAuthorized = "access denied"
)

// Причины отказа для метрик.
const (
	ReasonMissingToken = "missing_token"
	ReasonInvalidToken = "invalid_token"
	ReasonInvalidRole  = "invalid_role"
	ReasonInactiveUser = "inactive_user"
	ReasonError        = "error"
)

// TokenVerifier проверяет сессионный токен.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// ActiveChecker сообщает, существует ли пользователь и активен ли он.
type ActiveChecker interface {
	IsActive(ctx context.Context, id string) (bool, error)
}

// Recorder учитывает отказы аутентификации.
type Recorder interface {
	AuthRejected(reason string)
}

type authOptions struct {
	active   ActiveChecker
	recorder Recorder
}

// AuthOption настраивает Authenticate.
type AuthOption func(*authOptions)

// WithActiveCheck включает проверку, что пользователь из токена всё ещё активен.
func WithActiveCheck(checker ActiveChecker) AuthOption {
	return func(o *authOptions) {
		o.active = checker
	}
}

// WithRecorder подключает учёт отказов.
func WithRecorder(rec Recorder) AuthOption {
	return func(o *authOptions) {
		o.recorder = rec
	}
}

// Authenticate возвращает middleware, который требует заголовок
// "Authorization: Bearer <token>".
//
// Нет токена: 401. Токен не прошёл проверку или содержит неизвестную роль: 403.
// Прочие сбои (например, не задан секрет): 500.
func Authenticate(tokens TokenVerifier, log *slog.Logger, opts ...AuthOption) func(http.Handler) http.Handler {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			reject := func(reason string, err error) {
				if o.recorder != nil {
					o.recorder.AuthRejected(reason)
				}
				response.Fail(w, r, log, err)
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				reject(ReasonMissingToken, apperr.Unauthenticated(msgTokenMissing))
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				if errors.Is(err, jwt.ErrInvalidToken) {
					reject(ReasonInvalidToken, &apperr.Error{Kind: apperr.KindForbidden, Message: msgTokenInvalid, Err: err})
					return
				}
				reject(ReasonError, apperr.Internal(msgAuthError, err))
				return
			}

			role := models.Role(claims.Role)
			if !role.Valid() {
				reject(ReasonInvalidRole, apperr.Forbidden(msgInvalidRole))
				return
			}

			if o.active != nil {
				active, err := o.active.IsActive(r.Context(), claims.UserID)
				if err != nil {
					reject(ReasonError, apperr.Internal(msgAuthError, err))
					return
				}
				if !active {
					reject(ReasonInactiveUser, apperr.Forbidden(msgUserInactive))
					return
				}
			}

			ctx := WithIdentity(r.Context(), Identity{
				ID:    claims.UserID,
				Role:  role,
				Email: claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
