// Package block реализует HTTP-обработчик блокировки пользователя.
package block

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/users-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/users-service/internal/http/response"
	"github.com/magabrotheeeer/users-service/internal/models"
)

// Response — ответ на успешную блокировку.
type Response struct {
	Message string            `json:"message" example:"user blocked successfully"`
	User    models.PublicUser `json:"user"`
}

// Service описывает бизнес-логику блокировки.
type Service interface {
	Block(ctx context.Context, id, actorID string) (*models.User, error)
}

// Handler обрабатывает PATCH /users/{id}/block.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Заблокировать пользователя
// @Description Пользователь может заблокировать себя, администратор любого пользователя, кроме администраторов.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} Response "Пользователь заблокирован"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав или попытка заблокировать администратора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{id}/block [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.block"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	caller, _ := middlewarectx.IdentityFrom(r.Context())

	user, err := h.service.Block(r.Context(), id, caller.ID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user blocked", slog.String("user_id", id), slog.String("blocked_by", caller.ID))
	render.JSON(w, r, Response{
		Message: "user blocked successfully",
		User:    user.Public(),
	})
}
