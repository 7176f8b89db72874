// Package register реализует HTTP-обработчик регистрации пользователя.
package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/users-service/internal/http/response"
	"github.com/magabrotheeeer/users-service/internal/lib/apperr"
	"github.com/magabrotheeeer/users-service/internal/models"
	"github.com/magabrotheeeer/users-service/internal/services/users"
)

// Request — входные данные для регистрации.
type Request struct {
	FullName    string `json:"fullName" validate:"required,min=3,max=255" example:"Ann Smith"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,date" example:"1990-05-17"`
	Email       string `json:"email" validate:"required,email,max=254" example:"ann@example.com"`
	Password    string `json:"password" validate:"required,min=6" example:"secret1"`
}

// Response — ответ на успешную регистрацию.
type Response struct {
	Message string            `json:"message" example:"user registered successfully"`
	User    models.PublicUser `json:"user"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, in users.RegisterInput) (*models.User, error)
}

// Handler обрабатывает POST /users/register.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация нового пользователя
// @Description Создаёт пользователя с ролью user. Имя и email обрезаются по краям.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Email уже зарегистрирован"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.Fail(w, r, log, apperr.Validation("invalid request body"))
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Fail(w, r, log, response.ValidationError(verrs))
			return
		}
		response.Fail(w, r, log, err)
		return
	}

	dob, err := time.Parse(models.DateLayout, req.DateOfBirth)
	if err != nil {
		response.Fail(w, r, log, apperr.Validation("field dateOfBirth must be a date in format YYYY-MM-DD"))
		return
	}

	user, err := h.service.Register(r.Context(), users.RegisterInput{
		FullName:    req.FullName,
		DateOfBirth: dob,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Message: "user registered successfully",
		User:    user.Public(),
	})
}
