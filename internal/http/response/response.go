// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков: ошибок, сообщений валидации
// и статуса сервиса.
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/users-service/internal/lib/apperr"
	"github.com/magabrotheeeer/users-service/internal/lib/sl"
	"github.com/magabrotheeeer/users-service/internal/models"
)

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

const msgUnexpected = "an unexpected error occurred"

// ErrorResponse — тело ответа с ошибкой. Используется и в аннотациях @Failure.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Code   int    `json:"code" example:"400"`
	Error  string `json:"error" example:"invalid request body"`
}

// Health — тело ответа проверки живости.
type Health struct {
	Status string `json:"status" example:"OK"`
}

// Error возвращает ErrorResponse с кодом и сообщением.
func Error(code int, msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Code:   code,
		Error:  msg,
	}
}

// Fail пишет ошибку в ответ. Ошибки apperr отдают свой статус и сообщение,
// остальные превращаются в 500 без подробностей. 4xx логируются как Warn, 5xx как Error.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	code := http.StatusInternalServerError
	msg := msgUnexpected

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		code = appErr.Status()
		if appErr.Message != "" {
			msg = appErr.Message
		}
	}

	log = log.With(
		slog.Int("status", code),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Warn("request rejected", slog.String("reason", msg))
	}

	render.Status(r, code)
	render.JSON(w, r, Error(code, msg))
}

// NewValidator создаёт валидатор, который называет поля по json-тегам,
// чтобы сообщения совпадали с именами в теле запроса.
// Дополнительно регистрируется тег date: строка в формате YYYY-MM-DD.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("date", isDate)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func isDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.DateLayout, fl.Field().String())
	return err == nil
}

// ValidationError превращает ошибки валидатора в apperr.Validation.
// Каждое нарушение описывается отдельно, описания объединяются через запятую.
func ValidationError(errs validator.ValidationErrors) *apperr.Error {
	msgs := make([]string, 0, len(errs))

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s characters long", err.Field(), err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s characters long", err.Field(), err.Param()))
		case "date":
			msgs = append(msgs, fmt.Sprintf("field %s must be a date in format YYYY-MM-DD", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return apperr.Validation(strings.Join(msgs, ", "))
}
