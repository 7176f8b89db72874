package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/users-service/internal/lib/apperr"
)

func TestError_Status(t *testing.T) {
	tests := []struct {
		name string
		err  *apperr.Error
		want int
	}{
		{name: "validation", err: apperr.Validation("bad"), want: http.StatusBadRequest},
		{name: "conflict", err: apperr.Conflict("dup"), want: http.StatusConflict},
		{name: "unauthenticated", err: apperr.Unauthenticated("who"), want: http.StatusUnauthorized},
		{name: "forbidden", err: apperr.Forbidden("no"), want: http.StatusForbidden},
		{name: "not found", err: apperr.NotFound("gone"), want: http.StatusNotFound},
		{name: "too many requests", err: apperr.TooManyRequests("slow down"), want: http.StatusTooManyRequests},
		{name: "internal", err: apperr.Internal("boom", errors.New("cause")), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Internal("failed to load user", cause)

	assert.Equal(t, "failed to load user: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "user not found", apperr.NotFound("user not found").Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", apperr.Forbidden("no access"))

	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(wrapped))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("plain")))
}
