package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/users-service/internal/http/response"
	"github.com/magabrotheeeer/users-service/internal/lib/apperr"
	"github.com/magabrotheeeer/users-service/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(1).(*models.User)
	return args.String(0), u, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setup     func(m *ServiceMock)
		wantCode  int
		wantError string
		wantToken string
	}{
		{
			name: "success",
			body: `{"email":" ann@example.com ","password":"secret1"}`,
			setup: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "ann@example.com", "secret1").
					Return("jwt-token", &models.User{ID: "u-1", Email: "ann@example.com", Role: models.RoleUser, IsActive: true}, nil)
			},
			wantCode:  http.StatusOK,
			wantToken: "jwt-token",
		},
		{
			name:      "invalid json",
			body:      `not json`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid request body",
		},
		{
			name:      "email longer than 254 characters",
			body:      `{"email":"ann@` + strings.Repeat(strings.Repeat("b", 50)+".", 5) + `com","password":"secret1"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "field email",
		},
		{
			name:      "missing password",
			body:      `{"email":"ann@example.com"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "field password is a required field",
		},
		{
			name: "invalid credentials",
			body: `{"email":"ann@example.com","password":"wrong"}`,
			setup: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "ann@example.com", "wrong").
					Return("", nil, apperr.Unauthenticated("invalid credentials"))
			},
			wantCode:  http.StatusUnauthorized,
			wantError: "invalid credentials",
		},
		{
			name: "unexpected error",
			body: `{"email":"ann@example.com","password":"secret1"}`,
			setup: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "ann@example.com", "secret1").
					Return("", nil, errors.New("db exploded"))
			},
			wantCode:  http.StatusInternalServerError,
			wantError: "an unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.setup != nil {
				tt.setup(svc)
			}
			req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantError != "" {
				var resp response.ErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Contains(t, resp.Error, tt.wantError)
				return
			}
			var resp Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, "login successful", resp.Message)
			assert.Equal(t, tt.wantToken, resp.Token)
			assert.Equal(t, "u-1", resp.User.ID)
		})
	}
}
