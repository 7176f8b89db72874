package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/users-service/internal/http/response"
	"github.com/magabrotheeeer/users-service/internal/lib/apperr"
	"github.com/magabrotheeeer/users-service/internal/models"
	"github.com/magabrotheeeer/users-service/internal/services/users"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, in users.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// longEmail возвращает синтаксически корректный адрес длиной больше 254 символов.
func longEmail() string {
	label := strings.Repeat("a", 50)
	return "ann@" + strings.Join([]string{label, label, label, label, label}, ".") + ".com"
}

func TestRegisterHandler_Success(t *testing.T) {
	svc := new(ServiceMock)
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)

	svc.On("Register", mock.Anything, users.RegisterInput{
		FullName:    "Ann Smith",
		DateOfBirth: dob,
		Email:       "ann@example.com",
		Password:    "secret1",
	}).Return(&models.User{
		ID:           "0b5e3b53-3a4f-4d8e-9b38-1b1f0a3e8e11",
		FullName:     "Ann Smith",
		DateOfBirth:  dob,
		Email:        "ann@example.com",
		PasswordHash: "hashed",
		Role:         models.RoleUser,
		IsActive:     true,
	}, nil)

	body := `{"fullName":"  Ann Smith  ","dateOfBirth":"1990-05-17","email":" ann@example.com ","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	New(newNoopLogger(), svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "hashed")
	assert.NotContains(t, rr.Body.String(), "password")

	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "user registered successfully", resp.Message)
	assert.Equal(t, "1990-05-17", resp.User.DateOfBirth)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.True(t, resp.User.IsActive)
	svc.AssertExpectations(t)
}

func TestRegisterHandler_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "invalid json",
			body:     `{"fullName":`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "invalid request body",
		},
		{
			name:     "short name after trim",
			body:     `{"fullName":"  Al  ","dateOfBirth":"1990-05-17","email":"a@b.com","password":"secret1"}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "field fullName must be at least 3 characters long",
		},
		{
			name:     "bad date",
			body:     `{"fullName":"Ann Smith","dateOfBirth":"17.05.1990","email":"a@b.com","password":"secret1"}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "field dateOfBirth must be a date in format YYYY-MM-DD",
		},
		{
			name:     "bad email",
			body:     `{"fullName":"Ann Smith","dateOfBirth":"1990-05-17","email":"nope","password":"secret1"}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "field email must be a valid email",
		},
		{
			name:     "email longer than 254 characters",
			body:     `{"fullName":"Ann Smith","dateOfBirth":"1990-05-17","email":"` + longEmail() + `","password":"secret1"}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "field email",
		},
		{
			name:     "short password",
			body:     `{"fullName":"Ann Smith","dateOfBirth":"1990-05-17","email":"a@b.com","password":"123"}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "field password must be at least 6 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			var resp response.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, response.StatusError, resp.Status)
			assert.Contains(t, resp.Error, tt.wantMsg)
			svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, apperr.Conflict("email is already registered"))

	body := `{"fullName":"Ann Smith","dateOfBirth":"1990-05-17","email":"ann@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	New(newNoopLogger(), svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "email is already registered", resp.Error)
}
