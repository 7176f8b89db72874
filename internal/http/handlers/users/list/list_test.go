package list

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/users-service/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*models.User)
	return list, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestListHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything).Return([]*models.User{
		{ID: "u-1", Email: "a@example.com", PasswordHash: "h1", Role: models.RoleAdmin, IsActive: true},
		{ID: "u-2", Email: "b@example.com", PasswordHash: "h2", Role: models.RoleUser},
	}, nil)

	rr := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var got []models.PublicUser
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "u-1", got[0].ID)
	assert.False(t, got[1].IsActive)
	assert.NotContains(t, rr.Body.String(), "h1")
}

func TestListHandler_Empty(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything).Return([]*models.User{}, nil)

	rr := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListHandler_Error(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything).Return(nil, errors.New("db down"))

	rr := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
