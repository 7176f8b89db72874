package block

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/users-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/users-service/internal/http/response"
	"github.com/magabrotheeeer/users-service/internal/lib/apperr"
	"github.com/magabrotheeeer/users-service/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Block(ctx context.Context, id, actorID string) (*models.User, error) {
	args := m.Called(ctx, id, actorID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func serve(svc Service, caller middlewarectx.Identity, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(http.MethodPatch, "/users/{id}/block", New(newNoopLogger(), svc))
	req := httptest.NewRequest(http.MethodPatch, path, nil)
	req = req.WithContext(middlewarectx.WithIdentity(req.Context(), caller))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestBlockHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Block", mock.Anything, "u-1", "admin-1").
		Return(&models.User{ID: "u-1", Role: models.RoleUser, IsActive: false}, nil)

	rr := serve(svc, middlewarectx.Identity{ID: "admin-1", Role: models.RoleAdmin}, "/users/u-1/block")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "user blocked successfully", resp.Message)
	assert.False(t, resp.User.IsActive)
	svc.AssertExpectations(t)
}

func TestBlockHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"administrator", apperr.Forbidden("cannot block an administrator"), http.StatusForbidden, "cannot block an administrator"},
		{"missing", apperr.NotFound("user not found"), http.StatusNotFound, "user not found"},
		{"no row updated", apperr.Internal("failed to update user", nil), http.StatusInternalServerError, "failed to update user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("Block", mock.Anything, "u-2", "u-2").Return(nil, tt.err)

			rr := serve(svc, middlewarectx.Identity{ID: "u-2", Role: models.RoleUser}, "/users/u-2/block")

			assert.Equal(t, tt.wantCode, rr.Code)
			var resp response.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}
