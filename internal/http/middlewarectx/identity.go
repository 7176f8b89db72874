package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/users-service/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey — ключ, под которым лежит личность вызывающего.
const IdentityKey Key = "identity"

// Identity — пользователь, от имени которого выполняется запрос.
type Identity struct {
	ID    string
	Role  models.Role
	Email string
}

// IsAdmin сообщает, является ли вызывающий администратором.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// WithIdentity кладёт личность в контекст.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom достаёт личность из контекста.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}
