package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/users-service/internal/lib/sl"
	"github.com/magabrotheeeer/users-service/internal/models"
)

// UserRepository — каталог пользователей, который оборачивает CachedUsers.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
}

// CachedUsers кэширует поиск пользователя по идентификатору (cache-aside).
// Хэш пароля в кэш не попадает, так что записи из кэша годятся только для
// чтения профиля и проверки статуса, но не для входа. Вход идёт через FindByEmail
// мимо кэша. Сбои Redis логируются, запрос уходит в каталог.
type CachedUsers struct {
	next  UserRepository
	cache *Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedUsers создаёт кэширующую обёртку.
func NewCachedUsers(next UserRepository, cache *Cache, ttl time.Duration, log *slog.Logger) *CachedUsers {
	return &CachedUsers{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log.With(slog.String("component", "cache.users")),
	}
}

func userKey(id string) string {
	return "user:" + id
}

// FindByID сначала смотрит в кэш, при промахе читает каталог и кладёт результат в кэш.
func (c *CachedUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	var cached models.User
	found, err := c.cache.Get(ctx, userKey(id), &cached)
	if err != nil {
		c.log.Warn("cache read failed", slog.String("user_id", id), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	u, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, userKey(id), u, c.ttl); err != nil {
		c.log.Warn("cache write failed", slog.String("user_id", id), sl.Err(err))
	}
	return u, nil
}

// UpdateUser обновляет каталог и сбрасывает запись в кэше.
func (c *CachedUsers) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	u, err := c.next.UpdateUser(ctx, id, upd)
	if invErr := c.cache.Invalidate(ctx, userKey(id)); invErr != nil {
		c.log.Warn("cache invalidation failed", slog.String("user_id", id), sl.Err(invErr))
	}
	return u, err
}

func (c *CachedUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.next.FindByEmail(ctx, email)
}

func (c *CachedUsers) FindAll(ctx context.Context) ([]*models.User, error) {
	return c.next.FindAll(ctx)
}

func (c *CachedUsers) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	return c.next.CreateUser(ctx, user)
}
