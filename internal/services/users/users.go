// Package users содержит бизнес-логику регистрации, входа и администрирования пользователей.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/users-service/internal/lib/apperr"
	"github.com/magabrotheeeer/users-service/internal/lib/sl"
	"github.com/magabrotheeeer/users-service/internal/models"
	"github.com/magabrotheeeer/users-service/internal/storage"
)

// Routing keys событий в обменнике пользователей.
const (
	EventUserRegistered = "user.registered"
	EventUserBlocked    = "user.blocked"
)

// Сообщения, которые видит клиент.
const (
	msgInvalidCredentials = "invalid credentials"
	msgEmailTaken         = "email is already registered"
	msgUserNotFound       = "user not found"
	msgCannotBlockAdmin   = "cannot block an administrator"
	msgUpdateFailed       = "failed to update user"
)

// Repository — каталог пользователей.
type Repository interface {
	// FindByEmail возвращает пользователя по email или storage.ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByID возвращает пользователя по идентификатору или storage.ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindAll возвращает всех пользователей.
	FindAll(ctx context.Context) ([]*models.User, error)
	// CreateUser сохраняет пользователя, при занятом email возвращает storage.ErrEmailTaken.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// UpdateUser применяет изменения и возвращает обновлённую запись.
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
}

// PasswordHasher хэширует и проверяет пароли.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

// TokenIssuer выпускает сессионные токены.
type TokenIssuer interface {
	Issue(userID, role, email string) (string, error)
}

// EventPublisher отправляет доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// NoopPublisher отбрасывает события. Используется, когда брокер не настроен.
type NoopPublisher struct{}

// Publish ничего не делает.
func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// RegisterInput — проверенные данные для регистрации.
type RegisterInput struct {
	FullName    string
	DateOfBirth time.Time
	Email       string
	Password    string
}

// UserRegistered публикуется после успешной регистрации.
type UserRegistered struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurredAt"`
}

// UserBlocked публикуется после блокировки.
type UserBlocked struct {
	ID         string    `json:"id"`
	BlockedBy  string    `json:"blockedBy"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Service реализует операции над пользователями.
type Service struct {
	log    *slog.Logger
	users  Repository
	hasher PasswordHasher
	tokens TokenIssuer
	events EventPublisher
	now    func() time.Time
}

// New создаёт сервис. Если events == nil, события не отправляются.
func New(log *slog.Logger, users Repository, hasher PasswordHasher, tokens TokenIssuer, events EventPublisher) *Service {
	if events == nil {
		events = NoopPublisher{}
	}
	return &Service{
		log:    log,
		users:  users,
		hasher: hasher,
		tokens: tokens,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register создаёт пользователя с ролью user в активном состоянии.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "users.Register"

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to register user", err)
	}

	created, err := s.users.CreateUser(ctx, models.User{
		FullName:     strings.TrimSpace(in.FullName),
		DateOfBirth:  in.DateOfBirth,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil, apperr.Conflict(msgEmailTaken)
		}
		return nil, apperr.Internal("failed to register user", err)
	}

	s.publish(ctx, op, EventUserRegistered, UserRegistered{
		ID:         created.ID,
		Email:      created.Email,
		Role:       string(created.Role),
		OccurredAt: s.now(),
	})
	return created, nil
}

// Login проверяет учётные данные и выпускает токен. Неизвестный email,
// неверный пароль и заблокированная учётная запись дают одно и то же сообщение.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", nil, apperr.Unauthenticated(msgInvalidCredentials)
		}
		return "", nil, apperr.Internal("failed to log in", err)
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return "", nil, apperr.Internal("failed to log in", err)
	}
	if !ok || !u.IsActive {
		return "", nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(u.ID, string(u.Role), u.Email)
	if err != nil {
		return "", nil, apperr.Internal("failed to issue token", err)
	}
	return token, u, nil
}

// List возвращает всех пользователей.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	list, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return list, nil
}

// Get возвращает пользователя по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound(msgUserNotFound)
		}
		return nil, apperr.Internal("failed to get user", err)
	}
	return u, nil
}

// Block деактивирует пользователя. Администратора заблокировать нельзя,
// кто бы ни делал запрос. Повторная блокировка не считается ошибкой.
func (s *Service) Block(ctx context.Context, id, actorID string) (*models.User, error) {
	const op = "users.Block"

	target, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Role == models.RoleAdmin {
		return nil, apperr.Forbidden(msgCannotBlockAdmin)
	}

	inactive := false
	updated, err := s.users.UpdateUser(ctx, id, models.UserUpdate{IsActive: &inactive})
	if err != nil {
		return nil, apperr.Internal(msgUpdateFailed, err)
	}
	if updated == nil {
		return nil, apperr.Internal(msgUpdateFailed, nil)
	}

	s.publish(ctx, op, EventUserBlocked, UserBlocked{
		ID:         updated.ID,
		BlockedBy:  actorID,
		OccurredAt: s.now(),
	})
	return updated, nil
}

// IsActive сообщает, существует ли пользователь и не заблокирован ли он.
func (s *Service) IsActive(ctx context.Context, id string) (bool, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.IsActive, nil
}

// EnsureAdmin создаёт администратора, если пользователя с таким email ещё нет.
// Если email занят обычным пользователем, возвращается ошибка: сервис без
// администратора запускать нельзя.
func (s *Service) EnsureAdmin(ctx context.Context, in RegisterInput) error {
	const op = "users.EnsureAdmin"
	log := s.log.With(slog.String("op", op), slog.String("email", in.Email))

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			return fmt.Errorf("%s: email %s is registered with role %q", op, in.Email, existing.Role)
		}
		log.Debug("admin already exists")
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return err
	}
	_, err = s.users.CreateUser(ctx, models.User{
		FullName:     in.FullName,
		DateOfBirth:  in.DateOfBirth,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	})
	if err != nil && !errors.Is(err, storage.ErrEmailTaken) {
		return err
	}
	log.Info("admin account ensured")
	return nil
}

func (s *Service) publish(ctx context.Context, op, key string, event any) {
	if err := s.events.Publish(ctx, key, event); err != nil {
		s.log.Warn("failed to publish event",
			slog.String("op", op),
			slog.String("routing_key", key),
			sl.Err(err),
		)
	}
}
