// Package models содержит доменную модель пользователя системы и его
// публичное представление, отдаваемое клиентам.
package models

import "time"

// DateLayout — формат даты рождения во всех входных и выходных данных.
const DateLayout = "2006-01-02"

// Role — роль пользователя. Набор ролей фиксирован, но значение может прийти
// извне (например, из подписанного токена), поэтому его нужно проверять через Valid.
type Role string

const (
	// RoleAdmin — администратор.
	RoleAdmin Role = "admin"
	// RoleUser — обычный пользователь, роль по умолчанию при регистрации.
	RoleUser Role = "user"
)

// Valid сообщает, входит ли роль в известный набор.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string    `json:"id"`          // Уникальный идентификатор (UUID)
	FullName     string    `json:"fullName"`    // ФИО
	DateOfBirth  time.Time `json:"dateOfBirth"` // Дата рождения
	Email        string    `json:"email"`       // Электронная почта, уникальна
	PasswordHash string    `json:"-"`           // Хэш пароля, никогда не сериализуется
	Role         Role      `json:"role"`        // Роль пользователя
	IsActive     bool      `json:"isActive"`    // false после блокировки
	CreatedAt    time.Time `json:"createdAt"`   // Время регистрации
}

// PublicUser — представление пользователя без хэша пароля.
type PublicUser struct {
	ID          string `json:"id" example:"0b8f2a4e-6c2d-4d7f-9a51-3f1f4b0f9c11"`
	FullName    string `json:"fullName" example:"Ivan Ivanov"`
	DateOfBirth string `json:"dateOfBirth" example:"1990-01-15"`
	Email       string `json:"email" example:"ivan.ivanov@example.com"`
	Role        Role   `json:"role" example:"user"`
	IsActive    bool   `json:"isActive" example:"true"`
}

// Public возвращает публичное представление пользователя.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		FullName:    u.FullName,
		DateOfBirth: u.DateOfBirth.Format(DateLayout),
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
	}
}

// PublicList преобразует список пользователей в публичные представления.
// Для пустого списка возвращается пустой срез, а не nil.
func PublicList(users []*User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

// UserUpdate описывает частичное обновление пользователя. Nil-поля не меняются.
type UserUpdate struct {
	IsActive *bool
}
