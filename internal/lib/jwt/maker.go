// Package jwt выпускает и проверяет подписанные сессионные токены.
//
// Токен несёт идентификатор пользователя, его роль и email, подписывается
// HS256 секретом сервера и действует фиксированное время (по умолчанию час).
// Отозвать токен до истечения срока нельзя.
package jwt

import (
	"errors"
	"time"
)

// DefaultTTL — срок действия токена.
const DefaultTTL = time.Hour

var (
	// ErrSecretMissing возвращается, если секрет подписи не настроен.
	// Это ошибка конфигурации, а не клиента.
	ErrSecretMissing = errors.New("jwt secret is not configured")
	// ErrInvalidToken объединяет все причины отказа: неразборчивый токен,
	// неверную подпись, истёкший срок, чужой алгоритм.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Maker выпускает и проверяет токены. Безопасен для конкурентного использования.
type Maker struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewMaker создаёт Maker с секретом подписи. Непозитивный ttl заменяется на DefaultTTL.
// Пустой секрет допустим при создании, но любая операция вернёт ErrSecretMissing.
func NewMaker(secret string, ttl time.Duration) *Maker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Maker{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL возвращает срок действия выпускаемых токенов.
func (m *Maker) TTL() time.Duration {
	return m.ttl
}
