package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims — данные пользователя, зашитые в токен при выпуске.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issue подписывает claims пользователя. Срок действия отсчитывается от текущего момента.
func (m *Maker) Issue(userID, role, email string) (string, error) {
	const op = "jwt.Issue"
	if len(m.secret) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrSecretMissing)
	}

	now := m.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Verify проверяет подпись и срок действия токена и возвращает его claims.
//
// Любая проблема с самим токеном возвращается как ErrInvalidToken (исходная
// причина доступна через errors.Is). При отсутствии секрета возвращается ErrSecretMissing.
func (m *Maker) Verify(tokenStr string) (*Claims, error) {
	const op = "jwt.Verify"
	if len(m.secret) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrSecretMissing)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
