package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

const tokenIssuer = "jobsvc"

// AccessToken: выпущенный токен и время его жизни.
type AccessToken struct {
	Token     string
	ExpiresIn time.Duration
}

type accessClaims struct {
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// TokenManager подписывает и проверяет access токены (HS256).
type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenManager(secret string, accessTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, now: time.Now}
}

func (m *TokenManager) Issue(user *entity.User) (*AccessToken, error) {
	now := m.now()
	claims := accessClaims{
		UserType: string(user.UserType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("token: не удалось подписать: %w", err)
	}
	return &AccessToken{Token: signed, ExpiresIn: m.accessTTL}, nil
}

// ParseAccess возвращает id и тип пользователя из валидного токена.
func (m *TokenManager) ParseAccess(raw string) (uuid.UUID, string, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return uuid.Nil, "", err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", errors.Join(jwt.ErrTokenInvalidSubject, err)
	}
	return userID, claims.UserType, nil
}
