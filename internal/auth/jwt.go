package auth

import (
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "labelflow/internal/errors"
)

// ErrEmptySecret is returned when a token would be signed with an empty key.
var ErrEmptySecret = stderrors.New("jwt signing secret is empty")

// GenerateToken issues an HS256 token whose subject is userID.
func GenerateToken(userID string, secret []byte, validity time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
	})

	return token.SignedString(secret)
}

// UserIDFromToken validates tokenString and returns its subject. Every
// failure is reported as an AuthError.
func UserIDFromToken(tokenString string, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", apperrors.NewAuthError("identity verification is not configured")
	}

	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.NewAuthError("token expired")
		}
		return "", apperrors.NewAuthError("invalid token")
	}

	if !token.Valid || claims.Subject == "" {
		return "", apperrors.NewAuthError("invalid token")
	}

	return claims.Subject, nil
}
