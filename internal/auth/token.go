// Package auth maps bearer credentials to authenticated user identities.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/innometrics/innometrics-backend/internal/model"
)

// Config holds token signing and verification parameters.
type Config struct {
	Secret string
	TTL    time.Duration
}

// Issue generates a signed token for userID, valid for cfg.TTL from now.
func Issue(userID string, cfg Config) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(cfg.TTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns the embedded subject identifier.
// Any failure (empty token, bad signature, expiry, missing subject) is
// reported as model.ErrUnauthenticated.
func Parse(token string, cfg Config) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: missing token", model.ErrUnauthenticated)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrUnauthenticated, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("%w: invalid claims", model.ErrUnauthenticated)
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject", model.ErrUnauthenticated)
	}
	return subject, nil
}
