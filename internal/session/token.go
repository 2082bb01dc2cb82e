// Package session implements server-side sessions. The browser-facing token
// is a signed JWT naming a session id; the authoritative session record
// lives in a Store, so logout revokes the token no matter how long its
// signature stays valid.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetime is the fixed validity of a session. The JWT expiry and the store
// TTL are both set to this at issue time and never extended.
const Lifetime = 7 * 24 * time.Hour

// ErrInvalidToken covers malformed, tampered and expired tokens alike; the
// caller only needs to know the session cannot be resolved.
var ErrInvalidToken = errors.New("invalid session token")

// TokenCodec signs and verifies session tokens.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec signing with the given secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Issue signs a token binding the session id to the user id, expiring
// Lifetime from now.
func (c *TokenCodec) Issue(sessionID string, userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti": sessionID,
		"sub": fmt.Sprintf("%d", userID),
		"iat": now.Unix(),
		"exp": now.Add(Lifetime).Unix(),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the session id.
func (c *TokenCodec) Decode(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sessionID, ok := claims["jti"].(string)
	if !ok || sessionID == "" {
		return "", ErrInvalidToken
	}
	return sessionID, nil
}
