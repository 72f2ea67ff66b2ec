// Package token issues and verifies the signed session tokens handed out by
// the login endpoints. Tokens bind a single identifier (an api server user
// name or a broker name) and carry a fixed lifetime.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SessionLifetime is how long an issued token stays valid.
const SessionLifetime = time.Hour

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ErrExpired covers every verification failure: bad signature, malformed
// token, or past expiry. Callers report all of them as an expired session.
var ErrExpired = errors.New("session expired")

// Signer creates and verifies signed session tokens.
type Signer interface {
	// Sign issues a token bound to id.
	Sign(id string) (string, error)

	// Verify validates a raw token and returns the bound id.
	Verify(raw string) (string, error)
}

// HMACSigner implements Signer using symmetric HMAC-SHA256 with a fixed
// process-wide secret.
type HMACSigner struct {
	secret []byte
}

// NewHMACSigner creates a new HMAC signer. An empty secret is a
// configuration fault and is rejected up front so it can never surface as
// a per-request failure.
func NewHMACSigner(secret string) (*HMACSigner, error) {
	if secret == "" {
		return nil, errors.New("[NewHMACSigner] secret is required")
	}
	return &HMACSigner{secret: []byte(secret)}, nil
}

func (h *HMACSigner) Sign(id string) (string, error) {
	now := NowTimeFunc()
	claims := jwt.MapClaims{
		"id":  id,
		"iat": now.Unix(),
		"exp": now.Add(SessionLifetime).Unix(),
		"jti": uuid.New().String(),
	}
	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "[HMACSigner.Sign] failed to sign token")
	}
	return signedToken, nil
}

func (h *HMACSigner) Verify(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return NowTimeFunc() }))
	if err != nil || !parsed.Valid {
		return "", ErrExpired
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrExpired
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", ErrExpired
	}
	return id, nil
}
