package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scope restricts which operation a token may be presented to. A token
// minted for one scope is rejected everywhere else even with a valid
// signature.
type Scope string

const (
	ScopeAccess      Scope = "access_token"
	ScopeRefresh     Scope = "refresh_token"
	ScopeEmailVerify Scope = "email_verify"
)

const (
	DefaultAccessTTL      = 15 * time.Minute
	DefaultRefreshTTL     = 7 * 24 * time.Hour
	DefaultEmailVerifyTTL = 24 * time.Hour
)

var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenScope     = errors.New("invalid scope for token")
)

// TokenCodec issues and verifies HS256 JWTs carrying a subject, a scope
// and an expiry. The signing key is injected once at construction and
// shared read-only across handlers.
type TokenCodec struct {
	key []byte
	now func() time.Time
}

func NewTokenCodec(key []byte) *TokenCodec {
	return &TokenCodec{key: key, now: time.Now}
}

// NewTokenCodecWithClock injects the clock used for iat/exp and expiry
// validation. Tests use it to cross the expiry boundary deterministically.
func NewTokenCodecWithClock(key []byte, now func() time.Time) *TokenCodec {
	return &TokenCodec{key: key, now: now}
}

// Issue signs a token for subject with the given scope and TTL.
func (c *TokenCodec) Issue(subject string, scope Scope, ttl time.Duration) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"scope": string(scope),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Decode verifies the signature and expiry, checks the scope claim, and
// returns the subject. A token is rejected from the exact expiry instant
// onward: it is valid only while now < exp.
func (c *TokenCodec) Decode(raw string, want Scope) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignature
		}
		return c.key, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenSignature
		default:
			return "", ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenMalformed
	}

	if scope, _ := claims["scope"].(string); scope != string(want) {
		return "", ErrTokenScope
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", ErrTokenMalformed
	}
	return subject, nil
}
