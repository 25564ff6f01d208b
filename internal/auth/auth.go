// Package auth provides request authentication for the catalog API.
//
// Two credential forms are accepted: the static API key sent in the
// X-API-Key header, and short-lived HS256 service tokens minted from
// that key and sent as a Bearer token. Service tokens let upstream
// gateways avoid forwarding the raw key on every hop.
package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceTokenExpiry is the lifetime of a minted service token.
const ServiceTokenExpiry = 1 * time.Hour

// DefaultLeeway for token time-based claim validation.
const DefaultLeeway = 30 * time.Second

// ErrInvalidKey is returned when the presented API key does not match.
var ErrInvalidKey = errors.New("invalid API key")

// ErrInvalidToken is returned when token validation fails.
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken is returned when the token has expired.
var ErrExpiredToken = errors.New("token has expired")

// ErrEmptySubject is returned when a token is requested for an empty subject.
var ErrEmptySubject = errors.New("subject cannot be empty")

// Claims represents service token claims.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

// Authenticator validates API keys and service tokens.
// Supports dual-key rotation: tokens are signed with the current key,
// but keys and tokens validate against either the current or previous key.
type Authenticator struct {
	currentKey  []byte
	previousKey []byte
	leeway      time.Duration
}

// NewAuthenticator creates an Authenticator with the given API key.
func NewAuthenticator(apiKey string) *Authenticator {
	return &Authenticator{
		currentKey: []byte(apiKey),
		leeway:     DefaultLeeway,
	}
}

// NewAuthenticatorWithRotation creates an Authenticator with dual-key support
// for zero-downtime key rotation. Set previousKey to empty string if no
// rotation is in progress.
func NewAuthenticatorWithRotation(currentKey, previousKey string) *Authenticator {
	a := &Authenticator{
		currentKey: []byte(currentKey),
		leeway:     DefaultLeeway,
	}
	if previousKey != "" {
		a.previousKey = []byte(previousKey)
	}
	return a
}

// VerifyAPIKey checks a presented API key in constant time against the
// configured key (and the previous key during rotation).
func (a *Authenticator) VerifyAPIKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if subtle.ConstantTimeCompare([]byte(key), a.currentKey) == 1 {
		return nil
	}
	if a.previousKey != nil && subtle.ConstantTimeCompare([]byte(key), a.previousKey) == 1 {
		return nil
	}
	return ErrInvalidKey
}

// GenerateServiceToken mints a short-lived HS256 token for the given subject.
func (a *Authenticator) GenerateServiceToken(subject, scope string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ServiceTokenExpiry)),
		},
		Scope: scope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.currentKey)
}

// ValidateServiceToken parses and validates a service token, returning the
// claims if valid. Tries the current key first, then the previous key if
// rotation is in progress.
func (a *Authenticator) ValidateServiceToken(tokenString string) (*Claims, error) {
	claims, err := a.parseWithKey(tokenString, a.currentKey)
	if err == nil {
		return claims, nil
	}

	if a.previousKey != nil {
		if claims, prevErr := a.parseWithKey(tokenString, a.previousKey); prevErr == nil {
			return claims, nil
		}
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpiredToken
	}
	return nil, ErrInvalidToken
}

func (a *Authenticator) parseWithKey(tokenString string, key []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return key, nil
	}, jwt.WithLeeway(a.leeway))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
