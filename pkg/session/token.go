package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "relief"

// Claims is what a persisted session remembers.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with HMAC-SHA256.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewCodec returns a codec for key. Tokens expire after ttl.
func NewCodec(key []byte, ttl time.Duration) (*Codec, error) {
	if len(key) < 32 {
		return nil, errors.New("session key must be at least 32 bytes")
	}
	return &Codec{key: key, ttl: ttl, now: time.Now}, nil
}

// Encode issues a token for an established session.
func (c *Codec) Encode(s *Session) (string, error) {
	if !s.Authenticated() {
		return "", errors.New("cannot encode an unauthenticated session")
	}
	now := c.now()
	claims := Claims{
		Role: s.Role().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   s.Username(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Decode verifies a token and returns the username and role it names.
func (c *Codec) Decode(token string) (string, Role, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", RoleNone, fmt.Errorf("invalid session token: %w", err)
	}

	role, err := RoleString(claims.Role)
	if err != nil || role == RoleNone {
		return "", RoleNone, fmt.Errorf("invalid session token: bad role %q", claims.Role)
	}
	if claims.Subject == "" {
		return "", RoleNone, errors.New("invalid session token: no subject")
	}
	return claims.Subject, role, nil
}

// TTL returns the token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
