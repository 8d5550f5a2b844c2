// Package auth issues and verifies guest identity tokens. A guest
// token binds a display name to a stable player id, so a client keeps
// the same seat identity across tabs and reconnects.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is how long a guest token stays valid.
const DefaultTTL = 24 * time.Hour

// GuestClaims is the JWT claim set for a guest identity. The subject
// is the player id.
type GuestClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Service signs and parses guest tokens with an HMAC-SHA256 secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// New creates a token service. TTL zero means DefaultTTL.
func New(secret string, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// IssueGuest mints a token for a fresh player id.
func (s *Service) IssueGuest(name string) (token string, playerID uuid.UUID, err error) {
	playerID = uuid.New()
	now := time.Now()
	claims := GuestClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("sign guest token: %w", err)
	}
	return token, playerID, nil
}

// Parse verifies a token and returns the player id and display name.
func (s *Service) Parse(token string) (uuid.UUID, string, error) {
	var claims GuestClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("parse guest token: %w", err)
	}
	if !parsed.Valid {
		return uuid.Nil, "", fmt.Errorf("guest token is invalid")
	}
	playerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("guest token subject: %w", err)
	}
	return playerID, claims.Name, nil
}
