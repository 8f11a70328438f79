package auth

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleTraveler  Role = "traveler"
	RoleMember    Role = "member"
	RoleOrganizer Role = "organizer"
)

type Claims struct {
	TripID string `json:"trip_id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

var (
	secretMu  sync.RWMutex
	secretVal []byte
)

// SetSecret installs the signing secret from configuration. When never
// called, the APP_JWT_SECRET env var (or a dev default) is used.
func SetSecret(s string) {
	secretMu.Lock()
	secretVal = []byte(s)
	secretMu.Unlock()
}

func secret() []byte {

	secretMu.RLock()
	v := secretVal
	secretMu.RUnlock()
	if len(v) > 0 {
		return v
	}

	s := os.Getenv("APP_JWT_SECRET")
	if s == "" {
		s = "dev-secret-change-me"
	}

	return []byte(s)
}

func MakeToken(tripID string, role Role, ttl time.Duration) (string, error) {

	claims := Claims{
		TripID: tripID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

func ParseToken(tok string) (*Claims, error) {

	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return secret(), nil
	})

	if err != nil || !parsed.Valid {

		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func ParseTokenFromRequest(r *http.Request) (*Claims, error) {

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(auth), "bearer") {

		return nil, errors.New("missing bearer token")

	}

	tok := strings.TrimSpace(auth[len("bearer "):])
	return ParseToken(tok)

}
