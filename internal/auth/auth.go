// Package auth verifies the identity carried by a connecting client.
// Accounts live with an external identity provider; the server only sees
// signed tokens naming a user id and a character name.
package auth

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/l1jgo/gridworld/internal/config"
)

// Claims holds the JWT claims for a player session.
type Claims struct {
	UserID string `json:"uid"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Identity is who a connection speaks for.
type Identity struct {
	UserID string
	Name   string
}

// Service issues and validates HS256 tokens.
type Service struct {
	jwtKey   []byte
	issuer   string
	expiry   time.Duration
	devLogin bool
}

// NewService creates an auth service. If the secret is empty a random
// 32-byte key is generated, so tokens do not survive a restart.
func NewService(cfg config.AuthConfig) *Service {
	var key []byte
	if cfg.JWTSecret != "" {
		key = []byte(cfg.JWTSecret)
	} else {
		key = make([]byte, 32)
		rand.Read(key)
	}
	expiry := cfg.TokenTTL
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{jwtKey: key, issuer: cfg.Issuer, expiry: expiry, devLogin: cfg.DevLogin}
}

// Issue signs a token for userID playing as name.
func (a *Service) Issue(userID, name string, now time.Time) (string, error) {
	if userID == "" || name == "" {
		return "", fmt.Errorf("issue token: user id and name required")
	}
	claims := Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
			Issuer:    a.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtKey)
}

// Verify parses and validates a token string.
func (a *Service) Verify(tokenStr string) (Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return a.jwtKey, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token claims")
	}
	if claims.UserID == "" || claims.Name == "" {
		return Identity{}, fmt.Errorf("invalid token: missing uid or name")
	}
	return Identity{UserID: claims.UserID, Name: claims.Name}, nil
}

// FromRequest authenticates an upgrade request. The token comes from the
// Authorization header or the token query parameter. With dev login on,
// ?user=&name= is accepted without a token.
func (a *Service) FromRequest(r *http.Request) (Identity, error) {
	q := r.URL.Query()
	tok := q.Get("token")
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tok = strings.TrimPrefix(h, "Bearer ")
	}
	if tok != "" {
		return a.Verify(tok)
	}
	if a.devLogin {
		user, name := strings.TrimSpace(q.Get("user")), strings.TrimSpace(q.Get("name"))
		if user != "" && name != "" {
			return Identity{UserID: user, Name: name}, nil
		}
	}
	return Identity{}, fmt.Errorf("missing credentials")
}
