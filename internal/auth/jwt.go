// Package auth issues and verifies the credentials of the API: signed
// access tokens, opaque refresh tokens, bcrypt password hashes and the
// cookies that carry tokens to the browser.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTTL is the lifetime of an access token when none is given.
const DefaultAccessTTL = time.Hour

// refreshTokenBytes is the entropy of a refresh token (256 bits).
const refreshTokenBytes = 32

// JWTService signs and verifies HS256 access tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService builds a service signing with secret.  A zero ttl means
// DefaultAccessTTL.
func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of the tokens this service issues.
func (s *JWTService) TTL() time.Duration { return s.ttl }

// Create signs payload with iat = now and exp = now + TTL.
func (s *JWTService) Create(payload map[string]any) (string, error) {
	return s.CreateAt(payload, s.now())
}

// CreateAt signs payload as if it had been issued at issuedAt.
func (s *JWTService) CreateAt(payload map[string]any, issuedAt time.Time) (string, error) {
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims["iat"] = issuedAt.Unix()
	claims["exp"] = issuedAt.Add(s.ttl).Unix()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify returns the token payload, or nil when the token is malformed,
// carries a bad signature, uses any algorithm but HS256, or has expired.
func (s *JWTService) Verify(token string) map[string]any {
	if token == "" {
		return nil
	}
	tok, err := jwt.Parse(token,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return nil
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	return map[string]any(claims)
}

// CreateRefreshToken returns a fresh opaque refresh token, hex encoded.
func (s *JWTService) CreateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashRefreshToken returns the SHA-256 hex digest stored in place of the
// token itself.
func (s *JWTService) HashRefreshToken(token string) string {
	return HashRefreshToken(token)
}

// HashRefreshToken is the package-level form of JWTService.HashRefreshToken.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
