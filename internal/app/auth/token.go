package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized indicates a missing, unknown or expired session token.
var ErrUnauthorized = errors.New("unauthorized")

// TokenIssuer mints and checks session tokens.
type TokenIssuer interface {
	Issue(user SessionUser) (string, error)
	Verify(token string) error
}

// RandomIssuer issues opaque "tok_mock_" tokens.
type RandomIssuer struct{}

const randomPrefix = "tok_mock_"

func (RandomIssuer) Issue(SessionUser) (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return randomPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}

func (RandomIssuer) Verify(token string) error {
	if !strings.HasPrefix(token, randomPrefix) {
		return ErrUnauthorized
	}
	return nil
}

// JWTIssuer signs HS256 tokens carrying the user id as subject.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer builds a JWT issuer. A zero ttl defaults to one week.
func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWTIssuer) Issue(user SessionUser) (string, error) {
	now := j.now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(j.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (j *JWTIssuer) Verify(token string) error {
	_, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return nil
}
