package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued bearer token stays valid. There is no
// refresh mechanism; expiry simply makes authenticated calls fail.
const TokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("auth: invalid token")

// Claims carries the authenticated user's identity inside the JWT.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies bearer tokens with a shared server-side secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// NewTokensAt pins the token clock, for tests.
func NewTokensAt(secret string, now func() time.Time) *Tokens {
	return &Tokens{secret: []byte(secret), now: now}
}

// Issue signs a token for the given user ID, valid for TokenTTL.
func (t *Tokens) Issue(userID string) (string, error) {
	issued := t.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the user ID it was issued
// for. Expired, malformed, and wrongly signed tokens all come back as
// ErrInvalidToken.
func (t *Tokens) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
