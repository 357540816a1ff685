package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"madrid_barmap/internal/domain"
)

// Claims are the fields the session issuer puts in an access token.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 access tokens minted by the session issuer.
type JWTAuthenticator struct {
	secret string
	iss    string
	aud    string
}

func NewJWTAuthenticator(secret, iss, aud string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: secret, iss: iss, aud: aud}
}

// Issue mints a token for u. Used by local tooling and tests.
func (a *JWTAuthenticator) Issue(u domain.User, ttl time.Duration) (string, error) {
	if a.secret == "" {
		return "", errors.New("auth: empty secret")
	}
	now := time.Now()
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    a.iss,
			Audience:  jwt.ClaimStrings{a.aud},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Image != nil {
		c.Picture = *u.Image
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(a.secret))
}

// Verify validates token and returns the user it names.
func (a *JWTAuthenticator) Verify(token string) (domain.User, error) {
	if a.secret == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.iss),
		jwt.WithAudience(a.aud),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if c.Subject == "" {
		return domain.User{}, fmt.Errorf("%w: missing subject", domain.ErrUnauthorized)
	}

	u := domain.User{ID: c.Subject}
	if c.Name != "" {
		u.Name = &c.Name
	}
	if c.Picture != "" {
		u.Image = &c.Picture
	}
	return u, nil
}
