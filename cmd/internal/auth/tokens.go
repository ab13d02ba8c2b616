package auth

import (
	"errors"
	"fmt"
	"time"

	"nailbook/cmd/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims covers both our own tokens and the Cognito access and id tokens.
type Claims struct {
	Email    string `json:"email,omitempty"`
	TokenUse string `json:"token_use,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// Verifier turns a raw bearer token into the caller's identity.
type Verifier interface {
	Verify(token string) (*utils.TokenData, error)
}

// HMAC issues and verifies HS256 tokens for the local identity provider.
type HMAC struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewHMAC(secret string, ttl time.Duration) (*HMAC, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &HMAC{secret: []byte(secret), ttl: ttl, issuer: "nailbook", now: time.Now}, nil
}

// Issue signs a token for sub. use is stored as token_use ("access" or "id").
func (h *HMAC) Issue(sub, email, use string) (string, error) {
	now := h.now()
	claims := Claims{
		Email:    email,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    h.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

func (h *HMAC) Verify(token string) (*utils.TokenData, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithTimeFunc(h.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &utils.TokenData{Sub: claims.Subject, Email: claims.Email}, nil
}
