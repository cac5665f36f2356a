// Package auth émet et vérifie les jetons d'accès (JWT HS256).
// L'inscription et la connexion sont gérées par le service d'identité.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/guard"
)

// NewTokenHeader porte le jeton régénéré après une mutation.
const NewTokenHeader = "X-New-Access-Token"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoIdentity   = errors.New("no authenticated identity")
)

type Claims struct {
	jwt.RegisteredClaims
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signe un jeton pour userID avec un jti neuf.
func (t *Tokens) Issue(userID string) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signature du jeton: %w", err)
	}
	return signed, nil
}

// Parse vérifie la signature (HS256 uniquement) et l'expiration.
func (t *Tokens) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("signature invalide")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Regenerate ré-émet le jeton de l'utilisateur courant après une écriture.
func (t *Tokens) Regenerate(c *gin.Context) error {
	v, ok := c.Get(guard.IdentityKey)
	userID, _ := v.(string)
	if !ok || userID == "" {
		return ErrNoIdentity
	}

	token, err := t.Issue(userID)
	if err != nil {
		return err
	}
	c.Set("access_token", token)
	c.Header(NewTokenHeader, token)
	return nil
}
