package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

const tokenTTL = 24 * time.Hour

// TokenIssuer signs and validates session tokens. A nil issuer (no secret
// configured) means the API returns users without tokens.
type TokenIssuer struct {
	secret []byte
	clock  clockwork.Clock
}

// NewTokenIssuer returns nil when secret is empty, disabling token issuance.
func NewTokenIssuer(secret string, clock clockwork.Clock) *TokenIssuer {
	if secret == "" {
		return nil
	}
	return &TokenIssuer{secret: []byte(secret), clock: clock}
}

// Generate signs a 24h HS256 token for the user.
func (t *TokenIssuer) Generate(user User) (string, error) {
	claims := jwt.MapClaims{
		"uid":   user.UID,
		"email": user.Email,
		"role":  user.UserType,
		"exp":   t.clock.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Validate parses a token and returns the embedded uid and email.
func (t *TokenIssuer) Validate(tokenString string) (uid, email string, err error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.clock.Now))
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid token claims")
	}
	uid, _ = claims["uid"].(string)
	email, _ = claims["email"].(string)
	return uid, email, nil
}
