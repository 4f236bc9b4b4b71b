package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wuwenhuang/bethel-rsvp/internal/apperrors"
)

// issuer doubles as the protocol-version salt: rotating it invalidates
// every token minted under the previous version without touching the
// secret.
const issuer = "rsvp-emailer-v1"

// Payload is what a reply link carries: who is answering and for which
// event date. There is no expiry; links stay valid until the secret or
// the protocol version changes.
type Payload struct {
	Email string
	Date  string
}

// Codec signs and verifies reply tokens with a shared secret (HS256).
// Both operations are pure functions of token + secret.
type Codec struct {
	secret []byte
}

func New(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode serializes the payload into a compact, URL-safe signed token.
func (c *Codec) Encode(p Payload) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":   issuer,
		"email": p.Email,
		"date":  p.Date,
	})

	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Decode verifies the signature and issuer and returns the payload.
// Any structural or signature failure maps to apperrors.ErrInvalidToken,
// so forged tokens are indistinguishable from malformed ones.
func (c *Codec) Decode(tokenStr string) (Payload, error) {
	tok, err := jwt.Parse(tokenStr,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil || !tok.Valid {
		return Payload{}, apperrors.ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Payload{}, apperrors.ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	date, _ := claims["date"].(string)

	return Payload{Email: email, Date: date}, nil
}
