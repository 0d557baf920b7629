package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyKey is returned when a signer or verifier is built without a key.
var ErrEmptyKey = errors.New("jwtx: signing key is empty")

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs tokens with HMAC-SHA256 over a shared secret.
type HS256Signer struct {
	key []byte
}

// NewHS256Signer copies key so later mutation by the caller cannot change
// what tokens are signed with.
func NewHS256Signer(key []byte) (*HS256Signer, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	return &HS256Signer{key: append([]byte(nil), key...)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a compact JWS string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}
