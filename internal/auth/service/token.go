package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/workouttracker/pkg/idx"
	"github.com/aussiebroadwan/workouttracker/pkg/jwtx"
)

type TokenIssuerConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   []string
	TTL        time.Duration
	Clock      func() time.Time
}

// TokenIssuer signs HS256 session tokens. It is built once at startup and
// shared read-only.
type TokenIssuer struct {
	signer   jwtx.Signer
	issuer   string
	audience []string
	ttl      time.Duration
	clock    func() time.Time
}

func NewTokenIssuer(cfg TokenIssuerConfig) (*TokenIssuer, error) {
	signer, err := jwtx.NewHS256Signer(cfg.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("%w: signing key: %v", ErrConfiguration, err)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = jwtx.DefaultSessionTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &TokenIssuer{
		signer:   signer,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		clock:    cfg.Clock,
	}, nil
}

// Issue returns a signed token for the user and its expiry.
func (t *TokenIssuer) Issue(userID, username string, roles []string) (string, time.Time, error) {
	now := t.clock()
	claims := jwtx.NewSessionClaims(userID, username, idx.NewTokenID(), roles, t.issuer, t.audience, t.ttl, now)

	token, err := t.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: sign session token: %v", ErrConfiguration, err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// TTL reports the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }
