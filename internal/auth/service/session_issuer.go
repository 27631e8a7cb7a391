package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	authdomain "github.com/AlibekovAA/snapfeed/internal/auth/domain"
	"github.com/AlibekovAA/snapfeed/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/snapfeed/internal/common/crypto"
	"github.com/AlibekovAA/snapfeed/internal/common/jwtverify"
)

type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionIssuer mints stateless HS256 session tokens. Validity is purely a
// function of signature and expiry.
type SessionIssuer struct {
	jwtSecret   []byte
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	ttl         time.Duration
}

func NewSessionIssuer(
	jwtSecret string,
	idGenerator commoncrypto.IDGenerator,
	ttl time.Duration,
	clock clock.Clock,
) *SessionIssuer {
	return &SessionIssuer{
		jwtSecret:   []byte(jwtSecret),
		idGenerator: idGenerator,
		clock:       clock,
		ttl:         ttl,
	}
}

func (si *SessionIssuer) Issue(identity authdomain.Identity) (Session, error) {
	jti, err := si.idGenerator.NewID()
	if err != nil {
		return Session{}, err
	}

	now := si.clock.Now()
	expiresAt := now.Add(si.ttl)
	claims := jwt.MapClaims{
		"sub":   identity.ID,
		"usr":   identity.Username,
		"email": identity.Email,
		"name":  identity.Name,
		"jti":   jti,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}
	if identity.AvatarURL != "" {
		claims["picture"] = identity.AvatarURL
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(si.jwtSecret)
	if err != nil {
		return Session{}, err
	}

	incrementSessionTokensIssued()
	return Session{Token: tokenString, ExpiresAt: expiresAt}, nil
}

func (si *SessionIssuer) Parse(tokenString string) (jwtverify.Claims, error) {
	return jwtverify.ParseToken(tokenString, si.jwtSecret)
}

func IdentityFromClaims(c jwtverify.Claims) authdomain.Identity {
	return authdomain.Identity{
		ID:        c.UserID,
		Email:     c.Email,
		Username:  c.Username,
		Name:      c.Name,
		AvatarURL: c.AvatarURL,
	}
}
