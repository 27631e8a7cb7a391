package jwtverify

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	commonerrors "github.com/AlibekovAA/snapfeed/internal/common/errors"
	commonhttp "github.com/AlibekovAA/snapfeed/internal/common/http"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
)

// Claims is the request-scoped identity rebuilt from a session token.
type Claims struct {
	UserID    string
	Username  string
	Email     string
	Name      string
	AvatarURL string
	TokenID   string
	IssuedAt  int64
	ExpiresAt int64
}

type contextKey string

const claimsKey contextKey = "jwt_claims"

type Verifier struct {
	secret []byte
	log    *logger.Logger
}

func NewVerifier(secret string, log *logger.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), log: log}
}

// Required rejects requests without a valid session with 401.
func (v *Verifier) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := TokenFromRequest(r)
		if tokenString == "" {
			v.log.WithFields(r.Context(), logger.Fields{"action": "jwt_auth", "path": r.URL.Path}).Debug("missing session")
			commonhttp.WriteErrorCode(w, http.StatusUnauthorized, commonhttp.CodeUnauthorized, "unauthorized", commonhttp.TraceIDFromContext(r.Context()))
			return
		}

		claims, err := v.Parse(tokenString)
		if err != nil {
			v.log.WithFields(r.Context(), logger.Fields{"action": "jwt_auth", "path": r.URL.Path}).Warnf("jwt auth failed: %v", err)
			commonhttp.WriteErrorCode(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid or expired session", commonhttp.TraceIDFromContext(r.Context()))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// Optional attaches claims when a valid session is present and otherwise
// passes the request through untouched.
func (v *Verifier) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := TokenFromRequest(r)
		if tokenString != "" {
			if claims, err := v.Parse(tokenString); err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (v *Verifier) Parse(tokenString string) (Claims, error) {
	return ParseToken(tokenString, v.secret)
}

// TokenFromRequest prefers the session cookie and falls back to a bearer
// Authorization header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	raw := r.Header.Get("Authorization")
	if strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	}
	return ""
}

func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func FromContext(ctx context.Context) (Claims, bool) {
	val := ctx.Value(claimsKey)
	claims, ok := val.(Claims)
	return claims, ok
}

func ParseToken(tokenString string, secret []byte) (Claims, error) {
	metrics.JWTValidationsTotal.Inc()
	claims, err := parseToken(tokenString, secret)
	if err != nil {
		metrics.JWTValidationsFailed.Inc()
	}
	return claims, err
}

func parseToken(tokenString string, secret []byte) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, commonerrors.ErrInvalidTokenSigningMethod
		}
		return secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithIssuedAt())
	if err != nil || !parsed.Valid {
		if err == nil {
			err = commonerrors.ErrInvalidToken
		}
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, commonerrors.ErrInvalidTokenClaims
	}

	sub, _ := mapClaims["sub"].(string)
	username, _ := mapClaims["usr"].(string)
	if sub == "" || username == "" {
		return Claims{}, commonerrors.ErrMissingTokenClaims
	}

	claims := Claims{
		UserID:   sub,
		Username: username,
	}
	claims.Email, _ = mapClaims["email"].(string)
	claims.Name, _ = mapClaims["name"].(string)
	claims.AvatarURL, _ = mapClaims["picture"].(string)
	claims.TokenID, _ = mapClaims["jti"].(string)
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Unix()
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Unix()
	}

	return claims, nil
}
