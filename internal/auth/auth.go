// Package auth identifies the acting principal of an HTTP request from an
// optional HS256 bearer token. Requests without a token run as the system
// principal; a token that is present but invalid is rejected.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"report-router/internal/common/errors"
	"report-router/internal/common/logging"
	"report-router/internal/routing"
)

// Issuer is written to and required in every token.
const Issuer = "report-router"

// Claims carried by a bearer token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Revoker tracks tokens invalidated before their expiry.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Auth verifies bearer tokens. A zero secret disables verification so every
// request runs as routing.SystemPrincipal.
type Auth struct {
	secret  []byte
	revoker Revoker
	logger  logging.Logger
	now     func() time.Time
}

// New returns an Auth using secret. revoker may be nil.
func New(secret string, revoker Revoker, logger logging.Logger) *Auth {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Auth{
		secret:  []byte(secret),
		revoker: revoker,
		logger:  logger.WithFields(logging.Field{Key: "component", Value: "auth"}),
		now:     time.Now,
	}
}

// Enabled reports whether tokens are verified.
func (a *Auth) Enabled() bool {
	return len(a.secret) > 0
}

// GenerateJWT signs a token for email and role valid for ttl.
func (a *Auth) GenerateJWT(email, role string, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", errors.ConfigError("JWT_SECRET is not configured")
	}

	now := a.now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ValidateJWT parses token and checks signature, expiry, issuer and revocation.
func (a *Auth) ValidateJWT(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return nil, errors.AuthError(fmt.Sprintf("invalid token: %v", err))
	}
	if claims.Email == "" {
		return nil, errors.AuthError("token has no email claim")
	}

	if a.revoker != nil {
		revoked, err := a.revoker.IsRevoked(ctx, token)
		if err != nil {
			return nil, errors.ConnectionError("failed to check token revocation", err)
		}
		if revoked {
			return nil, errors.AuthError("token has been revoked")
		}
	}

	return claims, nil
}

// RevokeJWT invalidates token until it would have expired anyway.
func (a *Auth) RevokeJWT(ctx context.Context, token string) error {
	claims, err := a.ValidateJWT(ctx, token)
	if err != nil {
		return err
	}
	if a.revoker == nil {
		return errors.ConfigError("token revocation requires Redis")
	}

	ttl := claims.ExpiresAt.Time.Sub(a.now())
	if ttl <= 0 {
		return nil
	}
	return a.revoker.Revoke(ctx, token, ttl)
}

// Middleware attaches the token's principal to the request context.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" || !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.ValidateJWT(r.Context(), token)
		if err != nil {
			a.logger.Warn("Rejected bearer token",
				logging.Field{Key: "path", Value: r.URL.Path},
				logging.Field{Key: "error", Value: err.Error()},
			)
			w.Header().Set("Content-Type", "application/json")
			if errors.IsType(err, errors.ErrTypeConnection) {
				w.WriteHeader(http.StatusServiceUnavailable)
			} else {
				w.WriteHeader(http.StatusUnauthorized)
			}
			w.Write([]byte(`{"error": "Authentication failed"}`))
			return
		}

		ctx := routing.WithPrincipal(r.Context(), routing.Principal{Email: claims.Email, Role: claims.Role})
		ctx = logging.ContextWith(ctx, logging.PrincipalKey, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractToken returns the bearer token of r, or "" when there is none.
func ExtractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
