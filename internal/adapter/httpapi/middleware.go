package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

type contextKey int

const userContextKey contextKey = iota

// UserFromContext returns the authenticated user stored by the auth
// middleware, or false when the request was not authenticated.
func UserFromContext(ctx context.Context) (*domain.AppUser, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.AppUser)
	return user, ok
}

// Authenticator resolves bearer tokens to application users. Tokens are HS256
// JWTs whose subject is the user's identity-provider uid. In dev mode every
// request acts as the configured user without presenting a token.
type Authenticator struct {
	Users  domain.UserRepository
	Secret string

	DevMode   bool
	DevUserID int64

	logger zerolog.Logger
}

// NewAuthenticator creates a new Authenticator instance
func NewAuthenticator(users domain.UserRepository, secret string, devMode bool, devUserID int64, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		Users:     users,
		Secret:    secret,
		DevMode:   devMode,
		DevUserID: devUserID,
		logger:    logger.With().Str("component", "auth").Logger(),
	}
}

// Authenticate is the middleware gating every endpoint except health. It
// resolves the caller to an active user and stores it on the request context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.resolveUser(r)
		if err != nil {
			a.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("authentication rejected")
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		if user.Status != domain.UserStatusActive {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "user is not active"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	})
}

func (a *Authenticator) resolveUser(r *http.Request) (*domain.AppUser, error) {
	if a.DevMode {
		return a.Users.FindByID(r.Context(), a.DevUserID)
	}

	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, fmt.Errorf("missing bearer token")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return a.Users.FindBySubjectUID(r.Context(), claims.Subject)
}

// RequireAdmin gates mutating and cross-account endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin privileges required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
