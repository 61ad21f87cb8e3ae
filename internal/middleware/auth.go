package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mdpress/mdpress/internal/domain"
	"github.com/mdpress/mdpress/internal/logger"
	jwt_internal "github.com/mdpress/mdpress/internal/utils/jwt"
)

// UserProvider resolves a token subject to a live user record.
type UserProvider interface {
	UserById(id string) (domain.User, error)
}

// Key to store the user claims in the request context
type key int

const UserClaimsKey key = 0

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService jwt_internal.JwtService
	users      UserProvider
}

func NewAuth(jwtService jwt_internal.JwtService, users UserProvider) *Auth {
	return &Auth{
		jwtService: jwtService,
		users:      users,
	}
}

// NeedAuth returns middleware that requires a valid bearer token whose
// subject still resolves to an existing user.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(r)
			if err != nil {
				switch err {
				case errNoToken:
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
				case errInvalidClaims:
					logger.Log.Error("invalid jwt claims")
					http.Error(w, "Invalid token", http.StatusUnauthorized)
				case errUserGone:
					http.Error(w, "User no longer exists", http.StatusUnauthorized)
				default:
					// Token decode error carries its own status code
					http.Error(w, err.Error(), http.StatusUnauthorized)
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractUser extracts and validates the bearer token, then resolves its
// subject to a live user. Returns (user, nil) on success.
func (a *Auth) extractUser(r *http.Request) (*domain.User, error) {
	tokenString, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}

	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return nil, errInvalidClaims
	}

	// Token validity is not enough: the subject must still exist
	user, err := a.users.UserById(uid)
	if err != nil {
		return nil, errUserGone
	}

	return &user, nil
}

// Sentinel errors for extractUser
var (
	errNoToken       = errorString("no token")
	errInvalidClaims = errorString("invalid claims")
	errUserGone      = errorString("user gone")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// GetUserFromContext retrieves the user from the context
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
