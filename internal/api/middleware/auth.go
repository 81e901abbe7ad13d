package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/daria-hk/contacts-api/internal/models"
	"github.com/daria-hk/contacts-api/internal/repositories"
	"github.com/daria-hk/contacts-api/internal/services"
	"github.com/daria-hk/contacts-api/internal/utils"
)

type contextKey string

const userKey contextKey = "currentUser"

// Authenticator resolves the current user from the bearer token before a
// request reaches any protected handler. Token failures of any kind collapse
// to a generic 401.
type Authenticator struct {
	tokens services.TokenService
	users  repositories.UserRepository
}

func NewAuthenticator(tokens services.TokenService, users repositories.UserRepository) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		users:  users,
	}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(w)
			return
		}

		username, err := a.tokens.VerifyAccessToken(token)
		if err != nil {
			unauthorized(w)
			return
		}

		user, err := a.users.GetByUsername(r.Context(), username)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the user resolved by the middleware, or nil outside a
// protected route.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
		Success: false,
		Message: "Unauthorized",
	})
}
