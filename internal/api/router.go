package api

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/daria-hk/contacts-api/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/daria-hk/contacts-api/internal/api/handlers"
	"github.com/daria-hk/contacts-api/internal/api/middleware"
	"github.com/daria-hk/contacts-api/internal/services"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// Deps carries everything the router wires together. All dependencies are
// constructed in main and injected here.
type Deps struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Contacts      *handlers.ContactHandler
	Authenticator *middleware.Authenticator
	CorsOptions   cors.Options
	Logger        *logrus.Logger
}

// meRequestsPerMinute is the fixed-window cap on the current-user endpoint.
const meRequestsPerMinute = 10

func SetupRouter(deps Deps) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(deps.CorsOptions)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	authMux := http.NewServeMux()
	authMux.HandleFunc("POST /register", deps.Auth.Register)
	authMux.HandleFunc("POST /login", deps.Auth.Login)
	authMux.HandleFunc("GET /confirmed_email/{token}", deps.Auth.ConfirmEmail)
	authMux.HandleFunc("POST /request_email", deps.Auth.RequestEmail)

	mainMux.Handle("/api/auth/",
		http.StripPrefix("/api/auth", authMux),
	)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	meLimiter := services.NewFixedWindow(meRequestsPerMinute, time.Minute)
	protectedMux.HandleFunc("GET /users/me", middleware.RateLimit(meLimiter, deps.Users.Me))
	protectedMux.HandleFunc("PATCH /users/avatar", deps.Users.UpdateAvatar)

	protectedMux.HandleFunc("GET /contacts", deps.Contacts.List)
	protectedMux.HandleFunc("POST /contacts", deps.Contacts.Create)
	protectedMux.HandleFunc("GET /contacts/birthdays", deps.Contacts.Birthdays)
	protectedMux.HandleFunc("GET /contacts/{id}", deps.Contacts.Get)
	protectedMux.HandleFunc("PUT /contacts/{id}", deps.Contacts.Update)
	protectedMux.HandleFunc("DELETE /contacts/{id}", deps.Contacts.Remove)

	mainMux.Handle("/api/",
		http.StripPrefix(
			"/api",
			deps.Authenticator.Middleware(protectedMux),
		),
	)

	deps.Logger.Info("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(deps.Logger)(handler)
	return handler
}
