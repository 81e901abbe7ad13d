package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daria-hk/contacts-api/internal/api"
	"github.com/daria-hk/contacts-api/internal/api/handlers"
	"github.com/daria-hk/contacts-api/internal/api/middleware"
	"github.com/daria-hk/contacts-api/internal/config"
	"github.com/daria-hk/contacts-api/internal/mail"
	"github.com/daria-hk/contacts-api/internal/repositories"
	"github.com/daria-hk/contacts-api/internal/services"
	"github.com/daria-hk/contacts-api/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	mailWorkers   = 2
	mailQueueSize = 64
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load(logger)

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Persistence handle: opened here, closed at shutdown, passed down
	// explicitly.
	db, err := repositories.Connect(cfg.DBURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			logger.Errorf("Failed to close database: %v", err)
		}
	}()
	logger.Info("Successfully connected to database")

	userRepo := repositories.NewUserRepository(db)
	contactRepo := repositories.NewContactRepository(db)

	avatarStore := storage.NewR2Store(cfg.R2)
	sender := mail.NewSender(cfg.SMTP, cfg.BaseURL, logger)
	dispatcher := mail.NewDispatcher(mailWorkers, mailQueueSize, logger)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.ConfirmTokenTTL)
	authService := services.NewAuthService(userRepo, tokenService, sender, dispatcher, logger)
	userService := services.NewUserService(userRepo, avatarStore)
	contactService := services.NewContactService(contactRepo)

	handler := api.SetupRouter(api.Deps{
		Auth:          handlers.NewAuthHandler(authService),
		Users:         handlers.NewUserHandler(userService),
		Contacts:      handlers.NewContactHandler(contactService),
		Authenticator: middleware.NewAuthenticator(tokenService, userRepo),
		CorsOptions:   cfg.CorsConfig,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: handler,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("Starting contacts API server on port: %s", cfg.Port)
		errc <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Could not listen on port %s: %v", cfg.Port, err)
		}
	case sig := <-stop:
		logger.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
	if err := dispatcher.Shutdown(ctx); err != nil {
		logger.Errorf("Mail dispatcher shutdown: %v", err)
	}
}
