package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/daria-hk/contacts-api/internal/apperrors"
	"github.com/daria-hk/contacts-api/internal/mail"
	"github.com/daria-hk/contacts-api/internal/models"
	"github.com/daria-hk/contacts-api/internal/repositories"
	"github.com/daria-hk/contacts-api/internal/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// MailDispatcher accepts fire-and-forget jobs.
type MailDispatcher interface {
	Enqueue(job func() error)
}

// RegisterInput holds the registration payload with the plaintext password.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthService orchestrates registration, login, and the email confirmation
// lifecycle.
type AuthService struct {
	users      repositories.UserRepository
	tokens     TokenService
	mailer     mail.ConfirmationMailer
	dispatcher MailDispatcher
	logger     *logrus.Logger
}

func NewAuthService(
	users repositories.UserRepository,
	tokens TokenService,
	mailer mail.ConfirmationMailer,
	dispatcher MailDispatcher,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		mailer:     mailer,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Register creates a new unconfirmed user and queues the confirmation email.
// A taken username or email yields ErrConflict and leaves existing records
// untouched.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("%w: a user with this email already exists", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, fmt.Errorf("%w: a user with this name already exists", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       input.Username,
		Email:          input.Email,
		HashedPassword: string(hashed),
		Avatar:         storage.GravatarURL(input.Email),
	}

	// A concurrent registration racing past the lookups above still fails
	// here on the unique index.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: username or email already taken", apperrors.ErrConflict)
		}
		return nil, err
	}

	s.queueConfirmation(user.Email, user.Username)
	return user, nil
}

// Login verifies credentials and returns a bearer access token. Unknown
// username and wrong password produce the same error so usernames cannot be
// enumerated. Valid credentials on an unconfirmed account are still rejected.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: incorrect login or password", apperrors.ErrUnauthorized)
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: incorrect login or password", apperrors.ErrUnauthorized)
	}
	if !user.Confirmed {
		return "", fmt.Errorf("%w: email address not confirmed", apperrors.ErrUnauthorized)
	}
	return s.tokens.IssueAccessToken(user.Username)
}

// ConfirmEmail resolves the token to an email and flips the confirmed flag.
// Confirming twice is a no-op; the second call reports alreadyConfirmed.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error) {
	email, err := s.tokens.VerifyConfirmationToken(token)
	if err != nil {
		return false, fmt.Errorf("%w: verification error", apperrors.ErrBadRequest)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, fmt.Errorf("%w: verification error", apperrors.ErrBadRequest)
		}
		return false, err
	}
	if user.Confirmed {
		return true, nil
	}
	if err := s.users.ConfirmEmail(ctx, email); err != nil {
		return false, err
	}
	return false, nil
}

// ResendConfirmation queues another confirmation email unless the address is
// already confirmed.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) (alreadyConfirmed bool, err error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user.Confirmed {
		return true, nil
	}
	s.queueConfirmation(user.Email, user.Username)
	return false, nil
}

func (s *AuthService) queueConfirmation(email, username string) {
	token, err := s.tokens.IssueConfirmationToken(email)
	if err != nil {
		s.logger.Errorf("Failed to issue confirmation token for %s: %v", email, err)
		return
	}
	s.dispatcher.Enqueue(func() error {
		return s.mailer.SendConfirmation(email, username, token)
	})
}
