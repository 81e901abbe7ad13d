package services

import (
	"context"
	"time"

	"github.com/daria-hk/contacts-api/internal/models"
	"github.com/daria-hk/contacts-api/internal/repositories"
	"github.com/google/uuid"
)

// birthdayWindowDays is the lookahead of the upcoming-birthdays query,
// inclusive of today.
const birthdayWindowDays = 7

// ContactService is a thin pass-through to the contact repository with the
// owner-scoping invariant enforced on every operation. Missing and not-owned
// ids are indistinguishable: both come back as ErrNotFound.
type ContactService struct {
	contacts repositories.ContactRepository
	now      func() time.Time
}

func NewContactService(contacts repositories.ContactRepository) *ContactService {
	return &ContactService{
		contacts: contacts,
		now:      time.Now,
	}
}

func (s *ContactService) List(ctx context.Context, user *models.User, skip, limit int, query string) ([]models.Contact, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	return s.contacts.List(ctx, user.ID, skip, limit, query)
}

func (s *ContactService) Get(ctx context.Context, user *models.User, id uuid.UUID) (*models.Contact, error) {
	return s.contacts.GetByID(ctx, user.ID, id)
}

func (s *ContactService) Create(ctx context.Context, user *models.User, contact *models.Contact) (*models.Contact, error) {
	contact.UserID = user.ID
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, user *models.User, id uuid.UUID, upd repositories.ContactUpdate) (*models.Contact, error) {
	return s.contacts.Update(ctx, user.ID, id, upd)
}

func (s *ContactService) Remove(ctx context.Context, user *models.User, id uuid.UUID) (*models.Contact, error) {
	return s.contacts.Remove(ctx, user.ID, id)
}

func (s *ContactService) Birthdays(ctx context.Context, user *models.User) ([]models.Contact, error) {
	return s.contacts.Birthdays(ctx, user.ID, s.now(), birthdayWindowDays)
}
