package repositories

import (
	"context"
	"time"

	"github.com/daria-hk/contacts-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactUpdate carries a partial update. Nil fields are left unchanged.
type ContactUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Birthday  *models.Date
}

// ContactRepository defines owner-scoped contact data operations. Every
// lookup is filtered by the owning user; a contact belonging to another user
// behaves as if it does not exist.
type ContactRepository interface {
	List(ctx context.Context, ownerID uuid.UUID, skip, limit int, query string) ([]models.Contact, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, ownerID, id uuid.UUID, upd ContactUpdate) (*models.Contact, error)
	Remove(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error)
	Birthdays(ctx context.Context, ownerID uuid.UUID, today time.Time, days int) ([]models.Contact, error)
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new ContactRepository backed by GORM.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) List(ctx context.Context, ownerID uuid.UUID, skip, limit int, query string) ([]models.Contact, error) {
	stmt := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Offset(skip).
		Limit(limit).
		Order("created_at")

	if query != "" {
		pattern := "%" + query + "%"
		stmt = stmt.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}

	var contacts []models.Contact
	if err := stmt.Find(&contacts).Error; err != nil {
		return nil, translate(err)
	}
	return contacts, nil
}

func (r *contactRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&contact).Error
	if err != nil {
		return nil, translate(err)
	}
	return &contact, nil
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Update applies only the fields set in upd and refreshes updated_at. A
// missing or not-owned id returns ErrNotFound without writing anything.
func (r *contactRepository) Update(ctx context.Context, ownerID, id uuid.UUID, upd ContactUpdate) (*models.Contact, error) {
	contact, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.FirstName != nil {
		changes["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		changes["last_name"] = *upd.LastName
	}
	if upd.Email != nil {
		changes["email"] = *upd.Email
	}
	if upd.Phone != nil {
		changes["phone"] = *upd.Phone
	}
	if upd.Birthday != nil {
		changes["birthday"] = *upd.Birthday
	}
	if len(changes) == 0 {
		return contact, nil
	}
	changes["updated_at"] = time.Now()

	if err := r.db.WithContext(ctx).Model(contact).Updates(changes).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, ownerID, id)
}

func (r *contactRepository) Remove(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error) {
	contact, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(contact).Error; err != nil {
		return nil, translate(err)
	}
	return contact, nil
}

// Birthdays returns the owner's contacts whose birthday falls within the next
// `days` calendar days, today inclusive. The comparison is by month and day so
// that birthdays recur every year and the window may wrap across December 31.
func (r *contactRepository) Birthdays(ctx context.Context, ownerID uuid.UUID, today time.Time, days int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND birthday IS NOT NULL", ownerID).
		Find(&contacts).Error
	if err != nil {
		return nil, translate(err)
	}

	upcoming := make([]models.Contact, 0)
	for _, c := range contacts {
		if c.Birthday != nil && birthdayInWindow(c.Birthday.Time, today, days) {
			upcoming = append(upcoming, c)
		}
	}
	return upcoming, nil
}

// birthdayInWindow reports whether the month/day of bday occurs within the
// next days calendar days starting at today. Walking day by day keeps the
// year-wrap case (late December into January) and leap years correct.
func birthdayInWindow(bday, today time.Time, days int) bool {
	for i := 0; i <= days; i++ {
		d := today.AddDate(0, 0, i)
		if d.Month() == bday.Month() && d.Day() == bday.Day() {
			return true
		}
	}
	return false
}
