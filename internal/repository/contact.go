package repository

import (
	"context"

	"github.com/vmarchenko/contacts-api/internal/domain"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
	ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*domain.Contact, error)

	// GetByID is deliberately not owner-scoped: any authenticated caller
	// may read any contact by id.
	GetByID(ctx context.Context, id string) (*domain.Contact, error)

	Update(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
	Delete(ctx context.Context, id, ownerID string) error

	// UpcomingBirthdays returns contacts whose birthday (month/day) falls
	// within the next `days` days, joined with verified owners.
	UpcomingBirthdays(ctx context.Context, days int) ([]*domain.BirthdayReminder, error)
}
