package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vmarchenko/contacts-api/internal/domain"
	"github.com/vmarchenko/contacts-api/internal/repository"
)

const defaultListLimit = 100

type ContactUsecase struct {
	repo repository.ContactRepository
}

func NewContactUsecase(repo repository.ContactRepository) *ContactUsecase {
	return &ContactUsecase{repo: repo}
}

type ContactInput struct {
	Name     string
	Email    string
	Phone    string
	Birthday *time.Time
	About    *string
}

func (u *ContactUsecase) Create(ctx context.Context, ownerID string, input ContactInput) (*domain.Contact, error) {
	contact := &domain.Contact{
		OwnerID:  ownerID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Birthday: input.Birthday,
		About:    input.About,
	}

	created, err := u.repo.Create(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return created, nil
}

func (u *ContactUsecase) List(ctx context.Context, ownerID string, skip, limit int) ([]*domain.Contact, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if skip < 0 {
		skip = 0
	}
	contacts, err := u.repo.ListByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// GetByID has no ownership check: any verified caller may read any
// contact by id, while all mutating operations are owner-scoped.
func (u *ContactUsecase) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	contact, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

func (u *ContactUsecase) Update(ctx context.Context, id, ownerID string, input ContactInput) (*domain.Contact, error) {
	contact := &domain.Contact{
		ID:       id,
		OwnerID:  ownerID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Birthday: input.Birthday,
		About:    input.About,
	}

	updated, err := u.repo.Update(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return updated, nil
}

func (u *ContactUsecase) Delete(ctx context.Context, id, ownerID string) error {
	if err := u.repo.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}
