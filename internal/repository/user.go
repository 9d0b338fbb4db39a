package repository

import (
	"context"

	"github.com/vmarchenko/contacts-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateRefreshToken overwrites the stored refresh token; nil clears it.
	UpdateRefreshToken(ctx context.Context, userID string, token *string) error

	// RotateRefreshToken swaps old for new only if old is still the stored
	// value. Returns false when another request rotated it first.
	RotateRefreshToken(ctx context.Context, userID, old, new string) (bool, error)

	MarkVerified(ctx context.Context, userID string) error
	UpdateAvatar(ctx context.Context, userID, url string) error
}
