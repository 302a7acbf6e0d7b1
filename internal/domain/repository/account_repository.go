package repository

import (
	"context"

	"github.com/interviewhub/interviewhub-api/internal/domain/entity"
)

// AccountRepository defines the interface for account-related database operations.
// Email uniqueness is enforced by the store (unique index), not by callers.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	FindByID(ctx context.Context, id string) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	Delete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	MarkEmailVerified(ctx context.Context, email string) error
}
