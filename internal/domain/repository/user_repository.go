package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
)

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines the interface for user-related database operations.
// Lookups return (nil, nil) when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// SetResetToken stores a pending reset token, replacing any previous one.
	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	// GetByResetToken returns the user holding token if it is still valid at now.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	// ConsumeResetToken atomically replaces the password hash and clears the
	// token when userID, token and expiry all check out at now. It reports
	// whether a row was updated.
	ConsumeResetToken(ctx context.Context, userID, token, passwordHash string, now time.Time) (bool, error)
}
