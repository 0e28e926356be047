package repository

import (
	"context"
	"time"

	"github.com/desinetwork/classifieds/internal/domain/entity"
)

// UserRepository defines persistence operations for accounts and their OTP
// columns. Consume operations are atomic: match, expiry check and column
// clear happen in one statement.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListAll(ctx context.Context) ([]entity.User, error)

	// SetVerificationOTP stores a pending verification code with expiry.
	SetVerificationOTP(ctx context.Context, userID, code string, expiresAt time.Time) error
	// ConsumeVerificationOTP clears a live matching code and sets
	// verified-at; returns the verified user or ErrNotFound when no
	// unexpired code matches.
	ConsumeVerificationOTP(ctx context.Context, code string, now time.Time) (*entity.User, error)
	// GetByVerificationOTP looks up whoever holds the code, expired or not.
	GetByVerificationOTP(ctx context.Context, code string) (*entity.User, error)

	SetResetOTP(ctx context.Context, userID, code string, expiresAt time.Time) error
	// ConsumeResetOTP atomically swaps in the new password hash and clears
	// the reset columns for a live matching code.
	ConsumeResetOTP(ctx context.Context, code, newPasswordHash string, now time.Time) (*entity.User, error)

	UpdateRole(ctx context.Context, userID, role string) (*entity.User, error)
	CountAll(ctx context.Context) (int, error)
}
