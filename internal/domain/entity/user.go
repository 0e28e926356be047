package entity

import (
	"time"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in Password.
type User struct {
	ID       string
	Email    string
	Password string
	Name     string
	Role     string

	// Email verification state: a pending OTP occupies VerificationToken and
	// VerificationExpiresAt; VerifiedAt is set once the code is consumed.
	VerifiedAt            *time.Time
	VerificationToken     *string
	VerificationExpiresAt *time.Time

	// Password reset OTP state.
	ResetToken     *string
	ResetExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VerificationState is the explicit form of the email verification columns.
type VerificationState int

const (
	// VerificationVerified covers both an explicit VerifiedAt and legacy
	// accounts that predate the OTP flow (no timestamp, no pending code).
	VerificationVerified VerificationState = iota
	VerificationPending
)

// Verification derives the tagged state from the nullable columns. This is
// the single place the legacy-account inference lives.
func (u *User) Verification() VerificationState {
	if u.VerifiedAt != nil {
		return VerificationVerified
	}
	if u.VerificationToken == nil {
		// Pre-OTP account: treated as implicitly verified.
		return VerificationVerified
	}
	return VerificationPending
}

// EmailVerified reports whether the user may post and manage classifieds.
func (u *User) EmailVerified() bool {
	return u.Verification() == VerificationVerified
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the API view of a user.
type PublicUser struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Public strips credentials and internal columns.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified(),
		CreatedAt:     u.CreatedAt,
	}
}
